package dedupe

import (
	"github.com/agenthands/kgrefine/internal/core/model"
)

// MergeProperties unions the properties of nodes. A key on which the nodes
// disagree becomes a list of every distinct scalar observed for it, in the
// order the nodes are given; list values are flattened into it.
func MergeProperties(nodes []*model.Node) model.Properties {
	merged := make(model.Properties)
	for _, key := range keyUnion(nodes) {
		values := observed(nodes, key)
		if !conflicting(values) {
			merged[key] = values[0]
			continue
		}
		merged[key] = model.List(distinctScalars(values)...)
	}
	return merged
}

// ConflictingKeys lists, in sorted order, the keys the nodes disagree on.
func ConflictingKeys(nodes []*model.Node) []string {
	var keys []string
	for _, key := range keyUnion(nodes) {
		if conflicting(observed(nodes, key)) {
			keys = append(keys, key)
		}
	}
	return keys
}

func keyUnion(nodes []*model.Node) []string {
	union := make(model.Properties)
	for _, n := range nodes {
		for k := range n.Properties {
			union[k] = model.Value{}
		}
	}
	return union.Keys()
}

// observed returns the non-null values nodes hold for key.
func observed(nodes []*model.Node, key string) []model.Value {
	var values []model.Value
	for _, n := range nodes {
		v, ok := n.Properties[key]
		if !ok || v.IsNull() {
			continue
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		values = append(values, model.Value{})
	}
	return values
}

func conflicting(values []model.Value) bool {
	for _, v := range values[1:] {
		if !v.Equal(values[0]) {
			return true
		}
	}
	return false
}

func distinctScalars(values []model.Value) []model.Value {
	var out []model.Value
	for _, v := range values {
		for _, s := range v.Scalars() {
			dup := false
			for _, seen := range out {
				if seen.Equal(s) {
					dup = true
					break
				}
			}
			if !dup {
				out = append(out, s)
			}
		}
	}
	return out
}
