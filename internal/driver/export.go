package driver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/agenthands/kgrefine/internal/core/graph"
	"github.com/agenthands/kgrefine/internal/core/model"
)

// Exporter writes refined graphs to a Cypher store. Everything it writes is
// tagged with GroupID so several graphs can share one database.
type Exporter struct {
	Driver  GraphDriver
	GroupID string
}

func NewExporter(d GraphDriver, groupID string) *Exporter {
	return &Exporter{Driver: d, GroupID: groupID}
}

// Reset deletes everything previously exported under the group.
func (x *Exporter) Reset(ctx context.Context) error {
	if _, err := x.Driver.ExecuteQuery(ctx, ClearGroupQuery, map[string]interface{}{"group_id": x.GroupID}); err != nil {
		return fmt.Errorf("failed to clear group %q: %w", x.GroupID, err)
	}
	return nil
}

// ExportGraph saves every node, then every edge. Properties are stored as a
// JSON string because Cypher property values cannot hold nested maps.
func (x *Exporter) ExportGraph(ctx context.Context, g *graph.Graph) error {
	now := time.Now().UTC().Format(time.RFC3339)

	for _, n := range g.Nodes() {
		props, err := encodeProperties(n.Properties)
		if err != nil {
			return fmt.Errorf("failed to encode node %q: %w", n.ID, err)
		}
		params := map[string]interface{}{
			"id":          n.ID,
			"group_id":    x.GroupID,
			"label":       n.Label,
			"type":        n.Type,
			"properties":  props,
			"x":           nil,
			"y":           nil,
			"exported_at": now,
		}
		if n.Position != nil {
			params["x"], params["y"] = n.Position.X, n.Position.Y
		}
		if _, err := x.Driver.ExecuteQuery(ctx, SaveEntityNodeQuery, params); err != nil {
			return fmt.Errorf("failed to save node %q: %w", n.ID, err)
		}
	}

	for _, e := range g.Edges() {
		props, err := encodeProperties(e.Properties)
		if err != nil {
			return fmt.Errorf("failed to encode edge %q: %w", e.ID, err)
		}
		params := map[string]interface{}{
			"id":               e.ID,
			"group_id":         x.GroupID,
			"source_id":        e.SourceID,
			"target_id":        e.TargetID,
			"type":             e.Type,
			"weight":           e.Weight,
			"inferred":         e.Inferred,
			"inference_method": e.InferenceMethod,
			"confidence":       e.Confidence,
			"properties":       props,
		}
		if _, err := x.Driver.ExecuteQuery(ctx, SaveRelationQuery, params); err != nil {
			return fmt.Errorf("failed to save edge %q: %w", e.ID, err)
		}
	}

	log.Printf("Exported %d nodes and %d edges to group %q", g.NodeCount(), g.EdgeCount(), x.GroupID)
	return nil
}

// Analysis is the read-only output attached to exported nodes.
type Analysis struct {
	Clusters    map[string]int
	Anomalies   map[string]float64
	Communities [][]string
}

// ExportAnalysis tags nodes with their cluster and anomaly score and saves
// communities with HAS_MEMBER links. Nodes missing from the store are
// skipped by the MATCH clauses.
func (x *Exporter) ExportAnalysis(ctx context.Context, g *graph.Graph, a Analysis) error {
	for _, n := range g.Nodes() {
		cluster, clustered := a.Clusters[n.ID]
		score, anomalous := a.Anomalies[n.ID]
		params := map[string]interface{}{
			"id":            n.ID,
			"group_id":      x.GroupID,
			"cluster":       nil,
			"anomalous":     anomalous,
			"anomaly_score": nil,
		}
		if clustered {
			params["cluster"] = int64(cluster)
		}
		if anomalous {
			params["anomaly_score"] = score
		}
		if _, err := x.Driver.ExecuteQuery(ctx, SetNodeAnalysisQuery, params); err != nil {
			return fmt.Errorf("failed to tag node %q: %w", n.ID, err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for i, members := range a.Communities {
		id := fmt.Sprintf("%s-community-%d", x.GroupID, i)
		params := map[string]interface{}{
			"id":          id,
			"group_id":    x.GroupID,
			"size":        int64(len(members)),
			"exported_at": now,
		}
		if _, err := x.Driver.ExecuteQuery(ctx, SaveCommunityQuery, params); err != nil {
			return fmt.Errorf("failed to save community %q: %w", id, err)
		}
		for _, m := range members {
			memberParams := map[string]interface{}{
				"community_id": id,
				"entity_id":    m,
				"group_id":     x.GroupID,
			}
			if _, err := x.Driver.ExecuteQuery(ctx, SaveCommunityMemberQuery, memberParams); err != nil {
				return fmt.Errorf("failed to link %q to community %q: %w", m, id, err)
			}
		}
	}
	return nil
}

// LoadGraph reads a group back into a graph. Rows that violate the graph
// invariants are logged and skipped.
func LoadGraph(ctx context.Context, d GraphDriver, groupID string) (*graph.Graph, error) {
	params := map[string]interface{}{"group_id": groupID}

	nodes, err := d.ExecuteQuery(ctx, GetGroupNodesQuery, params)
	if err != nil {
		return nil, fmt.Errorf("failed to load nodes of group %q: %w", groupID, err)
	}
	g := graph.New()
	for _, rec := range nodes.Records {
		id, _ := rec.Get("id")
		label, _ := rec.Get("label")
		typ, _ := rec.Get("type")
		raw, _ := rec.Get("properties")
		n := &model.Node{
			ID:         asString(id),
			Label:      asString(label),
			Type:       asString(typ),
			Properties: decodeProperties(raw),
		}
		if err := g.AddNode(n); err != nil {
			log.Printf("Warning: skipping stored node %q: %v", n.ID, err)
		}
	}

	edges, err := d.ExecuteQuery(ctx, GetGroupEdgesQuery, params)
	if err != nil {
		return nil, fmt.Errorf("failed to load edges of group %q: %w", groupID, err)
	}
	for _, rec := range edges.Records {
		m := rec.AsMap()
		e := &model.Edge{
			ID:              asString(m["id"]),
			SourceID:        asString(m["source_id"]),
			TargetID:        asString(m["target_id"]),
			Type:            asString(m["type"]),
			Properties:      decodeProperties(m["properties"]),
			Weight:          asFloat(m["weight"]),
			InferenceMethod: asString(m["inference_method"]),
			Confidence:      asFloat(m["confidence"]),
		}
		e.Inferred, _ = m["inferred"].(bool)
		if _, err := g.AddEdge(e); err != nil {
			log.Printf("Warning: skipping stored edge %q: %v", e.ID, err)
		}
	}
	return g, nil
}

func encodeProperties(p model.Properties) (string, error) {
	if len(p) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeProperties(raw interface{}) model.Properties {
	s, ok := raw.(string)
	if !ok || s == "" || s == "{}" {
		return nil
	}
	var p model.Properties
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		log.Printf("Warning: ignoring malformed stored properties: %v", err)
		return nil
	}
	return p
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asFloat(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int64:
		return float64(t)
	default:
		return 0
	}
}
