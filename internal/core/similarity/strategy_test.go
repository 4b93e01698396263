package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/kgrefine/internal/core/model"
)

func node(id, label, typ string) *model.Node {
	return &model.Node{ID: id, Label: label, Type: typ}
}

func names(ladder []Strategy) []string {
	out := make([]string, len(ladder))
	for i, s := range ladder {
		out[i] = s.Name()
	}
	return out
}

func TestDefaultLadder_Order(t *testing.T) {
	opts := DefaultLadderOptions()
	opts.Corpus = []string{"Peking University", "Tsinghua University"}

	assert.Equal(t, []string{
		ReasonExact, ReasonCaseInsensitive, ReasonNormalized, ReasonAbbreviation,
		ReasonSemantic, ReasonPartial, ReasonProperty,
	}, names(DefaultLadder(opts)))
}

func TestDefaultLadder_OmitsSemanticWithoutCorpus(t *testing.T) {
	ladder := DefaultLadder(DefaultLadderOptions())
	assert.NotContains(t, names(ladder), ReasonSemantic)
	assert.Len(t, ladder, 6)
}

func TestEvaluate_FirstRungWins(t *testing.T) {
	ladder := DefaultLadder(DefaultLadderOptions())

	tests := []struct {
		a, b   string
		score  float64
		reason string
	}{
		{"Zhang San", "Zhang San", 1.0, ReasonExact},
		{"Zhang San", "zhang san", 0.95, ReasonCaseInsensitive},
		{"Zhang-San", "zhang san", 0.9, ReasonNormalized},
		{"IBM", "International Business Machines", 0.85, ReasonAbbreviation},
		{"Peking", "Peking University", 0.7, ReasonAbbreviation},
		{"Jonathan Smith", "Jonathon Smith", 1 - 1.0/14.0, ReasonPartial},
	}
	for _, tc := range tests {
		m, err := Evaluate(ladder, node("a", tc.a, "PERSON"), node("b", tc.b, "PERSON"))
		require.NoError(t, err)
		assert.InDelta(t, tc.score, m.Score, 1e-9, "%s vs %s", tc.a, tc.b)
		assert.Equal(t, tc.reason, m.Reason, "%s vs %s", tc.a, tc.b)
	}
}

func TestEvaluate_FallsBackToProperties(t *testing.T) {
	ladder := DefaultLadder(DefaultLadderOptions())
	a := node("a", "Alice", "PERSON")
	b := node("b", "Bob", "PERSON")

	m, err := Evaluate(ladder, a, b)
	require.NoError(t, err)
	assert.Equal(t, ReasonProperty, m.Reason)
	assert.Equal(t, 0.0, m.Score)

	a.Properties = model.Properties{"email": model.String("zs@pku.edu.cn"), "phone": model.String("010-1234")}
	b.Properties = a.Properties.Clone()
	m, err = Evaluate(ladder, a, b)
	require.NoError(t, err)
	assert.Equal(t, ReasonProperty, m.Reason)
	assert.InDelta(t, PropertySimilarity(a.Properties, b.Properties), m.Score, 1e-9)
	assert.InDelta(t, 1.0, m.Score, 1e-9)
}

func TestEvaluate_PropertiesIgnoreRecordConfidence(t *testing.T) {
	ladder := DefaultLadder(DefaultLadderOptions())
	a := node("a", "Alice", "PERSON")
	b := node("b", "Bob", "PERSON")
	a.Properties = model.Properties{model.ConfidenceProperty: model.Number(0.9)}
	b.Properties = model.Properties{model.ConfidenceProperty: model.Number(0.9)}

	m, err := Evaluate(ladder, a, b)
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.Score)
	assert.Len(t, a.Properties, 1)
}

func TestEvaluate_EmptyLabelIsAnError(t *testing.T) {
	_, err := Evaluate(DefaultLadder(DefaultLadderOptions()), node("a", "", "PERSON"), node("b", "Bob", "PERSON"))
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestEntitySimilarity_Breakdown(t *testing.T) {
	a := &model.Node{ID: "a", Label: "Zhang San", Type: "PERSON", Properties: model.Properties{"city": model.String("Beijing")}}
	b := &model.Node{ID: "b", Label: "Zhang San", Type: "PERSON", Properties: model.Properties{"city": model.String("Beijing")}}

	bd := EntitySimilarity(a, b)
	assert.InDelta(t, 1.0, bd.Label, 1e-9)
	assert.Equal(t, 1.0, bd.Type)
	assert.Equal(t, 1.0, bd.JaroWinkler)
	assert.Equal(t, 1.0, bd.Properties)
	assert.InDelta(t, 1.0, bd.Total, 1e-9)

	b.Type = "ORGANIZATION"
	assert.InDelta(t, 0.8, EntitySimilarity(a, b).Total, 1e-9)
}
