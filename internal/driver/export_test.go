package driver

import (
	"context"
	"errors"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/kgrefine/internal/core/graph"
	"github.com/agenthands/kgrefine/internal/core/model"
)

type executed struct {
	query  string
	params map[string]interface{}
}

type MockDriver struct {
	Executed []executed
	Results  map[string]neo4j.EagerResult
	Err      error
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.Executed = append(m.Executed, executed{query: query, params: params})
	if m.Err != nil {
		return neo4j.EagerResult{}, m.Err
	}
	return m.Results[query], nil
}

func (m *MockDriver) BuildIndices(ctx context.Context) error { return nil }
func (m *MockDriver) Close(ctx context.Context) error        { return nil }

func (m *MockDriver) count(query string) int {
	n := 0
	for _, e := range m.Executed {
		if e.query == query {
			n++
		}
	}
	return n
}

func sampleGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	require.NoError(t, g.AddNode(&model.Node{
		ID: "P1", Label: "Zhang San", Type: "PERSON",
		Properties: model.Properties{"city": model.List(model.String("Beijing"), model.String("Shanghai"))},
		Position:   &model.Position{X: 1, Y: 2},
	}))
	require.NoError(t, g.AddNode(&model.Node{ID: "O1", Label: "Peking University", Type: "ORGANIZATION"}))
	_, err := g.AddEdge(&model.Edge{ID: "e1", SourceID: "P1", TargetID: "O1", Type: "WORK_FOR"})
	require.NoError(t, err)
	return g
}

func TestExportGraph(t *testing.T) {
	mock := &MockDriver{}
	x := NewExporter(mock, "run-1")

	require.NoError(t, x.ExportGraph(context.Background(), sampleGraph(t)))
	require.Len(t, mock.Executed, 3)

	node := mock.Executed[0]
	assert.Equal(t, SaveEntityNodeQuery, node.query)
	assert.Equal(t, "P1", node.params["id"])
	assert.Equal(t, "run-1", node.params["group_id"])
	assert.Equal(t, 1.0, node.params["x"])
	assert.JSONEq(t, `{"city":["Beijing","Shanghai"]}`, node.params["properties"].(string))

	assert.Equal(t, "{}", mock.Executed[1].params["properties"])
	assert.Nil(t, mock.Executed[1].params["x"])

	edge := mock.Executed[2]
	assert.Equal(t, SaveRelationQuery, edge.query)
	assert.Equal(t, "WORK_FOR", edge.params["type"])
	assert.Equal(t, 1.0, edge.params["weight"])
	assert.Equal(t, false, edge.params["inferred"])
}

func TestExportGraph_PropagatesErrors(t *testing.T) {
	mock := &MockDriver{Err: errors.New("connection refused")}
	err := NewExporter(mock, "run-1").ExportGraph(context.Background(), sampleGraph(t))
	assert.ErrorContains(t, err, "connection refused")
	assert.Len(t, mock.Executed, 1)
}

func TestExportAnalysis(t *testing.T) {
	mock := &MockDriver{}
	x := NewExporter(mock, "run-1")
	err := x.ExportAnalysis(context.Background(), sampleGraph(t), Analysis{
		Clusters:    map[string]int{"P1": 0, "O1": 1},
		Anomalies:   map[string]float64{"O1": 0.71},
		Communities: [][]string{{"P1", "O1"}},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, mock.count(SetNodeAnalysisQuery))
	assert.Equal(t, 1, mock.count(SaveCommunityQuery))
	assert.Equal(t, 2, mock.count(SaveCommunityMemberQuery))

	o1 := mock.Executed[1].params
	assert.Equal(t, true, o1["anomalous"])
	assert.Equal(t, 0.71, o1["anomaly_score"])
	assert.Equal(t, int64(1), o1["cluster"])
	assert.Equal(t, "run-1-community-0", mock.Executed[2].params["id"])
}

func TestLoadGraph(t *testing.T) {
	mock := &MockDriver{Results: map[string]neo4j.EagerResult{
		GetGroupNodesQuery: {Records: []*neo4j.Record{
			{Keys: []string{"id", "label", "type", "properties"}, Values: []any{"O1", "Peking University", "ORGANIZATION", "{}"}},
			{Keys: []string{"id", "label", "type", "properties"}, Values: []any{"P1", "Zhang San", "PERSON", `{"age":40}`}},
			{Keys: []string{"id", "label", "type", "properties"}, Values: []any{"", "broken", "PERSON", nil}},
		}},
		GetGroupEdgesQuery: {Records: []*neo4j.Record{
			{
				Keys:   []string{"id", "source_id", "target_id", "type", "weight", "inferred", "inference_method", "confidence", "properties"},
				Values: []any{"e1", "P1", "O1", "WORK_FOR", 1.0, true, "rule", 0.8, "{}"},
			},
			{
				Keys:   []string{"id", "source_id", "target_id", "type", "weight", "inferred", "inference_method", "confidence", "properties"},
				Values: []any{"e2", "P1", "missing", "KNOWS", int64(1), false, "", nil, nil},
			},
		}},
	}}

	g, err := LoadGraph(context.Background(), mock, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, 1, g.EdgeCount())

	p1, ok := g.Node("P1")
	require.True(t, ok)
	assert.Equal(t, 40.0, p1.Properties["age"].Num())

	e1, ok := g.Edge("e1")
	require.True(t, ok)
	assert.True(t, e1.Inferred)
	assert.Equal(t, 0.8, e1.Confidence)
}
