package community

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponents(t *testing.T) {
	g := buildGraph(t, []string{"1", "2", "3", "4"}, [][2]string{
		{"1", "2"}, {"2", "3"},
		// 4 is isolated
	})

	detector, err := NewDetector("components")
	require.NoError(t, err)
	communities, err := detector.Detect(g)
	assert.NoError(t, err)
	// singletons are not communities
	assert.Equal(t, [][]string{{"1", "2", "3"}}, communities)
}

func TestComponents_Multiple(t *testing.T) {
	g := buildGraph(t, []string{"1", "2", "3", "4"}, [][2]string{
		{"1", "2"},
		{"3", "4"},
	})

	communities, err := ComponentDetector{}.Detect(g)
	assert.NoError(t, err)
	assert.Len(t, communities, 2)
}

func TestNewDetector(t *testing.T) {
	d, err := NewDetector("")
	require.NoError(t, err)
	assert.IsType(t, &LabelPropagationDetector{}, d)

	_, err = NewDetector("louvain")
	assert.Error(t, err)
}
