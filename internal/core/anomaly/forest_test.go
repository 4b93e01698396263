package anomaly

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grid(n int) ([]string, [][]float64) {
	ids := make([]string, n)
	rows := make([][]float64, n)
	for i := 0; i < n; i++ {
		ids[i] = fmt.Sprintf("n%02d", i)
		rows[i] = []float64{float64(i%5) * 0.1, float64(i/5) * 0.1}
	}
	return ids, rows
}

func TestDetect_TooFewSamples(t *testing.T) {
	ids, rows := grid(9)
	assert.Empty(t, Detect(ids, rows, DefaultConfig()))
}

func TestDetect_FlagsTheOutlier(t *testing.T) {
	ids, rows := grid(19)
	ids = append(ids, "outlier")
	rows = append(rows, []float64{25, -30})

	got := Detect(ids, rows, DefaultConfig())
	require.Len(t, got, 2) // ceil(0.1 * 20)
	assert.Equal(t, "outlier", got[0].ID)
	assert.Greater(t, got[0].Score, got[1].Score)
	assert.Greater(t, got[0].Score, 0.5)
}

func TestDetect_IsDeterministic(t *testing.T) {
	ids, rows := grid(30)
	a := Detect(ids, rows, DefaultConfig())
	b := Detect(ids, rows, DefaultConfig())
	assert.Equal(t, a, b)
	assert.Len(t, a, 3)
}

func TestDetect_ZeroContamination(t *testing.T) {
	ids, rows := grid(20)
	cfg := DefaultConfig()
	cfg.Contamination = 0
	assert.Empty(t, Detect(ids, rows, cfg))
}

func TestAveragePath(t *testing.T) {
	assert.Equal(t, 0.0, averagePath(1))
	assert.Equal(t, 1.0, averagePath(2))
	assert.InDelta(t, 10.24, averagePath(256), 0.01)
}
