package video

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSamplePositions_ShortFileSamplesEveryFrame(t *testing.T) {
	positions := SamplePositions(50, 300)

	require.Len(t, positions, 50)
	for i, p := range positions {
		assert.Equal(t, i, p)
	}
}

func TestSamplePositions_LongFileStepsAndCaps(t *testing.T) {
	positions := SamplePositions(3000, 300)

	require.LessOrEqual(t, len(positions), 300)
	require.NotEmpty(t, positions)
	assert.Equal(t, 10, positions[1]-positions[0])
	for i := 1; i < len(positions); i++ {
		assert.Greater(t, positions[i], positions[i-1])
	}
}

func TestSamplePositions_DegenerateInputs(t *testing.T) {
	assert.Nil(t, SamplePositions(0, 300))
	assert.Nil(t, SamplePositions(100, 0))
}

func TestStillIndices_ClampsToAvailableFrames(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	indices := stillIndices(5, 7, rng)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, indices)
}

func TestStillIndices_DistinctAndAscending(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	indices := stillIndices(10000, 7, rng)
	require.Len(t, indices, 7)
	for i := 1; i < len(indices); i++ {
		assert.Greater(t, indices[i], indices[i-1])
	}
}

func TestAverageColor(t *testing.T) {
	// Two pixels: pure red and pure blue average to half red, half blue.
	rgb := []byte{255, 0, 0, 0, 0, 255}
	assert.Equal(t, "#7f007f", averageColor(rgb))

	assert.Equal(t, "#000000", averageColor(nil))
	assert.Equal(t, "#ffffff", averageColor([]byte{255, 255, 255}))
}

func TestParseRate(t *testing.T) {
	assert.InDelta(t, 23.976, parseRate("24000/1001"), 0.001)
	assert.Equal(t, 25.0, parseRate("25/1"))
	assert.Equal(t, 30.0, parseRate("30"))
	assert.Equal(t, 0.0, parseRate("0/0"))
	assert.Equal(t, 0.0, parseRate(""))
}
