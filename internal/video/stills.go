package video

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"sort"
)

// StillFrame describes one extracted full still, written as a JPEG artifact.
type StillFrame struct {
	Frame    int     `json:"frame"`
	Seconds  float64 `json:"seconds"`
	Filename string  `json:"filename"`
}

// stillIndices picks k distinct random frame indices in ascending order. When
// the file has fewer frames than k, every frame is used.
func stillIndices(totalFrames, k int, rng *rand.Rand) []int {
	if totalFrames <= 0 || k <= 0 {
		return nil
	}
	if totalFrames <= k {
		indices := make([]int, totalFrames)
		for i := range indices {
			indices[i] = i
		}
		return indices
	}

	picked := make(map[int]bool, k)
	indices := make([]int, 0, k)
	for len(indices) < k {
		frame := rng.Intn(totalFrames)
		if picked[frame] {
			continue
		}
		picked[frame] = true
		indices = append(indices, frame)
	}
	sort.Ints(indices)
	return indices
}

// ExtractStills decodes k random frames to JPEG files under destDir, named
// deterministically from the cache key and frame index. Failed positions are
// skipped; zero extracted frames is an error.
func ExtractStills(dec *Decoder, k int, destDir, baseKey string, rng *rand.Rand) ([]StillFrame, error) {
	indices := stillIndices(dec.Info().TotalFrames, k, rng)
	if len(indices) == 0 {
		return nil, fmt.Errorf("no extractable frames in %s", dec.path)
	}

	stills := make([]StillFrame, 0, len(indices))
	for _, frame := range indices {
		if err := dec.ctx.Err(); err != nil {
			return nil, ErrCancelled
		}
		name := fmt.Sprintf("%s_%d.jpg", baseKey, frame)
		if err := dec.writeJPEG(frame, filepath.Join(destDir, name)); err != nil {
			if dec.ctx.Err() != nil {
				return nil, ErrCancelled
			}
			continue
		}
		stills = append(stills, StillFrame{
			Frame:    frame,
			Seconds:  dec.seconds(frame),
			Filename: name,
		})
	}

	if len(stills) == 0 {
		return nil, fmt.Errorf("zero frames extracted from %s", dec.path)
	}
	return stills, nil
}
