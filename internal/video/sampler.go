package video

import (
	"errors"
	"fmt"
)

// ErrCancelled is returned when sampling stops because the progress callback
// reported that the session is gone.
var ErrCancelled = errors.New("sampling cancelled")

// ColorSample is one sampled timeline position reduced to its mean color.
type ColorSample struct {
	Frame   int     `json:"frame"`
	Seconds float64 `json:"seconds"`
	Color   string  `json:"color"`
}

// ProgressFunc receives coarse progress updates. Returning false stops the
// sampling run; this is the cooperative cancellation hook.
type ProgressFunc func(done, total int) bool

// SamplePositions selects the frame indices to sample. Files with no more
// frames than the target are sampled exhaustively; longer files are sampled
// every total/target frames, capped at target positions. Indices are strictly
// increasing.
func SamplePositions(totalFrames, target int) []int {
	if totalFrames <= 0 || target <= 0 {
		return nil
	}
	if totalFrames <= target {
		positions := make([]int, totalFrames)
		for i := range positions {
			positions[i] = i
		}
		return positions
	}

	step := totalFrames / target
	if step < 1 {
		step = 1
	}
	positions := make([]int, 0, target)
	for frame := 0; frame < totalFrames && len(positions) < target; frame += step {
		positions = append(positions, frame)
	}
	return positions
}

// SampleColors decodes up to target frames spread across the timeline and
// reduces each to its average color. Failed positions are skipped; only a run
// that yields zero samples is an error. Progress is reported in coarse
// increments to keep registry churn low.
func SampleColors(dec *Decoder, target int, progress ProgressFunc) ([]ColorSample, error) {
	positions := SamplePositions(dec.Info().TotalFrames, target)
	if len(positions) == 0 {
		return nil, fmt.Errorf("no sampleable frames in %s", dec.path)
	}

	samples := make([]ColorSample, 0, len(positions))
	lastReported := -1
	for i, frame := range positions {
		if err := dec.ctx.Err(); err != nil {
			return nil, ErrCancelled
		}

		// Report at most every 5% so long runs don't hammer the registry.
		if pct := i * 100 / len(positions); pct/5 > lastReported/5 || lastReported < 0 {
			lastReported = pct
			if progress != nil && !progress(i, len(positions)) {
				return nil, ErrCancelled
			}
		}

		buf, err := dec.decodeRGB(frame)
		if err != nil {
			if dec.ctx.Err() != nil {
				return nil, ErrCancelled
			}
			continue
		}
		samples = append(samples, ColorSample{
			Frame:   frame,
			Seconds: dec.seconds(frame),
			Color:   averageColor(buf),
		})
	}

	if len(samples) == 0 {
		return nil, fmt.Errorf("zero frames decoded from %s", dec.path)
	}
	if progress != nil && !progress(len(positions), len(positions)) {
		return nil, ErrCancelled
	}
	return samples, nil
}

// averageColor computes the arithmetic mean per channel of raw RGB24 data and
// formats it as a hex color.
func averageColor(rgb []byte) string {
	if len(rgb) < 3 {
		return "#000000"
	}
	var r, g, b uint64
	pixels := len(rgb) / 3
	for i := 0; i < pixels*3; i += 3 {
		r += uint64(rgb[i])
		g += uint64(rgb[i+1])
		b += uint64(rgb[i+2])
	}
	n := uint64(pixels)
	return fmt.Sprintf("#%02x%02x%02x", r/n, g/n, b/n)
}
