package quote

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrInsufficientDialogue is returned when a track cannot supply enough
// temporally-coherent blocks for the requested rounds. Callers retry with a
// different title.
var ErrInsufficientDialogue = errors.New("could not find suitable dialogue")

// Block is a run of consecutive lines with monotonically increasing
// timestamps and bounded inter-line gaps, usable as one guessable quote.
type Block []Line

// Options bounds line filtering and block assembly.
type Options struct {
	MinLines   int
	MaxLines   int
	MinLineLen int
	MaxLineLen int
	MaxGap     float64 // seconds between adjacent lines
}

// FilterLines keeps lines whose length falls inside the configured range.
// When too few survive for the requested rounds, the upper bound is dropped
// and only the minimum length applies.
func FilterLines(lines []Line, opts Options, need int) []Line {
	filtered := make([]Line, 0, len(lines))
	for _, line := range lines {
		if n := len(line.Text); n >= opts.MinLineLen && n <= opts.MaxLineLen {
			filtered = append(filtered, line)
		}
	}
	if len(filtered) >= need*opts.MinLines {
		return filtered
	}

	relaxed := make([]Line, 0, len(lines))
	for _, line := range lines {
		if len(line.Text) >= opts.MinLineLen {
			relaxed = append(relaxed, line)
		}
	}
	return relaxed
}

// AssembleBlocks scans the time-ordered line list and collects every block
// whose adjacent lines are within the gap bound. Block sizes are drawn
// randomly from [MinLines, MaxLines] per starting position.
func AssembleBlocks(lines []Line, opts Options, rng *rand.Rand) []Block {
	if opts.MinLines <= 0 || opts.MaxLines < opts.MinLines {
		return nil
	}

	var blocks []Block
	for start := 0; start+opts.MinLines <= len(lines); start++ {
		size := opts.MinLines
		if span := opts.MaxLines - opts.MinLines; span > 0 {
			size += rng.Intn(span + 1)
		}
		if start+size > len(lines) {
			size = len(lines) - start
		}
		if size < opts.MinLines {
			continue
		}
		if block := lines[start : start+size]; coherent(block, opts.MaxGap) {
			blocks = append(blocks, Block(block))
		}
	}
	return blocks
}

// coherent verifies every adjacent pair has a non-negative gap within bound.
// A block spanning a scene cut has no continuity and is rejected.
func coherent(block []Line, maxGap float64) bool {
	for i := 1; i < len(block); i++ {
		gap := block[i].Seconds - block[i-1].Seconds
		if gap < 0 || gap > maxGap {
			return false
		}
	}
	return true
}

// Extract runs the full pipeline for one subtitle track: parse, filter,
// assemble, then sample the requested number of blocks without replacement.
func Extract(videoPath string, opts Options, rounds int, rng *rand.Rand) ([]Block, error) {
	trackPath, err := FindTrack(videoPath)
	if err != nil {
		return nil, err
	}

	lines, err := ParseFile(trackPath)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", trackPath, err)
	}

	filtered := FilterLines(lines, opts, rounds)
	blocks := AssembleBlocks(filtered, opts, rng)
	if len(blocks) < rounds {
		return nil, ErrInsufficientDialogue
	}

	picked := make([]Block, 0, rounds)
	for _, i := range rng.Perm(len(blocks))[:rounds] {
		picked = append(picked, blocks[i])
	}
	return picked, nil
}
