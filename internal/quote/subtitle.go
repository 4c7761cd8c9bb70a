package quote

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Line is one cleaned dialogue line with its start position in seconds.
type Line struct {
	Text    string  `json:"text"`
	Seconds float64 `json:"seconds"`
}

var (
	timecodeRe   = regexp.MustCompile(`(\d{2}):(\d{2}):(\d{2})[,.](\d{3})`)
	markupRe     = regexp.MustCompile(`<[^>]*>`)
	bracketRe    = regexp.MustCompile(`\[[^\]]*\]`)
	parentheseRe = regexp.MustCompile(`\([^)]*\)`)
	noteRe       = regexp.MustCompile(`[♪♫]+`)
)

// ParseFile reads a subtitle file into time-ordered dialogue lines.
func ParseFile(path string) ([]Line, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open subtitle file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []Line
	var block []string
	flush := func() {
		if line, ok := parseBlock(block); ok {
			lines = append(lines, line)
		}
		block = block[:0]
	}
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			flush()
			continue
		}
		block = append(block, text)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read subtitle file: %w", err)
	}
	return lines, nil
}

// parseBlock interprets one blank-line-delimited subtitle block: an index
// line, a timecode line, then the spoken text. Blocks that clean down to
// nothing (sound cues, markup-only lines) are dropped.
func parseBlock(block []string) (Line, bool) {
	if len(block) < 3 {
		return Line{}, false
	}

	seconds, ok := parseTimecode(block[1])
	if !ok {
		return Line{}, false
	}

	text := CleanText(strings.Join(block[2:], " "))
	if text == "" || isShoutingCue(text) {
		return Line{}, false
	}
	return Line{Text: text, Seconds: seconds}, true
}

// parseTimecode extracts the start time from an SRT/VTT timing line
// ("00:02:16,612 --> 00:02:19,376").
func parseTimecode(line string) (float64, bool) {
	m := timecodeRe.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	s, _ := strconv.Atoi(m[3])
	ms, _ := strconv.Atoi(m[4])
	return float64(h)*3600 + float64(min)*60 + float64(s) + float64(ms)/1000, true
}

// CleanText strips markup tags, bracketed sound-effect annotations,
// parenthetical annotations and musical-note markers, then collapses
// whitespace and leading dialogue dashes.
func CleanText(text string) string {
	text = markupRe.ReplaceAllString(text, "")
	text = bracketRe.ReplaceAllString(text, "")
	text = parentheseRe.ReplaceAllString(text, "")
	text = noteRe.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "- ")
	text = strings.TrimPrefix(text, "-")
	return strings.Join(strings.Fields(text), " ")
}

// isShoutingCue reports whether the line is entirely upper-case, which
// subtitle tracks use for sound-effect cues rather than dialogue.
func isShoutingCue(text string) bool {
	hasLetter := false
	for _, r := range text {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return hasLetter
}
