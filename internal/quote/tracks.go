package quote

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
)

// ErrNoSubtitles is returned when no timed-text track exists beside the video.
var ErrNoSubtitles = errors.New("no subtitle track found")

// Accessibility markers must be recognized before language parsing: "hi"
// would otherwise parse as Hindi.
var accessibilityTokens = map[string]bool{
	"hi":  true,
	"sdh": true,
	"cc":  true,
}

// FindTrack locates the most suitable subtitle track next to the video file.
// Hearing-impaired English variants rank first, then plain English, then
// unmarked tracks. Detected dialogue language breaks remaining ties in favor
// of English.
func FindTrack(videoPath string) (string, error) {
	dir := filepath.Dir(videoPath)
	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var candidates []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(name), ".srt") {
			continue
		}
		if strings.HasPrefix(name, base) {
			candidates = append(candidates, name)
		}
	}
	if len(candidates) == 0 {
		// Fall back to any srt in the directory.
		for _, entry := range entries {
			if !entry.IsDir() && strings.HasSuffix(strings.ToLower(entry.Name()), ".srt") {
				candidates = append(candidates, entry.Name())
			}
		}
	}
	if len(candidates) == 0 {
		return "", ErrNoSubtitles
	}

	best := -1
	var tied []string
	for _, name := range candidates {
		score := trackScore(name, base)
		if score > best {
			best, tied = score, tied[:0]
		}
		if score == best {
			tied = append(tied, name)
		}
	}
	if len(tied) == 1 {
		return filepath.Join(dir, tied[0]), nil
	}
	return filepath.Join(dir, pickEnglish(dir, tied)), nil
}

// trackScore ranks a track by the language and accessibility tokens embedded
// in its filename, e.g. "Movie.en.hi.srt".
func trackScore(name, base string) int {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	middle := strings.Trim(strings.TrimPrefix(stem, base), ".")

	var english, impaired, foreign bool
	for _, token := range strings.Split(middle, ".") {
		if token == "" {
			continue
		}
		token = strings.ToLower(token)
		if accessibilityTokens[token] {
			impaired = true
			continue
		}
		tag, err := language.Parse(token)
		if err != nil {
			continue
		}
		if b, _ := tag.Base(); b.String() == "en" {
			english = true
		} else {
			foreign = true
		}
	}

	switch {
	case english && impaired:
		return 5
	case impaired && !foreign:
		return 4
	case english:
		return 3
	case foreign:
		return 1
	default:
		return 2
	}
}

// pickEnglish returns the candidate whose dialogue detects as English, or the
// first candidate when none does.
func pickEnglish(dir string, names []string) string {
	for _, name := range names {
		lines, err := ParseFile(filepath.Join(dir, name))
		if err != nil || len(lines) == 0 {
			continue
		}
		sample := make([]string, 0, 40)
		for i, line := range lines {
			if i >= 40 {
				break
			}
			sample = append(sample, line.Text)
		}
		info := whatlanggo.Detect(strings.Join(sample, " "))
		if info.Lang == whatlanggo.Eng {
			return name
		}
	}
	return names[0]
}
