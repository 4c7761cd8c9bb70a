package quote

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureSRT = `1
00:00:00,000 --> 00:00:00,900
I never meant for this to happen.

2
00:00:01,000 --> 00:00:01,900
<i>Neither did I, but here we are.</i>

3
00:00:02,000 --> 00:00:02,900
Then we finish it together.

4
00:00:50,000 --> 00:00:50,900
[door slams] Who told you about the money?

5
00:00:51,000 --> 00:00:51,900
Nobody had to tell me anything.
`

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseFile_CleansAndTimestamps(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "movie.srt", fixtureSRT)

	lines, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, lines, 5)

	assert.Equal(t, "I never meant for this to happen.", lines[0].Text)
	assert.InDelta(t, 0.0, lines[0].Seconds, 0.001)
	assert.Equal(t, "Neither did I, but here we are.", lines[1].Text)
	assert.Equal(t, "Who told you about the money?", lines[3].Text)
	assert.InDelta(t, 50.0, lines[3].Seconds, 0.001)
}

func TestParseFile_DropsSoundCues(t *testing.T) {
	content := `1
00:00:01,000 --> 00:00:02,000
EXPLOSION

2
00:00:03,000 --> 00:00:04,000
[thunder rumbling]

3
00:00:05,000 --> 00:00:06,000
♪ ♪

4
00:00:07,000 --> 00:00:08,000
That was close.
`
	path := writeFixture(t, t.TempDir(), "cues.srt", content)

	lines, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "That was close.", lines[0].Text)
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Hello there.", CleanText("<i>Hello</i> [sighs] (whispering) there. ♪"))
	assert.Equal(t, "Get down!", CleanText("- Get down!"))
	assert.Equal(t, "", CleanText("[door creaks]"))
}

func TestAssembleBlocks_RejectsSceneCutGap(t *testing.T) {
	lines := []Line{
		{Text: "line at zero seconds.", Seconds: 0},
		{Text: "line at one second...", Seconds: 1},
		{Text: "line at two seconds..", Seconds: 2},
		{Text: "line at fifty seconds", Seconds: 50},
		{Text: "line at fifty-one....", Seconds: 51},
	}
	opts := Options{MinLines: 2, MaxLines: 2, MinLineLen: 5, MaxLineLen: 120, MaxGap: 10}

	blocks := AssembleBlocks(lines, opts, rand.New(rand.NewSource(7)))

	for _, block := range blocks {
		for i := 1; i < len(block); i++ {
			gap := block[i].Seconds - block[i-1].Seconds
			assert.GreaterOrEqual(t, gap, 0.0)
			assert.LessOrEqual(t, gap, 10.0)
		}
	}

	// [0,1] [1,2] and [50,51] are valid; nothing spans 2 -> 50.
	require.Len(t, blocks, 3)
	assert.InDelta(t, 50.0, blocks[2][0].Seconds, 0.001)
}

func TestFilterLines_RelaxesWhenTooFewRemain(t *testing.T) {
	lines := []Line{
		{Text: "short", Seconds: 0},
		{Text: "this line is comfortably within the strict bounds", Seconds: 1},
		{Text: "this one is far too long for the strict upper bound so it only survives the relaxed pass", Seconds: 2},
	}
	opts := Options{MinLines: 2, MaxLines: 2, MinLineLen: 10, MaxLineLen: 60, MaxGap: 10}

	strict := FilterLines(lines, opts, 0)
	require.Len(t, strict, 1)

	relaxed := FilterLines(lines, opts, 2)
	require.Len(t, relaxed, 2)
}

func TestExtract_FailsOnInsufficientDialogue(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "movie.mkv")
	require.NoError(t, os.WriteFile(video, []byte("v"), 0o644))
	writeFixture(t, dir, "movie.srt", fixtureSRT)

	opts := Options{MinLines: 2, MaxLines: 3, MinLineLen: 10, MaxLineLen: 120, MaxGap: 10}
	_, err := Extract(video, opts, 50, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrInsufficientDialogue)
}

func TestExtract_ReturnsRequestedRounds(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "movie.mkv")
	require.NoError(t, os.WriteFile(video, []byte("v"), 0o644))

	var content string
	for i := 0; i < 40; i++ {
		content += fmt.Sprintf("%d\n00:00:%02d,000 --> 00:00:%02d,500\nA perfectly usable dialogue line number %d.\n\n", i+1, i, i, i)
	}
	writeFixture(t, dir, "movie.en.srt", content)

	opts := Options{MinLines: 2, MaxLines: 4, MinLineLen: 10, MaxLineLen: 120, MaxGap: 10}
	blocks, err := Extract(video, opts, 3, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Len(t, blocks, 3)
}

func TestFindTrack_PriorityOrder(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "movie.mkv")
	require.NoError(t, os.WriteFile(video, []byte("v"), 0o644))
	writeFixture(t, dir, "movie.srt", fixtureSRT)
	writeFixture(t, dir, "movie.en.srt", fixtureSRT)
	hi := writeFixture(t, dir, "movie.en.hi.srt", fixtureSRT)

	got, err := FindTrack(video)
	require.NoError(t, err)
	assert.Equal(t, hi, got)
}

func TestTrackScore_FilenameTokens(t *testing.T) {
	assert.Equal(t, 5, trackScore("movie.en.hi.srt", "movie"))
	assert.Equal(t, 4, trackScore("movie.sdh.srt", "movie"))
	assert.Equal(t, 3, trackScore("movie.eng.srt", "movie"))
	assert.Equal(t, 2, trackScore("movie.srt", "movie"))
	assert.Equal(t, 1, trackScore("movie.de.srt", "movie"))
}

func TestFindTrack_NoTrack(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "movie.mkv")
	require.NoError(t, os.WriteFile(video, []byte("v"), 0o644))

	_, err := FindTrack(video)
	assert.ErrorIs(t, err, ErrNoSubtitles)
}
