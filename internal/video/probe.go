package video

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Info describes a video stream as reported by ffprobe.
type Info struct {
	TotalFrames int
	FrameRate   float64
	Duration    float64 // seconds
}

// Probe inspects the first video stream of the file. When the container does
// not carry an exact frame count, the count is estimated from duration and
// frame rate.
func Probe(ctx context.Context, ffprobeCmd, path string) (Info, error) {
	cmdPath, err := exec.LookPath(ffprobeCmd)
	if err != nil {
		return Info{}, fmt.Errorf("ffprobe not available: %w", err)
	}

	cmd := exec.CommandContext(ctx, cmdPath, probeArgs(path)...)
	output, err := cmd.Output()
	if err != nil {
		return Info{}, fmt.Errorf("probe %s: %w", path, err)
	}

	var probeResult struct {
		Streams []struct {
			NbFrames     string `json:"nb_frames"`
			RFrameRate   string `json:"r_frame_rate"`
			AvgFrameRate string `json:"avg_frame_rate"`
			Duration     string `json:"duration"`
		} `json:"streams"`
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(output, &probeResult); err != nil {
		return Info{}, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if len(probeResult.Streams) == 0 {
		return Info{}, fmt.Errorf("no video stream in %s", path)
	}

	stream := probeResult.Streams[0]
	info := Info{}

	info.FrameRate = parseRate(stream.AvgFrameRate)
	if info.FrameRate == 0 {
		info.FrameRate = parseRate(stream.RFrameRate)
	}

	if d, err := strconv.ParseFloat(stream.Duration, 64); err == nil {
		info.Duration = d
	} else if d, err := strconv.ParseFloat(probeResult.Format.Duration, 64); err == nil {
		info.Duration = d
	}

	if n, err := strconv.Atoi(stream.NbFrames); err == nil && n > 0 {
		info.TotalFrames = n
	} else if info.Duration > 0 && info.FrameRate > 0 {
		info.TotalFrames = int(info.Duration * info.FrameRate)
	}

	if info.TotalFrames <= 0 || info.FrameRate <= 0 {
		return Info{}, fmt.Errorf("unusable stream info for %s (frames=%d rate=%f)",
			path, info.TotalFrames, info.FrameRate)
	}
	return info, nil
}

// parseRate parses ffprobe's fractional rate notation ("24000/1001").
func parseRate(rate string) float64 {
	if rate == "" || rate == "0/0" {
		return 0
	}
	num, den, found := strings.Cut(rate, "/")
	if !found {
		f, _ := strconv.ParseFloat(rate, 64)
		return f
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}

func probeArgs(path string) []string {
	return []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=nb_frames,r_frame_rate,avg_frame_rate,duration",
		"-show_entries", "format=duration",
		"-print_format", "json",
		path,
	}
}
