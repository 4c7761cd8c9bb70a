package video

import (
	"context"
	"fmt"
	"os/exec"
	"sync"

	"github.com/reelquiz/reelquiz/internal/metrics"
)

// Analysis resolution for average-color sampling. Small on purpose: the mean
// over a 64x36 downscale matches the mean over the full frame closely enough
// and keeps per-frame decode cost low.
const (
	analysisWidth  = 64
	analysisHeight = 36
)

// Decoder holds the decode resources for one open video file. It is the
// releasable handle stored in the session registry: Close cancels any
// in-flight decode and may be called from any goroutine, any number of times.
type Decoder struct {
	path      string
	info      Info
	ffmpegCmd string

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// Open probes the file and prepares a decoder for it. The returned decoder
// must be closed on every exit path.
func Open(ctx context.Context, path string) (*Decoder, error) {
	return OpenWithCommands(ctx, path, "ffmpeg", "ffprobe")
}

// OpenWithCommands is Open with explicit ffmpeg/ffprobe binary names.
func OpenWithCommands(ctx context.Context, path, ffmpegCmd, ffprobeCmd string) (*Decoder, error) {
	info, err := Probe(ctx, ffprobeCmd, path)
	if err != nil {
		return nil, err
	}

	decCtx, cancel := context.WithCancel(ctx)
	return &Decoder{
		path:      path,
		info:      info,
		ffmpegCmd: ffmpegCmd,
		ctx:       decCtx,
		cancel:    cancel,
	}, nil
}

func (d *Decoder) Info() Info { return d.info }

// Close releases the decoder. Idempotent.
func (d *Decoder) Close() error {
	d.closeOnce.Do(d.cancel)
	return nil
}

// seconds converts a frame index to its timeline position.
func (d *Decoder) seconds(frame int) float64 {
	return float64(frame) / d.info.FrameRate
}

// decodeRGB seeks directly to the frame and decodes it as raw RGB at analysis
// resolution. Direct seeks, not sequential reads: per-position cost stays
// constant regardless of file length.
func (d *Decoder) decodeRGB(frame int) ([]byte, error) {
	args := []string{
		"-ss", fmt.Sprintf("%.3f", d.seconds(frame)),
		"-i", d.path,
		"-frames:v", "1",
		"-vf", fmt.Sprintf("scale=%d:%d", analysisWidth, analysisHeight),
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"pipe:1",
	}
	cmd := exec.CommandContext(d.ctx, d.ffmpegCmd, append([]string{"-v", "error"}, args...)...)
	buf, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("decode frame %d: %w", frame, err)
	}
	want := analysisWidth * analysisHeight * 3
	if len(buf) < want {
		return nil, fmt.Errorf("decode frame %d: short read (%d of %d bytes)", frame, len(buf), want)
	}
	metrics.FramesDecoded.Inc()
	return buf[:want], nil
}

// writeJPEG seeks to the frame and writes it as a thumbnail JPEG.
func (d *Decoder) writeJPEG(frame int, dest string) error {
	args := []string{
		"-ss", fmt.Sprintf("%.3f", d.seconds(frame)),
		"-i", d.path,
		"-frames:v", "1",
		"-vf", "scale=480:-2",
		"-q:v", "3",
		"-y",
		dest,
	}
	cmd := exec.CommandContext(d.ctx, d.ffmpegCmd, append([]string{"-v", "error"}, args...)...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("extract frame %d: %w", frame, err)
	}
	metrics.FramesDecoded.Inc()
	return nil
}
