package recorder

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/sitescribe/internal/common"
)

// FFmpegDevice captures audio and photos by shelling out to ffmpeg. It
// targets Linux field units (ALSA microphone, V4L2 camera); the input
// names are configurable for other setups.
type FFmpegDevice struct {
	AudioInput string // e.g. "default" (ALSA source)
	VideoInput string // e.g. "/dev/video0" (V4L2 source)
	TmpDir     string // staging area for device output before the mover runs
	FFmpegBin  string
}

// NewFFmpegDevice returns a device with the common Linux defaults.
func NewFFmpegDevice(tmpDir string) *FFmpegDevice {
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}
	return &FFmpegDevice{
		AudioInput: "default",
		VideoInput: "/dev/video0",
		TmpDir:     tmpDir,
		FFmpegBin:  "ffmpeg",
	}
}

// RequestPermission checks that the ffmpeg binary is reachable. File
// permissions on the input devices surface later, as start errors.
func (d *FFmpegDevice) RequestPermission(_ context.Context) (bool, error) {
	if _, err := exec.LookPath(d.FFmpegBin); err != nil {
		return false, nil
	}
	return true, nil
}

// StartRecording spawns an ffmpeg process writing mono 16kHz WAV into the
// staging directory and returns a handle that finalizes it.
func (d *FFmpegDevice) StartRecording(ctx context.Context) (RecordingHandle, error) {
	out := filepath.Join(d.TmpDir, fmt.Sprintf("rec_%d.wav", time.Now().UnixNano()))

	// ffmpeg -y -f alsa -i default -ac 1 -ar 16000 -f wav out
	cmd := exec.Command(d.FFmpegBin,
		"-y", "-f", "alsa", "-i", d.AudioInput,
		"-ac", "1", "-ar", "16000",
		"-f", "wav",
		out,
	)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start: %w", err)
	}
	return &ffmpegHandle{cmd: cmd, out: out}, nil
}

// CapturePhoto grabs a single frame from the video input.
func (d *FFmpegDevice) CapturePhoto(ctx context.Context) (string, error) {
	out := filepath.Join(d.TmpDir, fmt.Sprintf("photo_%d.jpg", time.Now().UnixNano()))

	// ffmpeg -y -f v4l2 -i /dev/video0 -frames:v 1 out
	cmd := exec.CommandContext(ctx, d.FFmpegBin,
		"-y", "-f", "v4l2", "-i", d.VideoInput,
		"-frames:v", "1",
		out,
	)
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg photo capture: %w", err)
	}
	return out, nil
}

type ffmpegHandle struct {
	cmd *exec.Cmd
	out string
}

// Stop interrupts ffmpeg so it finalizes the WAV header, waits for the
// process to exit and returns the artifact path. A recording that never
// produced a file reports common.ErrFileNotFound.
func (h *ffmpegHandle) Stop(_ context.Context) (string, error) {
	if err := h.cmd.Process.Signal(os.Interrupt); err != nil {
		_ = h.cmd.Process.Kill()
	}
	// ffmpeg exits non-zero when interrupted; the artifact matters, not
	// the exit code.
	_ = h.cmd.Wait()

	if _, err := os.Stat(h.out); err != nil {
		if os.IsNotExist(err) {
			return "", common.ErrFileNotFound
		}
		return "", err
	}
	return h.out, nil
}
