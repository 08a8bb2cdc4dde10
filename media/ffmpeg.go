// Package media converts uploaded audio into the form the whisper.cpp CLI
// reads: 16 kHz mono 16-bit PCM WAV.
package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kbukum/whisperdesk/process"
)

// SampleRate is the rate whisper models are trained on.
const SampleRate = 16000

// Converter runs ffmpeg.
type Converter struct {
	// Binary is the ffmpeg executable; defaults to "ffmpeg".
	Binary string
}

// NewConverter returns a converter using binary, or "ffmpeg" when empty.
func NewConverter(binary string) *Converter {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Converter{Binary: binary}
}

// Available reports whether the ffmpeg binary resolves.
func (c *Converter) Available() bool {
	_, err := process.LookPath(c.Binary)
	return err == nil
}

// ToWAV converts src to a 16 kHz mono WAV inside dir and returns its path.
// The caller removes the file.
func (c *Converter) ToWAV(ctx context.Context, src, dir string) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	out := filepath.Join(dir, base+"_16k.wav")

	_, err := process.Run(ctx, process.Command{
		Binary: c.Binary,
		Args:   ToWAVArgs(src, out),
	})
	if err != nil {
		_ = os.Remove(out)
		return "", fmt.Errorf("ffmpeg convert %s: %w", filepath.Base(src), err)
	}
	return out, nil
}

// ToWAVArgs builds the ffmpeg arguments for a conversion of src into dst.
func ToWAVArgs(src, dst string) []string {
	return []string{
		"-nostdin", "-hide_banner", "-loglevel", "error",
		"-y", "-i", src,
		"-ac", "1", "-ar", fmt.Sprint(SampleRate),
		"-c:a", "pcm_s16le", "-f", "wav",
		dst,
	}
}
