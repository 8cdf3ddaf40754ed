package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

var (
	ErrDecode            = errors.New("audio decode failed")
	ErrUnsupportedFormat = errors.New("unsupported audio format (want wav, mp3, m4a or flac)")
)

// SupportedFormat reports whether the filename carries an extension the
// decoder accepts.
func SupportedFormat(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".wav", ".mp3", ".m4a", ".flac":
		return true
	}
	return false
}

// DecodeToWAV converts any supported audio file to mono 16kHz PCM WAV and
// returns the converted path. WAV input that already decodes cleanly is
// returned as-is without spawning ffmpeg.
func DecodeToWAV(ctx context.Context, srcPath, dstDir string) (string, error) {
	if strings.EqualFold(filepath.Ext(srcPath), ".wav") {
		if _, err := ReadWAV(srcPath); err == nil {
			return srcPath, nil
		}
	}

	base := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	out := filepath.Join(dstDir, base+"_16k.wav")

	// ffmpeg -y -i input -ac 1 -ar 16000 -f wav output
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y", "-i", srcPath,
		"-ac", "1", "-ar", "16000",
		"-f", "wav",
		out,
	)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		os.Remove(out)
		return "", fmt.Errorf("%w: ffmpeg: %v: %s", ErrDecode, err, lastLine(stderr.String()))
	}
	return out, nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}
