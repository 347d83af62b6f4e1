package camera

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// DiscardSurface drops every frame.
type DiscardSurface struct{}

func (DiscardSurface) Show(Frame) error { return nil }

// FileSurface keeps the latest frame in a single file, replaced atomically so
// readers never see a partial image.
type FileSurface struct {
	Path   string
	Logger *zap.Logger
}

func (s *FileSurface) Show(frame Frame) error {
	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, ".frame-*")
	if err != nil {
		return fmt.Errorf("create temp frame: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(frame.Data); err != nil {
		tmp.Close()
		return fmt.Errorf("write frame: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close frame: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("replace %s: %w", s.Path, err)
	}

	if s.Logger != nil {
		s.Logger.Debug("frame written",
			zap.String("path", s.Path),
			zap.Uint64("seq", frame.Seq),
			zap.String("size", humanize.Bytes(uint64(len(frame.Data)))),
			zap.Int("width", frame.Width),
			zap.Int("height", frame.Height))
	}
	return nil
}
