package game

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/taigrr/lumen/pkg/render"
)

// FrameWriter saves numbered frames into a directory.
type FrameWriter struct {
	Dir string
}

// NewFrameWriter creates dir if needed.
func NewFrameWriter(dir string) (*FrameWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create frame dir: %w", err)
	}
	return &FrameWriter{Dir: dir}, nil
}

// Path returns the file name of frame i.
func (w *FrameWriter) Path(i int) string {
	return filepath.Join(w.Dir, fmt.Sprintf("frame_%03d.png", i))
}

// Write saves fb as frame i.
func (w *FrameWriter) Write(fb *render.FrameBuffer, i int) error {
	return fb.SavePNG(w.Path(i))
}
