package models

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/taigrr/lumen/internal/logger"
	"github.com/taigrr/lumen/pkg/texture"
)

// ErrUnsupportedFormat is returned for model files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported model format")

// LoadFile loads a model, choosing the loader by file extension.
func LoadFile(path string, store *texture.Store) (*Object, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return LoadOBJ(path, store)
	case ".gltf", ".glb":
		return LoadGLTF(path, store)
	default:
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupportedFormat)
	}
}

// Load is LoadFile for asset paths that are allowed to be missing. Errors
// are logged and an empty object is returned in place of the model.
func Load(path string, store *texture.Store) *Object {
	obj, err := LoadFile(path, store)
	if err != nil {
		logger.Warn("model failed to load, using empty object",
			zap.String("path", path), zap.Error(err))
		return Empty(filepath.Base(path))
	}
	logger.Info("model loaded",
		zap.String("path", path),
		zap.Int("meshes", len(obj.Meshes())),
		zap.Int("triangles", obj.TriangleCount()))
	return obj
}
