package texture

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"os"

	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder

	"github.com/taigrr/lumen/internal/logger"
)

var errEmptyImage = errors.New("image has zero width or height")

// Store owns every texture used by a scene. Textures are deduplicated by
// name and addressed by ID. A Store is populated before rendering starts
// and is only read while a frame renders.
type Store struct {
	textures []*Texture
	byName   map[string]ID
}

// NewStore creates an empty texture store.
func NewStore() *Store {
	return &Store{byName: make(map[string]ID)}
}

// LoadOrGet returns the texture previously registered under path, or
// decodes the file. Failures never propagate: a 1x1 placeholder is stored
// under path and a warning is logged.
func (s *Store) LoadOrGet(path string, mode Mode) *Texture {
	if id, ok := s.byName[path]; ok {
		return s.Get(id)
	}

	img, err := decodeFile(path)
	if err != nil {
		logger.Warn("using placeholder texture",
			zap.String("path", path),
			zap.Stringer("mode", mode),
			zap.Error(err))
		return s.add(path, placeholder())
	}

	tex := s.add(path, fromImage(img, mode))
	logger.Debug("texture loaded",
		zap.String("path", path),
		zap.Uint32("id", uint32(tex.id)),
		zap.Int("width", tex.Width),
		zap.Int("height", tex.Height),
		zap.Bool("transparent", tex.Transparent))
	return tex
}

// Add registers an already decoded image under name. If name is already
// present the existing texture is returned and img is ignored.
func (s *Store) Add(name string, img image.Image, mode Mode) *Texture {
	if id, ok := s.byName[name]; ok {
		return s.Get(id)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		logger.Warn("using placeholder texture", zap.String("name", name), zap.Error(errEmptyImage))
		return s.add(name, placeholder())
	}
	return s.add(name, fromImage(img, mode))
}

// Get returns the texture for id in constant time. id must have been
// issued by this store.
func (s *Store) Get(id ID) *Texture {
	return s.textures[id-1]
}

// Lookup returns the texture for id, or nil when id is zero.
func (s *Store) Lookup(id ID) *Texture {
	if !id.Exists() {
		return nil
	}
	return s.Get(id)
}

// Len returns the number of stored textures.
func (s *Store) Len() int {
	return len(s.textures)
}

// add is the only place an ID is assigned.
func (s *Store) add(name string, tex *Texture) *Texture {
	s.textures = append(s.textures, tex)
	tex.id = ID(len(s.textures))
	s.byName[name] = tex.id
	return tex
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, errEmptyImage
	}
	return img, nil
}
