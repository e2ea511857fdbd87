package texture

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/roguelike3d/internal/engine/gfx"
	"github.com/Faultbox/roguelike3d/internal/logger"
)

var extensions = []string{".png", ".tga", ".jpg"}

// Store uploads textures on first use and hands out the same handle
// afterwards. Missing textures resolve to Blank.
type Store struct {
	ctx     gfx.Context
	dir     string
	maxSize int

	mu       sync.Mutex
	textures map[string]gfx.Texture
}

// NewStore creates a store reading from dir. dir may be empty.
func NewStore(ctx gfx.Context, dir string, maxSize int) *Store {
	return &Store{
		ctx:      ctx,
		dir:      dir,
		maxSize:  maxSize,
		textures: make(map[string]gfx.Texture),
	}
}

// Get returns the texture called name, uploading it if needed.
func (s *Store) Get(name string) (gfx.Texture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(name)
}

func (s *Store) get(name string) (gfx.Texture, error) {
	if t, ok := s.textures[name]; ok {
		return t, nil
	}

	img, err := s.load(name)
	if err != nil {
		logger.Warn("texture not found, using blank", zap.String("name", name), zap.Error(err))
		if name == Blank {
			return 0, err
		}
		t, berr := s.get(Blank)
		if berr != nil {
			return 0, berr
		}
		s.textures[name] = t
		return t, nil
	}

	t, err := s.ctx.UploadTexture(img)
	if err != nil {
		return 0, fmt.Errorf("upload texture %s: %w", name, err)
	}
	s.textures[name] = t
	logger.Debug("texture loaded", zap.String("name", name), zap.Int("width", img.Bounds().Dx()))
	return t, nil
}

// load decodes name without uploading it. Files in the store directory win
// over builtins.
func (s *Store) load(name string) (*image.RGBA, error) {
	if s.dir != "" {
		for _, ext := range extensions {
			path := filepath.Join(s.dir, name+ext)
			f, err := os.Open(path)
			if err != nil {
				continue
			}
			img, err := Decode(f, path)
			f.Close()
			if err != nil {
				return nil, err
			}
			return ToRGBA(img, s.maxSize), nil
		}
	}
	if img, ok := Builtin(name); ok {
		return img, nil
	}
	return nil, fmt.Errorf("no texture %q in %q", name, s.dir)
}

// Len returns the number of names resolved so far.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.textures)
}

// Dispose deletes every uploaded texture.
func (s *Store) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := make(map[gfx.Texture]bool)
	for name, t := range s.textures {
		if !deleted[t] {
			s.ctx.DeleteTexture(t)
			deleted[t] = true
		}
		delete(s.textures, name)
	}
}
