package gfx

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/roguelike3d/internal/logger"
)

// Source is a vertex/fragment shader pair.
type Source struct {
	Vertex   string
	Fragment string
}

// ProgramCache holds programs shared across every instance of a model class
// or renderer permutation. A program is compiled the first time its key is
// requested and reused until it is explicitly disposed.
type ProgramCache struct {
	mu       sync.Mutex
	programs map[string]Program
}

// NewProgramCache creates an empty cache.
func NewProgramCache() *ProgramCache {
	return &ProgramCache{programs: make(map[string]Program)}
}

// GetOrCreate returns the cached program for key, compiling src on first use.
// Failures are logged with the compile log and not cached, so a later call
// retries.
func (c *ProgramCache) GetOrCreate(ctx Context, key string, src Source) (Program, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.programs[key]; ok {
		return p, nil
	}

	p, err := ctx.CompileProgram(key, src.Vertex, src.Fragment)
	if err != nil {
		logger.Error("problem loading shader", zap.String("program", key), zap.Error(err))
		return 0, fmt.Errorf("program %s: %w", key, err)
	}
	c.programs[key] = p
	logger.Debug("program compiled", zap.String("program", key), zap.Uint32("id", uint32(p)))
	return p, nil
}

// Get returns a cached program without compiling.
func (c *ProgramCache) Get(key string) (Program, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.programs[key]
	return p, ok
}

// Len returns the number of cached programs.
func (c *ProgramCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.programs)
}

// Dispose deletes the program stored under key.
func (c *ProgramCache) Dispose(ctx Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.programs[key]; ok {
		ctx.DeleteProgram(p)
		delete(c.programs, key)
	}
}

// Clear deletes every cached program.
func (c *ProgramCache) Clear(ctx Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, p := range c.programs {
		ctx.DeleteProgram(p)
		delete(c.programs, key)
	}
}
