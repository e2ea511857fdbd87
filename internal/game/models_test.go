package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/roguelike3d/internal/config"
	"github.com/Faultbox/roguelike3d/internal/engine/rigged"
)

func TestWriteModels(t *testing.T) {
	cfg := config.Default()
	cfg.Data.ModelDir = filepath.Join(t.TempDir(), "models")
	cfg.Game.SwordLength = 4

	paths, err := WriteModels(cfg)
	require.NoError(t, err)
	require.Len(t, paths, 1)

	f, err := os.Open(paths[0])
	require.NoError(t, err)
	defer f.Close()
	m, err := rigged.LoadDefinition(f)
	require.NoError(t, err)
	assert.Equal(t, rigged.ClassSword, m.Class)
	assert.Equal(t, 7, m.Len())
}

func TestWriteModelsNeedsDir(t *testing.T) {
	cfg := config.Default()
	cfg.Data.ModelDir = ""
	_, err := WriteModels(cfg)
	assert.Error(t, err)
}
