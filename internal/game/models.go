package game

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/roguelike3d/internal/config"
	"github.com/Faultbox/roguelike3d/internal/engine/rigged"
	"github.com/Faultbox/roguelike3d/internal/logger"
)

// WriteModels saves the built-in model definitions to cfg.Data.ModelDir so
// they can be edited and picked up by the loading state.
func WriteModels(cfg *config.Config) ([]string, error) {
	dir := cfg.Data.ModelDir
	if dir == "" {
		return nil, errors.New("data.model_dir is not set")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create model dir: %w", err)
	}

	sword, err := rigged.Sword(cfg.Game.SwordLength)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, rigged.ClassSword+".yaml")
	if err := writeModel(path, sword); err != nil {
		return nil, err
	}
	logger.Info("model written", zap.String("class", sword.Class), zap.String("path", path))
	return []string{path}, nil
}

func writeModel(path string, m *rigged.Model) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := rigged.SaveDefinition(f, m); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
