package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"jobscout-engine/internal/classify"
)

// RulesFile is the shape of a standalone category rules file.
type RulesFile struct {
	Categories []classify.CategoryRule `yaml:"categories"`
}

// OverlayCategories replaces cfg's category rules with those in rulesPath.
// A missing file leaves cfg unchanged.
func OverlayCategories(cfg *Config, rulesPath string) error {
	b, err := os.ReadFile(rulesPath)
	if err != nil {
		// Missing rules file should not kill startup
		return nil
	}

	var rf RulesFile
	if err := yaml.Unmarshal(b, &rf); err != nil {
		return fmt.Errorf("parse rules file %s: %w", rulesPath, err)
	}

	if len(rf.Categories) > 0 {
		cfg.Classification.Categories = rf.Categories
	}
	return nil
}
