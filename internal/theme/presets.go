package theme

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/SergeiKhy/linkstack/internal/models"
)

var ErrPresetNotFound = errors.New("preset not found")

//go:embed presets.json
var presetsJSON []byte

var catalog = mustLoadCatalog(presetsJSON)

func mustLoadCatalog(data []byte) []models.Preset {
	var presets []models.Preset
	if err := json.Unmarshal(data, &presets); err != nil {
		panic(fmt.Sprintf("theme: invalid preset catalog: %v", err))
	}
	for _, p := range presets {
		if err := p.Validate(); err != nil {
			panic(fmt.Sprintf("theme: invalid preset %q: %v", p.Name, err))
		}
	}
	return presets
}

// Presets возвращает копию встроенного каталога в порядке отображения
func Presets() []models.Preset {
	out := make([]models.Preset, len(catalog))
	copy(out, catalog)
	return out
}

// Find ищет пресет по имени без учёта регистра
func Find(name string) (models.Preset, error) {
	for _, p := range catalog {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return models.Preset{}, fmt.Errorf("%w: %q", ErrPresetNotFound, name)
}

// Apply переносит поля пресета в тему; фоновое изображение профиля сохраняется
func Apply(current models.ThemeConfig, preset models.Preset) models.ThemeConfig {
	next := preset.ThemeConfig
	next.BackgroundImage = current.BackgroundImage
	return next
}
