package theme

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/SergeiKhy/linkstack/internal/models"
)

var ErrNoPresets = errors.New("no valid presets in response")

// fencePattern ограждения ```json в любом регистре и голые ```
var fencePattern = regexp.MustCompile("(?i)```json|```")

var contentCleaner = strings.NewReplacer(
	`\n`, "",
	`\"`, `"`,
	"“", `"`,
	"”", `"`,
)

// CleanContent убирает markdown-ограждения и экранирование, которые модель добавляет вопреки инструкции
func CleanContent(content string) string {
	return strings.TrimSpace(contentCleaner.Replace(fencePattern.ReplaceAllString(content, "")))
}

// ParsePresets разбирает ответ модели в список пресетов. Невалидные элементы
// отбрасываются, пустой результат считается ошибкой.
func ParsePresets(content string) ([]models.Preset, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(CleanContent(content)), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse presets: %w", err)
	}

	presets := make([]models.Preset, 0, len(raw))
	for _, item := range raw {
		var p models.Preset
		if err := json.Unmarshal(item, &p); err != nil {
			continue
		}
		if err := p.Validate(); err != nil {
			continue
		}
		// Картинку фона модель не выбирает
		p.BackgroundImage = nil
		presets = append(presets, p)
	}

	if len(presets) == 0 {
		return nil, ErrNoPresets
	}
	return presets, nil
}
