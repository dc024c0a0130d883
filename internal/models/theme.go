package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidTheme возвращается, если конфигурация темы не проходит валидацию
var ErrInvalidTheme = errors.New("invalid theme config")

// BackgroundStyle стиль фона страницы
type BackgroundStyle string

const (
	BackgroundSolid    BackgroundStyle = "solid"
	BackgroundGradient BackgroundStyle = "gradient"
)

// ButtonStyle форма кнопок ссылок
type ButtonStyle string

const (
	ButtonSharp   ButtonStyle = "sharp"
	ButtonRounded ButtonStyle = "rounded"
	ButtonPill    ButtonStyle = "pill"
)

// LinkFill заливка кнопок ссылок
type LinkFill string

const (
	LinkFillFill    LinkFill = "fill"
	LinkFillOutline LinkFill = "outline"
	LinkFillGlass   LinkFill = "glass"
)

// LinkShadow тень кнопок ссылок
type LinkShadow string

const (
	LinkShadowNone   LinkShadow = "none"
	LinkShadowSubtle LinkShadow = "subtle"
	LinkShadowHard   LinkShadow = "hard"
)

func (s BackgroundStyle) Valid() bool {
	return s == BackgroundSolid || s == BackgroundGradient
}

func (s ButtonStyle) Valid() bool {
	return s == ButtonSharp || s == ButtonRounded || s == ButtonPill
}

func (f LinkFill) Valid() bool {
	return f == LinkFillFill || f == LinkFillOutline || f == LinkFillGlass
}

func (s LinkShadow) Valid() bool {
	return s == LinkShadowNone || s == LinkShadowSubtle || s == LinkShadowHard
}

func (s *BackgroundStyle) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, "backgroundStyle", func(v string) bool {
		*s = BackgroundStyle(v)
		return s.Valid()
	})
}

func (s *ButtonStyle) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, "buttonStyle", func(v string) bool {
		*s = ButtonStyle(v)
		return s.Valid()
	})
}

func (f *LinkFill) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, "linkFill", func(v string) bool {
		*f = LinkFill(v)
		return f.Valid()
	})
}

func (s *LinkShadow) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, "linkShadow", func(v string) bool {
		*s = LinkShadow(v)
		return s.Valid()
	})
}

// unmarshalEnum декодирует строку и отклоняет значения вне перечисления
func unmarshalEnum(data []byte, field string, set func(string) bool) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %s must be a string", ErrInvalidTheme, field)
	}
	if !set(strings.TrimSpace(raw)) {
		return fmt.Errorf("%w: unknown %s %q", ErrInvalidTheme, field, raw)
	}
	return nil
}

// ThemeConfig визуальные настройки публичной страницы профиля
type ThemeConfig struct {
	BackgroundColor string          `json:"backgroundColor"`
	TextColor       string          `json:"textColor"`
	LinkTextColor   string          `json:"linkTextColor"`
	FontFamily      string          `json:"fontFamily"`
	BackgroundImage *string         `json:"backgroundImage,omitempty"`
	BackgroundStyle BackgroundStyle `json:"backgroundStyle"`
	ButtonStyle     ButtonStyle     `json:"buttonStyle"`
	LinkFill        LinkFill        `json:"linkFill"`
	LinkShadow      LinkShadow      `json:"linkShadow"`
	LinkColor       *string         `json:"linkColor,omitempty"`
}

// DefaultTheme тема, которая назначается новому профилю
func DefaultTheme() ThemeConfig {
	return ThemeConfig{
		BackgroundColor: "#111827",
		TextColor:       "#FFFFFF",
		LinkTextColor:   "#FFFFFF",
		FontFamily:      "'Inter', sans-serif",
		BackgroundStyle: BackgroundSolid,
		ButtonStyle:     ButtonRounded,
		LinkFill:        LinkFillFill,
		LinkShadow:      LinkShadowNone,
	}
}

// Validate проверяет обязательные поля и значения перечислений
func (t ThemeConfig) Validate() error {
	required := map[string]string{
		"backgroundColor": t.BackgroundColor,
		"textColor":       t.TextColor,
		"linkTextColor":   t.LinkTextColor,
		"fontFamily":      t.FontFamily,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidTheme, field)
		}
	}
	if !t.BackgroundStyle.Valid() {
		return fmt.Errorf("%w: unknown backgroundStyle %q", ErrInvalidTheme, t.BackgroundStyle)
	}
	if !t.ButtonStyle.Valid() {
		return fmt.Errorf("%w: unknown buttonStyle %q", ErrInvalidTheme, t.ButtonStyle)
	}
	if !t.LinkFill.Valid() {
		return fmt.Errorf("%w: unknown linkFill %q", ErrInvalidTheme, t.LinkFill)
	}
	if !t.LinkShadow.Valid() {
		return fmt.Errorf("%w: unknown linkShadow %q", ErrInvalidTheme, t.LinkShadow)
	}
	return nil
}

// ParseThemeConfig декодирует и валидирует тему (из БД, запроса или ответа AI)
func ParseThemeConfig(data []byte) (ThemeConfig, error) {
	var t ThemeConfig
	if err := json.Unmarshal(data, &t); err != nil {
		if errors.Is(err, ErrInvalidTheme) {
			return ThemeConfig{}, err
		}
		return ThemeConfig{}, fmt.Errorf("%w: %v", ErrInvalidTheme, err)
	}
	if err := t.Validate(); err != nil {
		return ThemeConfig{}, err
	}
	return t, nil
}

// Preset именованная готовая тема
type Preset struct {
	Name string `json:"name"`
	ThemeConfig
}

// Validate проверяет имя и тему пресета
func (p Preset) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: preset name is required", ErrInvalidTheme)
	}
	return p.ThemeConfig.Validate()
}
