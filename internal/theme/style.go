package theme

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/SergeiKhy/linkstack/internal/models"
)

var hexColor = regexp.MustCompile(`^#?([0-9a-fA-F]{2})([0-9a-fA-F]{2})([0-9a-fA-F]{2})$`)

// Значения, которые могут закрыть декларацию или подгрузить внешний ресурс
var unsafeCSS = strings.NewReplacer(
	";", "", "{", "", "}", "", "<", "", ">", "", "\\", "", "\"", "",
)

// SafeValue убирает из значения темы всё, что позволяет выйти за пределы одного CSS-свойства
func SafeValue(value string) string {
	v := unsafeCSS.Replace(value)
	lower := strings.ToLower(v)
	if strings.Contains(lower, "url(") || strings.Contains(lower, "expression(") || strings.Contains(lower, "@import") {
		return ""
	}
	return strings.TrimSpace(v)
}

// Background CSS-фон страницы; для gradient из hex-цвета строится градиент из этого цвета
func Background(t models.ThemeConfig) string {
	if t.BackgroundStyle == models.BackgroundGradient {
		if rgb, ok := parseHex(t.BackgroundColor); ok {
			return fmt.Sprintf("linear-gradient(135deg, rgba(%d, %d, %d, 1), rgba(%d, %d, %d, 0.7))",
				rgb[0], rgb[1], rgb[2], rgb[0], rgb[1], rgb[2])
		}
	}
	return SafeValue(t.BackgroundColor)
}

// PageStyle стиль корневого контейнера публичной страницы (без фонового изображения)
func PageStyle(t models.ThemeConfig) string {
	font := SafeValue(t.FontFamily)
	if font == "" {
		font = "'Inter', sans-serif"
	}
	return fmt.Sprintf("background: %s; color: %s; font-family: %s",
		Background(t), SafeValue(t.TextColor), font)
}

// LinkStyle стиль кнопки ссылки по заливке, тени и форме
func LinkStyle(t models.ThemeConfig) string {
	linkColor := ""
	if t.LinkColor != nil {
		linkColor = SafeValue(*t.LinkColor)
	}

	var background, border string
	switch t.LinkFill {
	case models.LinkFillGlass:
		background = "rgba(255, 255, 255, 0.12)"
		border = "1px solid rgba(255, 255, 255, 0.1)"
	case models.LinkFillOutline:
		background = "transparent"
		border = "1.5px solid " + linkColor
	default:
		background = linkColor
		if background == "" {
			background = Lighten(t.BackgroundColor, 30)
		}
		border = "none"
	}

	parts := []string{
		"background: " + background,
		"color: " + SafeValue(t.LinkTextColor),
		"border: " + border,
		"box-shadow: " + shadow(t.LinkShadow),
		"border-radius: " + radius(t.ButtonStyle),
	}
	if t.LinkFill == models.LinkFillGlass {
		parts = append(parts, "backdrop-filter: blur(12px)")
	}
	return strings.Join(parts, "; ")
}

func shadow(s models.LinkShadow) string {
	switch s {
	case models.LinkShadowSubtle:
		return "0 2px 4px rgba(0,0,0,0.1)"
	case models.LinkShadowHard:
		return "3px 4px 0px rgba(0,0,0,1)"
	default:
		return "none"
	}
}

func radius(s models.ButtonStyle) string {
	switch s {
	case models.ButtonRounded:
		return "8px"
	case models.ButtonPill:
		return "9999px"
	default:
		return "0"
	}
}

// Lighten сдвигает каждый канал hex-цвета на amount с насыщением в [0, 255].
// Не-hex значения возвращаются без изменений.
func Lighten(color string, amount int) string {
	rgb, ok := parseHex(color)
	if !ok {
		return SafeValue(color)
	}
	var b strings.Builder
	b.WriteByte('#')
	for _, c := range rgb {
		v := min(255, max(0, c+amount))
		fmt.Fprintf(&b, "%02x", v)
	}
	return b.String()
}

func parseHex(color string) ([3]int, bool) {
	m := hexColor.FindStringSubmatch(strings.TrimSpace(color))
	if m == nil {
		return [3]int{}, false
	}
	var rgb [3]int
	for i := 0; i < 3; i++ {
		v, _ := strconv.ParseUint(m[i+1], 16, 8)
		rgb[i] = int(v)
	}
	return rgb, true
}
