package theme

import (
	"testing"

	"github.com/SergeiKhy/linkstack/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresets_Catalog(t *testing.T) {
	presets := Presets()
	require.Len(t, presets, 15)
	assert.Equal(t, "Ocean Depth", presets[0].Name)
	assert.Equal(t, "Carbon Drift", presets[14].Name)

	for _, p := range presets {
		assert.NoError(t, p.Validate(), p.Name)
	}

	// Копия не меняет каталог
	presets[0].Name = "changed"
	assert.Equal(t, "Ocean Depth", Presets()[0].Name)
}

func TestFind(t *testing.T) {
	p, err := Find("sand & ivory")
	require.NoError(t, err)
	assert.Equal(t, "Sand & Ivory", p.Name)
	assert.Equal(t, models.ButtonPill, p.ButtonStyle)

	_, err = Find("unknown")
	assert.ErrorIs(t, err, ErrPresetNotFound)
}

func TestApply(t *testing.T) {
	bg := "/media/backgrounds/u/1.jpg"
	current := models.DefaultTheme()
	current.BackgroundImage = &bg

	preset, err := Find("Velvet Night")
	require.NoError(t, err)

	next := Apply(current, preset)
	assert.Equal(t, preset.BackgroundColor, next.BackgroundColor)
	assert.Equal(t, models.ButtonSharp, next.ButtonStyle)
	assert.Equal(t, models.LinkShadowHard, next.LinkShadow)
	require.NotNil(t, next.BackgroundImage)
	assert.Equal(t, bg, *next.BackgroundImage)

	// исходная тема не изменилась
	assert.Equal(t, models.ButtonRounded, current.ButtonStyle)
}
