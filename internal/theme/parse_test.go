package theme

import (
	"testing"

	"github.com/SergeiKhy/linkstack/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bareArray = `[
  {"name":"Lunar Haze","backgroundColor":"#0B0C10","textColor":"#FFFFFF","linkTextColor":"#FFFFFF",
   "fontFamily":"'Inter', sans-serif","backgroundStyle":"solid","buttonStyle":"pill",
   "linkFill":"glass","linkShadow":"subtle","linkColor":"rgba(255,255,255,0.14)"},
  {"name":"Electric Dawn","backgroundColor":"linear-gradient(135deg, #1E3C72 0%, #F67280 100%)",
   "textColor":"#FFFFFF","linkTextColor":"#000000","fontFamily":"'Satoshi', sans-serif",
   "backgroundStyle":"gradient","buttonStyle":"sharp","linkFill":"fill","linkShadow":"hard",
   "linkColor":"#D4FF00"}
]`

func TestParsePresets_FencedEqualsBare(t *testing.T) {
	bare, err := ParsePresets(bareArray)
	require.NoError(t, err)
	require.Len(t, bare, 2)

	fenced, err := ParsePresets("```json\n" + bareArray + "\n```")
	require.NoError(t, err)
	assert.Equal(t, bare, fenced)

	plainFence, err := ParsePresets("```" + bareArray + "```")
	require.NoError(t, err)
	assert.Equal(t, bare, plainFence)

	for _, fence := range []string{"```JSON", "```Json", "```jSoN"} {
		mixed, err := ParsePresets(fence + "\n" + bareArray + "\n```")
		require.NoError(t, err, fence)
		assert.Equal(t, bare, mixed, fence)
	}
}

func TestParsePresets_Normalization(t *testing.T) {
	content := `[{“name”:“Lush Rain”,\"backgroundColor\":\"#FAF8F5\",\n"textColor":"#1A0A00",` +
		`"linkTextColor":"#1A0A00","fontFamily":"'Poppins', sans-serif","backgroundStyle":"solid",` +
		`"buttonStyle":"rounded","linkFill":"outline","linkShadow":"none","linkColor":"#A67C52"}]`

	presets, err := ParsePresets(content)
	require.NoError(t, err)
	require.Len(t, presets, 1)
	assert.Equal(t, "Lush Rain", presets[0].Name)
	assert.Equal(t, models.LinkFillOutline, presets[0].LinkFill)
}

func TestParsePresets_DropsInvalid(t *testing.T) {
	content := `[
	  {"name":"Bad","backgroundColor":"#000000","textColor":"#FFFFFF","linkTextColor":"#FFFFFF",
	   "fontFamily":"'Inter', sans-serif","backgroundStyle":"solid","buttonStyle":"square",
	   "linkFill":"fill","linkShadow":"none"},
	  {"name":"Good","backgroundColor":"#000000","textColor":"#FFFFFF","linkTextColor":"#FFFFFF",
	   "fontFamily":"'Inter', sans-serif","backgroundStyle":"solid","buttonStyle":"rounded",
	   "linkFill":"fill","linkShadow":"none","backgroundImage":"https://evil.example/x.png"}
	]`

	presets, err := ParsePresets(content)
	require.NoError(t, err)
	require.Len(t, presets, 1)
	assert.Equal(t, "Good", presets[0].Name)
	assert.Nil(t, presets[0].BackgroundImage)
}

func TestParsePresets_Failures(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"не JSON", "Here are your themes!", nil},
		{"объект вместо массива", `{"name":"x"}`, nil},
		{"пустой массив", `[]`, ErrNoPresets},
		{"все невалидны", `[{"name":""}]`, ErrNoPresets},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePresets(tt.content)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
