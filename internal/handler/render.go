package handler

import (
	"embed"
	"html/template"

	"github.com/SergeiKhy/linkstack/internal/analytics"
	"github.com/SergeiKhy/linkstack/internal/models"
	"github.com/SergeiKhy/linkstack/internal/theme"
)

//go:embed templates/*.html
var templateFS embed.FS

// LoadTemplates разбирает встроенные HTML-шаблоны страниц
func LoadTemplates() (*template.Template, error) {
	return template.New("").ParseFS(templateFS, "templates/*.html")
}

type publicLinkView struct {
	ID    string
	Title string
	Icon  string
}

type publicView struct {
	Profile         models.Profile
	Initial         string
	Links           []publicLinkView
	IsOwner         bool
	BackgroundImage string
	// Стили собраны из провалидированной темы и очищены theme.SafeValue
	PageStyle template.CSS
	LinkStyle template.CSS
	FootStyle template.CSS
}

func newPublicView(page *models.PublicProfile, isOwner bool) publicView {
	cfg := page.Profile.ThemeConfig

	view := publicView{
		Profile:   page.Profile,
		Initial:   initial(page.Profile),
		IsOwner:   isOwner,
		PageStyle: template.CSS(theme.PageStyle(cfg)),
		LinkStyle: template.CSS(theme.LinkStyle(cfg)),
		FootStyle: template.CSS("color: " + theme.SafeValue(cfg.LinkTextColor)),
	}
	if cfg.BackgroundImage != nil {
		view.BackgroundImage = *cfg.BackgroundImage
	}

	view.Links = make([]publicLinkView, 0, len(page.Links))
	for _, l := range page.Links {
		lv := publicLinkView{ID: l.ID.String(), Title: l.Title}
		if l.Icon != nil {
			lv.Icon = *l.Icon
		}
		view.Links = append(view.Links, lv)
	}
	return view
}

type dashboardView struct {
	User     *models.User
	Profiles []models.Profile
	Current  *models.Profile
	Links    models.LinkSet
	Report   *analytics.Report
}
