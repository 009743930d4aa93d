package site

import (
	"encoding/json"
	"fmt"
)

// ManifestContentType is the media type of the web app manifest.
const ManifestContentType = "application/manifest+json"

type manifestIcon struct {
	Src   string `json:"src"`
	Sizes string `json:"sizes"`
	Type  string `json:"type"`
}

type manifest struct {
	Name            string         `json:"name"`
	ShortName       string         `json:"short_name"`
	Description     string         `json:"description"`
	StartURL        string         `json:"start_url"`
	Display         string         `json:"display"`
	BackgroundColor string         `json:"background_color"`
	ThemeColor      string         `json:"theme_color"`
	Icons           []manifestIcon `json:"icons"`
}

// Manifest renders the web app manifest.
func (s *Site) Manifest() ([]byte, error) {
	m := manifest{
		Name:            s.config.SiteTitle,
		ShortName:       s.config.SiteShortName,
		Description:     s.config.SiteDescription,
		StartURL:        "/",
		Display:         "standalone",
		BackgroundColor: s.config.ManifestBackgroundColor,
		ThemeColor:      s.config.ManifestThemeColor,
		Icons: []manifestIcon{
			{Src: "/favicon/icon-192.png", Sizes: "192x192", Type: "image/png"},
			{Src: "/favicon/icon-512.png", Sizes: "512x512", Type: "image/png"},
		},
	}

	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("could not encode manifest: %w", err)
	}

	return b, nil
}
