package site

import (
	"context"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/jtmthf/blog/internal/post"
)

// SitemapEntry is one url of the sitemap.
type SitemapEntry struct {
	URL             string
	LastModified    time.Time
	ChangeFrequency string
	Priority        float64
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// SitemapEntries lists the home page followed by every post.
func (s *Site) SitemapEntries(ctx context.Context) ([]SitemapEntry, error) {
	posts, err := s.posts.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	return s.sitemapEntries(posts), nil
}

func (s *Site) sitemapEntries(posts []post.Post) []SitemapEntry {
	now := s.now()

	entries := make([]SitemapEntry, 0, len(posts)+1)
	entries = append(entries, SitemapEntry{
		URL:             s.config.SiteURL,
		LastModified:    now,
		ChangeFrequency: "daily",
		Priority:        1,
	})

	for _, p := range posts {
		entries = append(entries, SitemapEntry{
			URL:             s.config.SiteURL + "/posts/" + p.Slug,
			LastModified:    now,
			ChangeFrequency: "weekly",
			Priority:        0.5,
		})
	}

	return entries
}

// Sitemap renders the sitemaps.org XML document.
func (s *Site) Sitemap(ctx context.Context) ([]byte, error) {
	entries, err := s.SitemapEntries(ctx)
	if err != nil {
		return nil, err
	}

	return marshalSitemap(entries)
}

func marshalSitemap(entries []SitemapEntry) ([]byte, error) {
	set := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  make([]sitemapURL, 0, len(entries)),
	}

	for _, e := range entries {
		u := sitemapURL{
			Loc:        e.URL,
			ChangeFreq: e.ChangeFrequency,
			Priority:   fmt.Sprintf("%.1f", e.Priority),
		}

		if !e.LastModified.IsZero() {
			u.LastMod = e.LastModified.UTC().Format(time.RFC3339)
		}

		set.URLs = append(set.URLs, u)
	}

	b, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("could not encode sitemap: %w", err)
	}

	return append([]byte(xml.Header), b...), nil
}
