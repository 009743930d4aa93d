// Package post loads blog posts from a directory of content files. Each file
// holds a front matter header followed by a markdown body; the slug of a post
// is its file name without the extension.
package post

import (
	"fmt"
	"time"
)

// Author is the person credited on a post.
type Author struct {
	Name    string `yaml:"name" toml:"name" json:"name"`
	Picture string `yaml:"picture" toml:"picture" json:"picture"`
}

// OGImage is the Open Graph image of a post.
type OGImage struct {
	URL string `yaml:"url" toml:"url" json:"url"`
}

// Post is one content file. Slug and Content are filled in by the Repository,
// everything else comes from the front matter.
type Post struct {
	ID         string  `yaml:"id" toml:"id" json:"id"`
	Slug       string  `yaml:"-" toml:"-" json:"-"`
	Title      string  `yaml:"title" toml:"title" json:"title"`
	Date       Date    `yaml:"date" toml:"date" json:"date"`
	CoverImage string  `yaml:"coverImage" toml:"coverImage" json:"coverImage"`
	Author     Author  `yaml:"author" toml:"author" json:"author"`
	Excerpt    string  `yaml:"excerpt" toml:"excerpt" json:"excerpt"`
	OGImage    OGImage `yaml:"ogImage" toml:"ogImage" json:"ogImage"`
	Preview    bool    `yaml:"preview" toml:"preview" json:"preview"`

	// Content is the markdown body after the front matter.
	Content []byte `yaml:"-" toml:"-" json:"-"`
}

// Date is the front matter date of a post, kept as written so posts sort by
// plain string comparison.
type Date string

// UnmarshalTOML accepts quoted dates as well as native TOML date-times.
// Native values are written back in ISO 8601: local dates as 2006-01-02,
// local date-times without a zone, everything else as RFC 3339.
func (d *Date) UnmarshalTOML(v interface{}) error {
	switch val := v.(type) {
	case string:
		*d = Date(val)
	case time.Time:
		*d = Date(formatTOMLTime(val))
	default:
		return fmt.Errorf("date must be a string or a TOML date, got %T", v)
	}

	return nil
}

func formatTOMLTime(t time.Time) string {
	switch t.Location().String() {
	case "date-local":
		return t.Format("2006-01-02")
	case "datetime-local":
		return t.Format("2006-01-02T15:04:05.999999999")
	default:
		return t.Format(time.RFC3339Nano)
	}
}
