// Package feed renders the RSS 2.0 document for a list of posts.
package feed

import (
	"fmt"
	"strings"
	"time"

	"github.com/flosch/pongo2/v4"

	"github.com/jtmthf/blog/internal/indent"
	"github.com/jtmthf/blog/internal/post"
	"github.com/jtmthf/blog/internal/rfc822"
)

// ContentType is the media type feeds are served with.
const ContentType = "application/rss+xml"

// DefaultSelfPath is where the feed is served relative to the site link.
const DefaultSelfPath = "/feed"

const rssT = `
	<?xml version="1.0" encoding="UTF-8"?>
	<rss xmlns:atom="http://www.w3.org/2005/Atom" version="2.0">
	  <channel>
	    <title>{{ channel.Title }}</title>
	    <link>{{ channel.Link }}</link>
	    <description>{{ channel.Description }}</description>
	    <lastBuildDate>{{ date }}</lastBuildDate>
	    <pubDate>{{ date }}</pubDate>
	    <atom:link href="{{ self }}" rel="self" type="application/rss+xml" />
	    {% for item in items %}
	    <item>
	      <title>{{ item.Title }}</title>
	      <link>{{ item.Link }}</link>
	      <description>{{ item.Description }}</description>
	      <guid isPermaLink="false">{{ item.GUID }}</guid>
	      <pubDate>{{ item.PubDate }}</pubDate>
	    </item>
	    {% endfor %}
	  </channel>
	</rss>
`

var rssTpl *pongo2.Template

func init() {
	set := pongo2.NewSet("feed", pongo2.DefaultLoader)
	set.Options.TrimBlocks = true
	set.Options.LStripBlocks = true

	// Only the template's own indentation is stripped; interpolated post text
	// is written as is.
	rssTpl = pongo2.Must(set.FromString(indent.Strip(rssT)))
}

// Channel describes the feed itself. Link is the site base URL without a
// trailing slash.
type Channel struct {
	Title       string
	Link        string
	Description string
	SelfPath    string
}

type item struct {
	Title       string
	Link        string
	Description string
	GUID        string
	PubDate     string
}

// Generate renders posts, in the order given, as an RSS document built at
// now.
func Generate(posts []post.Post, ch Channel, now time.Time) (string, error) {
	ch.Link = strings.TrimRight(ch.Link, "/")

	self := ch.SelfPath
	if self == "" {
		self = DefaultSelfPath
	}

	items := make([]item, 0, len(posts))
	for _, p := range posts {
		items = append(items, item{
			Title:       p.Title,
			Link:        ch.Link + "/posts/" + p.Slug,
			Description: p.Excerpt,
			GUID:        p.ID,
			PubDate:     PubDate(string(p.Date)),
		})
	}

	out, err := rssTpl.Execute(pongo2.Context{
		"channel": ch,
		"date":    rfc822.Format(now),
		"self":    ch.Link + self,
		"items":   items,
	})
	if err != nil {
		return "", fmt.Errorf("could not render feed: %w", err)
	}

	return out, nil
}

var (
	utcLayouts = []string{
		"2006-01-02",
		time.RFC3339Nano,
	}
	localLayouts = []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
	}
)

// PubDate formats a front matter date for the feed. Date-only values are
// midnight UTC, date-times without a zone are local time. Values that match
// no known layout are returned unchanged, never as an invalid date.
func PubDate(date string) string {
	if t, ok := ParseDate(date); ok {
		return rfc822.Format(t)
	}

	return date
}

// ParseDate parses a front matter date string.
func ParseDate(date string) (time.Time, bool) {
	date = strings.TrimSpace(date)

	for _, layout := range utcLayouts {
		if t, err := time.Parse(layout, date); err == nil {
			return t, true
		}
	}

	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, date, time.Local); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
