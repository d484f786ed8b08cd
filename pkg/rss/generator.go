// Package rss exports loaded feed posts as an RSS 2.0 document
package rss

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/umputun/scrollfeed/pkg/domain"
)

// Generator creates RSS feeds from posts
type Generator struct {
	baseURL string
	now     func() time.Time
}

// NewGenerator creates a new feed generator
func NewGenerator(baseURL string) *Generator {
	return &Generator{
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// GenerateRSS creates an RSS 2.0 document with the loaded posts of state in feed order
func (g *Generator) GenerateRSS(state domain.FeedState) (string, error) {
	items := make([]*Item, 0, len(state.Posts))
	for _, p := range state.Posts {
		items = append(items, g.convertToRSSItem(p))
	}

	desc := fmt.Sprintf("%d posts loaded, %d pages", len(state.Posts), state.Page)
	if state.Ended() {
		desc += ", end of feed"
	}

	feed := &RSS{
		Version: "2.0",
		Atom:    "http://www.w3.org/2005/Atom",
		Channel: &Channel{
			Title:         "Infinite Scroll Feed",
			Link:          g.baseURL + "/",
			Description:   desc,
			AtomLink:      &AtomLink{Href: g.baseURL + "/rss", Rel: "self", Type: "application/rss+xml"},
			LastBuildDate: g.now().Format(time.RFC1123Z),
			Items:         items,
		},
	}

	output, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal RSS: %w", err)
	}

	return xml.Header + string(output), nil
}

// convertToRSSItem converts a post to an RSS item
func (g *Generator) convertToRSSItem(p domain.Post) *Item {
	link := fmt.Sprintf("%s/#post-%d", g.baseURL, p.ID)
	return &Item{
		Title:       p.Title,
		Link:        link,
		GUID:        GUID{Value: fmt.Sprintf("post-%d", p.ID)},
		Description: fmt.Sprintf("%s\n\nLikes: %d, comments: %d", p.Content, p.Likes, p.Comments),
		Author:      p.Author,
		PubDate:     p.Date.Format(time.RFC1123Z),
		Comments:    link,
	}
}
