package server

import (
	"log"
	"net/http"

	"github.com/umputun/scrollfeed/pkg/rss"
)

// rssHandler serves the posts loaded by the session as RSS feed
func (s *Server) rssHandler(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	// get base URL from config
	cfg := s.config.GetFullConfig()
	generator := rss.NewGenerator(cfg.Server.BaseURL)

	feed, err := generator.GenerateRSS(sess.Feed.Snapshot())
	if err != nil {
		log.Printf("[ERROR] failed to generate RSS feed: %v", err)
		http.Error(w, "Failed to generate RSS feed", http.StatusInternalServerError)
		return
	}

	// set content type and write RSS
	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	if _, err := w.Write([]byte(feed)); err != nil {
		log.Printf("[ERROR] failed to write RSS response: %v", err)
	}
}
