package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/umputun/scrollfeed/pkg/domain"
)

// postJSON is the API representation of a post
type postJSON struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Author   string `json:"author"`
	Date     string `json:"date"`
	Likes    int    `json:"likes"`
	Comments int    `json:"comments"`
}

// feedJSON is the API representation of a session feed
type feedJSON struct {
	Posts     []postJSON `json:"posts"`
	Page      int        `json:"page"`
	Loading   bool       `json:"loading"`
	HasMore   bool       `json:"has_more"`
	State     string     `json:"state"`
	Requested *bool      `json:"requested,omitempty"`
}

// statusHandler returns server status
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":   "ok",
		"version":  s.version,
		"time":     time.Now().UTC(),
		"sessions": s.sessions.Len(),
	}
	if s.archive != nil {
		archive, err := s.archive.Status(r.Context())
		if err != nil {
			RenderError(w, r, err, http.StatusInternalServerError)
			return
		}
		status["archive"] = archive
	}
	RenderJSON(w, r, http.StatusOK, status)
}

// apiFeedHandler returns the session feed, waiting for the in-flight load if there is one
func (s *Server) apiFeedHandler(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	ctx, cancel := context.WithTimeout(r.Context(), s.waitTimeout())
	defer cancel()
	if err := sess.Feed.Wait(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		RenderError(w, r, err, http.StatusServiceUnavailable)
		return
	}

	RenderJSON(w, r, http.StatusOK, toFeedJSON(sess.Feed.Snapshot()))
}

// apiNextPageHandler requests the next page directly, without the scroll trigger
func (s *Server) apiNextPageHandler(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	requested := sess.Feed.RequestNextPage(r.Context())

	resp := toFeedJSON(sess.Feed.Snapshot())
	resp.Requested = &requested
	RenderJSON(w, r, http.StatusOK, resp)
}

// apiRefreshHandler reloads the session feed from page 1
func (s *Server) apiRefreshHandler(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	sess.Feed.Refresh(r.Context())
	RenderJSON(w, r, http.StatusOK, toFeedJSON(sess.Feed.Snapshot()))
}

func toFeedJSON(state domain.FeedState) feedJSON {
	posts := make([]postJSON, 0, len(state.Posts))
	for _, p := range state.Posts {
		posts = append(posts, postJSON{
			ID:       p.ID,
			Title:    p.Title,
			Content:  p.Content,
			Author:   p.Author,
			Date:     p.DisplayDate(),
			Likes:    p.Likes,
			Comments: p.Comments,
		})
	}
	return feedJSON{
		Posts:   posts,
		Page:    state.Page,
		Loading: state.Loading,
		HasMore: state.HasMore,
		State:   string(state.State()),
	}
}
