package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/umputun/scrollfeed/pkg/domain"
	"github.com/umputun/scrollfeed/pkg/session"
)

const (
	sessionCookie = "scrollfeed_session"

	// template names
	templateIndex    = "index.html"
	templateFeedList = "feed-list.html"
)

// feedView is the template data of a feed list or a page appended to it
type feedView struct {
	Posts   []domain.Post
	Loading bool
	Empty   bool
	Ended   bool
	Failed  bool  // next page request was made and nothing arrived
	Anchor  int64 // id watched by the scroll sentinel, 0 if nothing is watched
}

// indexHandler renders the full page. A new session is already loading its first page here.
func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	s.render(w, templateIndex, s.listView(sess, sess.Feed.Snapshot()))
}

// feedHandler renders the whole list once the in-flight load, if any, is done
func (s *Server) feedHandler(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	ctx, cancel := context.WithTimeout(r.Context(), s.waitTimeout())
	defer cancel()
	if err := sess.Feed.Wait(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		log.Printf("[DEBUG] wait for feed of %s: %v", sess.ID, err)
		return
	}

	s.render(w, templateFeedList, s.listView(sess, sess.Feed.Snapshot()))
}

// nextPageHandler fires the scroll trigger for the revealed anchor and renders the posts
// loaded after it, followed by a new sentinel. Responds with 204 for anchors that are not
// watched anymore, so the page is left as is.
func (s *Server) nextPageHandler(w http.ResponseWriter, r *http.Request) {
	anchor, err := strconv.ParseInt(r.URL.Query().Get("anchor"), 10, 64)
	if err != nil {
		http.Error(w, "invalid anchor", http.StatusBadRequest)
		return
	}

	sess := s.session(w, r)
	if !sess.Trigger.Fire(r.Context(), anchor) {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	state := sess.Feed.Snapshot()
	view := s.listView(sess, state)
	view.Posts = state.After(anchor)
	view.Empty = false
	view.Failed = len(view.Posts) == 0 && state.HasMore && !state.Loading
	s.render(w, templateFeedList, view)
}

// refreshHandler drops the session feed and renders it again from page 1
func (s *Server) refreshHandler(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	sess.Feed.Refresh(r.Context())
	s.render(w, templateFeedList, s.listView(sess, sess.Feed.Snapshot()))
}

// session returns the session of the request cookie, making a new one if there is none
func (s *Server) session(w http.ResponseWriter, r *http.Request) *session.Session {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if sess, ok := s.sessions.Get(c.Value); ok {
			return sess
		}
	}

	sess := s.sessions.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

// listView makes the view of the full list and points the session trigger at its last post
func (s *Server) listView(sess *session.Session, state domain.FeedState) feedView {
	view := feedView{
		Posts:   state.Posts,
		Loading: state.Loading,
		Empty:   state.Empty(),
		Ended:   state.Ended(),
	}
	if sub := sess.Trigger.Attach(state); sub != nil {
		view.Anchor = sub.Anchor()
	}
	return view
}

// render executes the named template
func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("[ERROR] %v", fmt.Errorf("render %s: %w", name, err))
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}
