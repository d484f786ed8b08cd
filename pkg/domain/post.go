package domain

import "time"

// DisplayDateLayout is the layout used to show post dates
const DisplayDateLayout = "1/2/2006"

// Post represents a single feed entry. Posts are never modified after creation.
type Post struct {
	ID       int64
	Title    string
	Content  string
	Author   string
	Date     time.Time
	Likes    int
	Comments int
}

// DisplayDate returns the post date formatted for display
func (p Post) DisplayDate() string {
	return p.Date.Format(DisplayDateLayout)
}

// FeedStatus represents the state of the feed pagination machine
type FeedStatus string

const (
	FeedIdle      FeedStatus = "idle"
	FeedLoading   FeedStatus = "loading"
	FeedExhausted FeedStatus = "exhausted"
)

// FeedState is a point-in-time copy of a session feed
type FeedState struct {
	Posts   []Post
	Page    int
	Loading bool
	HasMore bool
}

// State returns the pagination state derived from the flags
func (s FeedState) State() FeedStatus {
	switch {
	case s.Loading:
		return FeedLoading
	case !s.HasMore:
		return FeedExhausted
	default:
		return FeedIdle
	}
}

// Empty reports whether there is nothing to show and nothing on the way
func (s FeedState) Empty() bool {
	return len(s.Posts) == 0 && !s.Loading
}

// Ended reports whether the end of the feed was reached with something shown
func (s FeedState) Ended() bool {
	return !s.HasMore && len(s.Posts) > 0
}

// LastID returns the id of the last loaded post, 0 if there are none
func (s FeedState) LastID() int64 {
	if len(s.Posts) == 0 {
		return 0
	}
	return s.Posts[len(s.Posts)-1].ID
}

// After returns posts loaded after the post with the given id.
// Returns nil if the id is not part of the feed.
func (s FeedState) After(id int64) []Post {
	for i := range s.Posts {
		if s.Posts[i].ID == id {
			return s.Posts[i+1:]
		}
	}
	return nil
}
