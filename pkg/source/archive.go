package source

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/microcosm-cc/bluemonday"

	"github.com/umputun/scrollfeed/pkg/domain"
	"github.com/umputun/scrollfeed/pkg/repository"
)

// PostStore is the storage used by Archive
type PostStore interface {
	CreatePosts(ctx context.Context, posts []domain.Post) error
	GetPosts(ctx context.Context, offset, limit int) ([]domain.Post, error)
	CountPosts(ctx context.Context) (int, error)
}

// SettingStore keeps archive bookkeeping
type SettingStore interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// Archive serves pages of stored posts. A page shorter than the page size means
// the archive has no more posts.
type Archive struct {
	posts    PostStore
	settings SettingStore
	pageSize int
	policy   *bluemonday.Policy
}

// NewArchive makes an archive source reading pages of pageSize posts
func NewArchive(posts PostStore, settings SettingStore, pageSize int) *Archive {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Archive{posts: posts, settings: settings, pageSize: pageSize, policy: bluemonday.StrictPolicy()}
}

// FetchPage returns stored posts of the given page with markup stripped
func (a *Archive) FetchPage(ctx context.Context, page int) ([]domain.Post, error) {
	if page < 1 {
		return nil, fmt.Errorf("invalid page %d", page)
	}
	posts, err := a.posts.GetPosts(ctx, (page-1)*a.pageSize, a.pageSize)
	if err != nil {
		return nil, fmt.Errorf("archive page %d: %w", page, err)
	}
	for i := range posts {
		posts[i].Title = a.plain(posts[i].Title)
		posts[i].Content = a.plain(posts[i].Content)
		posts[i].Author = a.plain(posts[i].Author)
	}
	return posts, nil
}

// plain strips markup, templates escape the result on render
func (a *Archive) plain(s string) string {
	return html.UnescapeString(a.policy.Sanitize(s))
}

// Seed fills an empty archive with pages generated by gen.
// Does nothing if the archive already has posts.
func (a *Archive) Seed(ctx context.Context, gen *Generator, pages int) error {
	count, err := a.posts.CountPosts(ctx)
	if err != nil {
		return fmt.Errorf("count archive posts: %w", err)
	}
	if count > 0 {
		lgr.Printf("[DEBUG] archive has %d posts, seeding skipped", count)
		return nil
	}

	for page := 1; page <= pages; page++ {
		if err := a.posts.CreatePosts(ctx, gen.Page(page)); err != nil {
			return fmt.Errorf("seed page %d: %w", page, err)
		}
	}

	if err := a.settings.SetSetting(ctx, repository.SettingArchivePages, strconv.Itoa(pages)); err != nil {
		return fmt.Errorf("save archive pages: %w", err)
	}
	if err := a.settings.SetSetting(ctx, repository.SettingArchiveSeededAt, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("save archive seed time: %w", err)
	}
	lgr.Printf("[INFO] archive seeded with %d pages of %d posts", pages, gen.PageSize())
	return nil
}

// ArchiveStatus describes the stored posts and how they were seeded
type ArchiveStatus struct {
	Posts    int       `json:"posts"`
	Pages    int       `json:"pages"`
	SeededAt time.Time `json:"seeded_at"`
}

// Status reports the number of stored posts and the seed bookkeeping.
// Pages and SeededAt are zero for an archive not seeded by Seed.
func (a *Archive) Status(ctx context.Context) (ArchiveStatus, error) {
	count, err := a.posts.CountPosts(ctx)
	if err != nil {
		return ArchiveStatus{}, fmt.Errorf("count archive posts: %w", err)
	}
	res := ArchiveStatus{Posts: count}

	pages, err := a.settings.GetSetting(ctx, repository.SettingArchivePages)
	if err != nil {
		return ArchiveStatus{}, fmt.Errorf("archive pages: %w", err)
	}
	if pages != "" {
		if res.Pages, err = strconv.Atoi(pages); err != nil {
			lgr.Printf("[WARN] invalid archive pages %q: %v", pages, err)
		}
	}

	seededAt, err := a.settings.GetSetting(ctx, repository.SettingArchiveSeededAt)
	if err != nil {
		return ArchiveStatus{}, fmt.Errorf("archive seed time: %w", err)
	}
	if seededAt != "" {
		if res.SeededAt, err = time.Parse(time.RFC3339, seededAt); err != nil {
			lgr.Printf("[WARN] invalid archive seed time %q: %v", seededAt, err)
		}
	}
	return res, nil
}
