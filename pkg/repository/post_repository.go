package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pkgz/repeater/v2"
	"github.com/jmoiron/sqlx"

	"github.com/umputun/scrollfeed/pkg/domain"
)

// PostRepository handles post-related database operations
type PostRepository struct {
	db *sqlx.DB
}

// postRow is the posts table record
type postRow struct {
	ID        int64     `db:"id"`
	Title     string    `db:"title"`
	Content   string    `db:"content"`
	Author    string    `db:"author"`
	Published time.Time `db:"published"`
	Likes     int       `db:"likes"`
	Comments  int       `db:"comments"`
	CreatedAt time.Time `db:"created_at"`
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *sqlx.DB) *PostRepository {
	return &PostRepository{db: db}
}

// CreatePosts inserts posts in a single transaction, keeping their ids.
// Posts with ids already stored are skipped.
func (r *PostRepository) CreatePosts(ctx context.Context, posts []domain.Post) error {
	if len(posts) == 0 {
		return nil
	}

	rows := make([]postRow, len(posts))
	for i, p := range posts {
		rows[i] = postRow{ID: p.ID, Title: p.Title, Content: p.Content, Author: p.Author,
			Published: p.Date.UTC(), Likes: p.Likes, Comments: p.Comments}
	}

	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))
	return retrier.Do(ctx, func() error {
		tx, err := r.db.BeginTxx(ctx, nil)
		if err != nil {
			if isLockError(err) {
				return err // retry
			}
			return &criticalError{err: fmt.Errorf("begin transaction: %w", err)}
		}
		defer tx.Rollback() //nolint:errcheck // no-op after commit

		query := `
			INSERT INTO posts (id, title, content, author, published, likes, comments)
			VALUES (:id, :title, :content, :author, :published, :likes, :comments)
			ON CONFLICT(id) DO NOTHING
		`
		for _, row := range rows {
			if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
				if isLockError(err) {
					return err // retry
				}
				return &criticalError{err: fmt.Errorf("insert post %d: %w", row.ID, err)}
			}
		}

		if err := tx.Commit(); err != nil {
			if isLockError(err) {
				return err // retry
			}
			return &criticalError{err: fmt.Errorf("commit posts: %w", err)}
		}
		return nil
	})
}

// GetPosts retrieves posts ordered by id, skipping offset records
func (r *PostRepository) GetPosts(ctx context.Context, offset, limit int) ([]domain.Post, error) {
	query := `
		SELECT id, title, content, author, published, likes, comments, created_at
		FROM posts
		ORDER BY id
		LIMIT ? OFFSET ?
	`
	var rows []postRow
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("get posts: %w", err)
	}

	posts := make([]domain.Post, len(rows))
	for i := range rows {
		posts[i] = r.toDomainPost(&rows[i])
	}
	return posts, nil
}

// CountPosts returns the number of stored posts
func (r *PostRepository) CountPosts(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM posts"); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return count, nil
}

// toDomainPost converts a table record to domain.Post
func (r *PostRepository) toDomainPost(row *postRow) domain.Post {
	return domain.Post{
		ID:       row.ID,
		Title:    row.Title,
		Content:  row.Content,
		Author:   row.Author,
		Date:     row.Published,
		Likes:    row.Likes,
		Comments: row.Comments,
	}
}
