package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

var _ ArticleRepository = (*ArticleRepo)(nil)

// ArticleRepo handles database operations for articles
type ArticleRepo struct {
	db *DB
}

func NewArticleRepository(db *DB) *ArticleRepo {
	return &ArticleRepo{db: db}
}

// BatchExists returns the subset of guids already stored, using a single query.
func (r *ArticleRepo) BatchExists(ctx context.Context, guids []string) (map[string]bool, error) {
	existing := make(map[string]bool)
	if len(guids) == 0 {
		return existing, nil
	}

	query, args, err := sq.Select("guid").
		From("articles").
		Where(sq.Eq{"guid": guids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build existence query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing guids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var guid string
		if err := rows.Scan(&guid); err != nil {
			return nil, fmt.Errorf("failed to scan guid: %w", err)
		}
		existing[guid] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating guid rows: %w", err)
	}

	return existing, nil
}

// InsertMany stores all articles in one transaction and returns the number of rows inserted.
// Articles whose guid is already stored are skipped.
func (r *ArticleRepo) InsertMany(ctx context.Context, articles []Article) (int, error) {
	if len(articles) == 0 {
		return 0, nil
	}

	now := time.Now().UTC().Truncate(time.Second)

	builder := sq.Insert("articles").
		Columns("guid", "title", "link", "published_at", "source", "content", "summary", "created_at").
		Suffix("ON CONFLICT(guid) DO NOTHING")

	for _, article := range articles {
		createdAt := now
		if !article.CreatedAt.IsZero() {
			createdAt = article.CreatedAt.UTC().Truncate(time.Second)
		}

		builder = builder.Values(
			article.GUID,
			article.Title,
			article.Link,
			article.PublishedAt.UTC().Truncate(time.Second),
			article.Source,
			article.Content,
			nullString(article.Summary),
			createdAt,
		)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build insert query: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert articles: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted row count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit articles: %w", err)
	}

	return int(inserted), nil
}

// GetCreatedSince returns articles stored at or after since, most recently published first.
func (r *ArticleRepo) GetCreatedSince(ctx context.Context, since time.Time, limit int) ([]Article, error) {
	query, args, err := sq.Select("id", "guid", "title", "link", "published_at", "source", "content", "summary", "created_at").
		From("articles").
		Where(sq.GtOrEq{"created_at": since.UTC().Truncate(time.Second)}).
		OrderBy("published_at DESC", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build articles query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get articles: %w", err)
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		var article Article
		var summary sql.NullString
		err := rows.Scan(
			&article.ID, &article.GUID, &article.Title, &article.Link,
			&article.PublishedAt, &article.Source, &article.Content,
			&summary, &article.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		article.Summary = summary.String
		articles = append(articles, article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}

	return articles, nil
}

func (r *ArticleRepo) GetArticleCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get article count: %w", err)
	}
	return count, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
