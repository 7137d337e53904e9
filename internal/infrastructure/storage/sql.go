package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"NewsSearchEngine/internal/domain"
	"NewsSearchEngine/internal/ports"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var schemas = map[string][]string{
	DriverPostgres: {
		`CREATE TABLE IF NOT EXISTS searches (
			id BIGSERIAL PRIMARY KEY,
			ref TEXT NOT NULL UNIQUE,
			query TEXT NOT NULL,
			language TEXT NOT NULL,
			article_count INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS articles (
			id BIGSERIAL PRIMARY KEY,
			search_id BIGINT NOT NULL REFERENCES searches(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			url TEXT NOT NULL,
			published_at TEXT NOT NULL,
			source TEXT NOT NULL,
			author TEXT NOT NULL,
			description TEXT NOT NULL
		)`,
	},
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS searches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ref TEXT NOT NULL UNIQUE,
			query TEXT NOT NULL,
			language TEXT NOT NULL,
			article_count INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS articles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			search_id INTEGER NOT NULL REFERENCES searches(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			url TEXT NOT NULL,
			published_at TEXT NOT NULL,
			source TEXT NOT NULL,
			author TEXT NOT NULL,
			description TEXT NOT NULL
		)`,
	},
}

// SearchRecord is one persisted search.
type SearchRecord struct {
	ID           int64     `json:"id"`
	Ref          string    `json:"ref"`
	Query        string    `json:"query"`
	Language     string    `json:"language"`
	ArticleCount int       `json:"article_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// SQLSink persists searches into Postgres or SQLite.
type SQLSink struct {
	db      *sql.DB
	driver  string
	builder sq.StatementBuilderType
	now     func() time.Time
}

var _ ports.ArticleSink = (*SQLSink)(nil)

// Open connects to driver/dsn and returns a sink over the new pool.
func Open(driver, dsn string) (*SQLSink, error) {
	if _, ok := schemas[driver]; !ok {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	return NewSQLSink(db, driver), nil
}

// NewSQLSink wires an existing pool. driver selects placeholder style and DDL.
func NewSQLSink(db *sql.DB, driver string) *SQLSink {
	var format sq.PlaceholderFormat = sq.Question
	if driver == DriverPostgres {
		format = sq.Dollar
	}
	return &SQLSink{
		db:      db,
		driver:  driver,
		builder: sq.StatementBuilder.PlaceholderFormat(format),
		now:     time.Now,
	}
}

// Migrate creates the searches and articles tables when missing.
func (s *SQLSink) Migrate(ctx context.Context) error {
	for _, stmt := range schemas[s.driver] {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate %s: %w", s.driver, err)
		}
	}
	return nil
}

// Close releases the pool.
func (s *SQLSink) Close() error {
	return s.db.Close()
}

// Save stores one searches row and its articles in a single transaction and
// returns "<driver>:search/<id>".
func (s *SQLSink) Save(ctx context.Context, articles []domain.Article, query, language string) (string, error) {
	if len(articles) == 0 {
		return "", ErrNoArticles
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var searchID int64
	err = s.builder.Insert("searches").
		Columns("ref", "query", "language", "article_count", "created_at").
		Values(uuid.NewString(), query, language, len(articles), s.now().UTC()).
		Suffix("RETURNING id").
		RunWith(tx).
		QueryRowContext(ctx).
		Scan(&searchID)
	if err != nil {
		return "", fmt.Errorf("insert search: %w", err)
	}

	insert := s.builder.Insert("articles").
		Columns("search_id", "position", "title", "url", "published_at", "source", "author", "description")
	for i, a := range articles {
		insert = insert.Values(searchID, i,
			domain.OrNA(a.Title),
			domain.OrNA(a.URL),
			domain.OrNA(a.PublishedAt),
			domain.OrNA(a.Source),
			domain.OrNA(a.Author),
			domain.OrNA(a.Description),
		)
	}
	if _, err := insert.RunWith(tx).ExecContext(ctx); err != nil {
		return "", fmt.Errorf("insert articles: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit search: %w", err)
	}
	return fmt.Sprintf("%s:search/%d", s.driver, searchID), nil
}

// Recent lists the newest searches first.
func (s *SQLSink) Recent(ctx context.Context, limit int) ([]SearchRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.builder.Select("id", "ref", "query", "language", "article_count", "created_at").
		From("searches").
		OrderBy("id DESC").
		Limit(uint64(limit)).
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query searches: %w", err)
	}
	defer rows.Close()

	var records []SearchRecord
	for rows.Next() {
		var r SearchRecord
		if err := rows.Scan(&r.ID, &r.Ref, &r.Query, &r.Language, &r.ArticleCount, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan search: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return records, nil
}

// Articles returns the articles saved for a search in their original order.
func (s *SQLSink) Articles(ctx context.Context, searchID int64) ([]domain.Article, error) {
	rows, err := s.builder.Select("title", "url", "published_at", "source", "author", "description").
		From("articles").
		Where(sq.Eq{"search_id": searchID}).
		OrderBy("position").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		var a domain.Article
		if err := rows.Scan(&a.Title, &a.URL, &a.PublishedAt, &a.Source, &a.Author, &a.Description); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return articles, nil
}
