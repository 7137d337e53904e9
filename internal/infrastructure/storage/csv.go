package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"NewsSearchEngine/internal/domain"
	"NewsSearchEngine/internal/ports"
)

// ErrNoArticles is returned when a sink is asked to persist an empty batch.
var ErrNoArticles = errors.New("no articles to save")

var csvHeader = []string{"Title", "URL", "Published Date", "Source", "Author", "Description"}

const maxQueryRunes = 30

// CSVSink writes each search into its own timestamped CSV file.
type CSVSink struct {
	dir string
	now func() time.Time
}

var _ ports.ArticleSink = (*CSVSink)(nil)

// NewCSVSink writes into dir, creating it on first save. Empty dir means ".".
func NewCSVSink(dir string) *CSVSink {
	if dir == "" {
		dir = "."
	}
	return &CSVSink{dir: dir, now: time.Now}
}

// Save writes articles and returns the file path.
func (s *CSVSink) Save(ctx context.Context, articles []domain.Article, query, language string) (string, error) {
	if len(articles) == 0 {
		return "", ErrNoArticles
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	name := fmt.Sprintf("news_%s_%s_%s.csv", SafeQuery(query), language, s.now().Format("20060102_150405"))
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create csv: %w", err)
	}

	if err := writeArticles(f, articles); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close csv: %w", err)
	}
	return path, nil
}

func writeArticles(w io.Writer, articles []domain.Article) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, a := range articles {
		record := []string{
			domain.OrNA(a.Title),
			domain.OrNA(a.URL),
			domain.OrNA(a.PublishedAt),
			domain.OrNA(a.Source),
			domain.OrNA(a.Author),
			domain.OrNA(a.Description),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// SafeQuery maps a query to a filename fragment: every rune that is not a
// letter or digit becomes "_", and the result is cut to 30 runes.
func SafeQuery(query string) string {
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if n == maxQueryRunes {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		} else {
			sb.WriteRune('_')
		}
		n++
	}
	return sb.String()
}

// ValidateCSV reports whether path exists and its first record parses.
func ValidateCSV(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	if _, err := r.Read(); err != nil {
		return false
	}
	return true
}
