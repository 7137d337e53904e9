// Package httpapi exposes the search pipeline over HTTP.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"NewsSearchEngine/internal/domain"
	"NewsSearchEngine/internal/infrastructure/storage"
	"NewsSearchEngine/internal/usecase"
)

// Searcher runs one search.
type Searcher interface {
	Search(ctx context.Context, query, language string) usecase.Report
}

// HistoryStore lists persisted searches.
type HistoryStore interface {
	Recent(ctx context.Context, limit int) ([]storage.SearchRecord, error)
	Articles(ctx context.Context, searchID int64) ([]domain.Article, error)
}

// Options configures the router.
type Options struct {
	AllowedOrigins []string
	Languages      []string
	History        HistoryStore
	Logger         *slog.Logger
}

type handler struct {
	searcher  Searcher
	history   HistoryStore
	languages []string
	logger    *slog.Logger
}

// NewRouter builds the gin engine with CORS and all routes.
func NewRouter(searcher Searcher, opts Options) *gin.Engine {
	h := &handler{
		searcher:  searcher,
		history:   opts.History,
		languages: opts.Languages,
		logger:    opts.Logger,
	}
	if len(h.languages) == 0 {
		h.languages = []string{"en"}
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery(), h.requestLogger())
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: opts.AllowedOrigins,
			AllowMethods: []string{"GET", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type"},
			MaxAge:       12 * time.Hour,
		}))
	}

	r.GET("/health", h.health)
	r.GET("/languages", h.listLanguages)
	r.GET("/search", h.search)
	r.GET("/searches", h.recentSearches)
	r.GET("/searches/:id/articles", h.searchArticles)
	return r
}

func (h *handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handler) listLanguages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"languages": h.languages})
}

func (h *handler) search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "query parameter q is required"})
		return
	}
	language := strings.ToLower(strings.TrimSpace(c.DefaultQuery("lang", "en")))
	if !slices.Contains(h.languages, language) {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "unsupported language " + strconv.Quote(language)})
		return
	}

	report := h.searcher.Search(c.Request.Context(), query, language)
	c.JSON(http.StatusOK, toSearchResponse(report))
}

func (h *handler) recentSearches(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: "search history is not enabled"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 || limit > 100 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "limit must be between 1 and 100"})
		return
	}

	records, err := h.history.Recent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("load search history", "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to load search history"})
		return
	}
	if records == nil {
		records = []storage.SearchRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"searches": records})
}

func (h *handler) searchArticles(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: "search history is not enabled"})
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid search id"})
		return
	}

	articles, err := h.history.Articles(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("load search articles", "search_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to load articles"})
		return
	}
	if len(articles) == 0 {
		c.JSON(http.StatusNotFound, errorResponse{Error: "search not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": toArticleResponses(articles)})
}
