package chi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/google/uuid"
	"github.com/marcelsud/book-catalog/book"
	"github.com/marcelsud/book-catalog/metrics"
)

const requestIDHeader = "X-Request-ID"

// Handlers builds the router. recorder and metricsHandler may be nil.
func Handlers(ctx context.Context, bookService book.UseCase, recorder metrics.Recorder, metricsHandler http.Handler) *chi.Mux {
	if recorder == nil {
		recorder = metrics.NopRecorder{}
	}

	// Logger
	logger := httplog.NewLogger("book-catalog", httplog.Options{
		JSON: true,
	})
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/books", getBooks(bookService, recorder))
		r.Method(http.MethodPost, "/books", postBooks(bookService, recorder))
		r.Method(http.MethodGet, "/books/{id}", getBook(bookService, recorder))
		r.Method(http.MethodPut, "/books/{id}", putBook(bookService, recorder))
		r.Method(http.MethodDelete, "/books/{id}", deleteBook(bookService, recorder))
	})

	return r
}

// requestID keeps the caller's X-Request-ID or generates one, and exposes it where httplog reads it.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
