package main

import (
	"database/sql"
	"fmt"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	lru "github.com/hashicorp/golang-lru/v2"
)

var validTable = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// App holds server dependencies.
type App struct {
	db    *DB
	pairs *lru.Cache[pairsKey, []Pair]
}

// pairsKey identifies a cached /api/pairs response.
type pairsKey struct {
	tag   string
	limit int
}

// NewApp creates an App over the results table of db. cacheSize bounds the
// number of cached per-tag responses; the database is read-only so entries never go stale.
func NewApp(db *sql.DB, table string, cacheSize int) (*App, error) {
	if !validTable.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	if cacheSize <= 0 {
		cacheSize = 1024
	}
	pairs, err := lru.New[pairsKey, []Pair](cacheSize)
	if err != nil {
		return nil, err
	}
	return &App{db: NewDB(db, table), pairs: pairs}, nil
}

// Handler returns the HTTP handler (router with CORS, recovery, routes).
func (a *App) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(corsMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/summary", a.handleSummary)
		r.Get("/pairs", a.handlePairs)
		r.Get("/implications", a.handleImplications)
		r.Get("/top", a.handleTop)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/summary", http.StatusFound)
	})

	return r
}

// corsMiddleware sets CORS headers for API so frontend on another port can call.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
