package main

import (
	"database/sql"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// App holds server dependencies for the kreachdist viewer.
type App struct {
	db        *DB
	staticDir string
}

// NewApp creates an App wired to the given debug database and an optional
// static asset directory for a browser frontend.
func NewApp(db *sql.DB, staticDir string) *App {
	return &App{
		db:        NewDB(db),
		staticDir: strings.TrimSuffix(staticDir, "/"),
	}
}

// Handler returns the HTTP router for the viewer API.
func (a *App) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(corsMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/stats", a.handleStats)
		r.Get("/search", a.handleSearch)
		r.Get("/cfgs", a.handleListCFGs)
		r.Get("/cfg", a.handleCFGByName)
		r.Get("/cfgs/{name}/blocks", a.handleCFGBlocks)
		r.Get("/cfgs/{name}/blocks/{block}", a.handleBlockDetail)
		r.Get("/cfgs/{name}/callgraph", a.handleCallGraph)
		r.Get("/summaries", a.handleSummaries)
		r.Get("/distances", a.handleDistances)
		r.Get("/distance", a.handleDistanceByLine)
		r.Get("/path", a.handleCallPath)
	})

	if a.staticDir != "" {
		r.Get("/*", a.serveSPA)
	} else {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "No static dir configured (set -static or STATIC_DIR)", http.StatusNotFound)
		})
	}

	return r
}

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

func (a *App) serveSPA(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/")
	if path == "" {
		path = "index.html"
	}
	fpath := filepath.Join(a.staticDir, filepath.Clean(path))
	if info, err := os.Stat(fpath); err == nil && !info.IsDir() {
		http.ServeFile(w, r, fpath)
		return
	}
	indexPath := filepath.Join(a.staticDir, "index.html")
	if _, err := os.Stat(indexPath); err == nil {
		http.ServeFile(w, r, indexPath)
		return
	}
	http.NotFound(w, r)
}
