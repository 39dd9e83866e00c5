package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	_ "modernc.org/sqlite"
)

func main() {
	dbPath := flag.String("db", "", "Path to a tagmi results database (e.g. out.db). Can be set via DB_PATH env.")
	port := flag.String("port", "8080", "HTTP port. Can be set via PORT env.")
	table := flag.String("table", "", "Results table name (default tag_pairs). Can be set via TAGMI_TABLE env.")
	cacheSize := flag.Int("cache-size", 0, "Number of cached /api/pairs responses (default 1024). Can be set via CACHE_SIZE env.")
	flag.Parse()

	if *dbPath == "" {
		*dbPath = os.Getenv("DB_PATH")
	}
	if *dbPath == "" {
		log.Fatal("DB path required: set -db or DB_PATH")
	}
	if *port == "" {
		*port = os.Getenv("PORT")
	}
	if *port == "" {
		*port = "8080"
	}
	if *table == "" {
		*table = os.Getenv("TAGMI_TABLE")
	}
	if *table == "" {
		*table = "tag_pairs"
	}
	if *cacheSize == 0 {
		if n, err := strconv.Atoi(os.Getenv("CACHE_SIZE")); err == nil {
			*cacheSize = n
		}
	}

	dsn, err := readOnlyDSN(*dbPath)
	if err != nil {
		log.Fatalf("db path: %v", err)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		log.Fatalf("ping db: %v", err)
	}

	var found int
	if err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, *table).Scan(&found); err != nil {
		log.Fatalf("inspect db: %v", err)
	}
	if found == 0 {
		log.Fatalf("table %q not found in %s (was it written with a different -output-table?)", *table, *dbPath)
	}

	app, err := NewApp(db, *table, *cacheSize)
	if err != nil {
		log.Fatalf("init: %v", err)
	}
	srv := &http.Server{
		Addr:         ":" + *port,
		Handler:      app.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("Listening on http://localhost:%s (db=%s, table=%s)", *port, *dbPath, *table)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown: %v\n", err)
		os.Exit(1)
	}
	log.Println("Bye")
}

// readOnlyDSN opens path read-only as an absolute "file:///" URI, escaped so
// '?', '#' and '%' in directory names are not taken for URI syntax.
func readOnlyDSN(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	u := url.URL{Scheme: "file", Path: p, RawQuery: "mode=ro"}
	return u.String(), nil
}
