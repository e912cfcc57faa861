// Package db is the Postgres persistence layer. Rich documents — edit
// configs, transcripts, analyses, preferences — live in jsonb columns and
// are decoded into their model types on read.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// ErrNotFound is returned when a requested row does not exist. Callers
// match it with errors.Is to turn lookups into 404 responses.
var ErrNotFound = errors.New("not found")

type DB struct {
	*sql.DB
}

// New opens a Postgres connection pool and verifies connectivity.
func New(databaseURL string) (*DB, error) {
	conn, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{conn}, nil
}

// scanner is the surface shared by sql.Row and sql.Rows, so one scan
// helper per table serves both single- and multi-row queries.
type scanner interface {
	Scan(dest ...interface{}) error
}

// decodeDoc unmarshals a jsonb column into *out when the column is
// non-empty; a NULL column leaves *out nil.
func decodeDoc[T any](raw []byte, out **T, label string) error {
	if len(raw) == 0 {
		return nil
	}
	v := new(T)
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", label, err)
	}
	*out = v
	return nil
}
