package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"

	// Import the Postgres driver.
	_ "github.com/lib/pq"

	"github.com/inkwell-app/inkwell/internal/profile"
	"github.com/inkwell-app/inkwell/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a Postgres connection using the profile DSN.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	pgDB, err := sql.Open("postgres", profile.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	pgDB.SetMaxOpenConns(10)
	pgDB.SetMaxIdleConns(5)

	return &DB{db: pgDB, profile: profile}, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

const schema = `
CREATE TABLE IF NOT EXISTS document (
	id SERIAL PRIMARY KEY,
	uid TEXT NOT NULL UNIQUE,
	topic TEXT NOT NULL,
	document_type TEXT NOT NULL,
	academic_level TEXT NOT NULL,
	research_areas TEXT NOT NULL DEFAULT '',
	requirements TEXT NOT NULL DEFAULT '',
	mode TEXT NOT NULL,
	status TEXT NOT NULL,
	content TEXT NOT NULL DEFAULT '',
	target_words INTEGER NOT NULL DEFAULT 0,
	words_generated INTEGER NOT NULL DEFAULT 0,
	sentence_count INTEGER NOT NULL DEFAULT 0,
	paragraph_count INTEGER NOT NULL DEFAULT 0,
	prompt_tokens INTEGER NOT NULL DEFAULT 0,
	completion_tokens INTEGER NOT NULL DEFAULT 0,
	duration_ms BIGINT NOT NULL DEFAULT 0,
	created_ts BIGINT NOT NULL,
	updated_ts BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_document_created_ts ON document (created_ts);
`

// Migrate applies the schema. The statement set is idempotent.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to apply schema")
	}
	return nil
}

// placeholder returns the numbered Postgres placeholder for position n (1-based).
func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

// placeholders returns "$1, $2, ..., $n".
func placeholders(n int) string {
	list := ""
	for i := 1; i <= n; i++ {
		if i > 1 {
			list += ", "
		}
		list += placeholder(i)
	}
	return list
}
