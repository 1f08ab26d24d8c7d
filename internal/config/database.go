package config

import (
	"database/sql"
	"time"

	_ "github.com/lib/pq"

	"storefront-gateway/internal/observability"
)

// NewPostgresConnection creates the connection pool backing the durable
// session store.
func NewPostgresConnection(dbURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, err
	}

	// Session lookups are small point reads; a modest pool is enough.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	observability.DBConnectionsOpen.Set(float64(db.Stats().OpenConnections))

	return db, nil
}
