package repository

import (
	"database/sql"

	"github.com/filaops/scheduler/backend/internal/config"
)

// Repository wraps the postgres pool. Query methods bound their own
// execution time with the configured query timeout.
type Repository struct {
	cfg    *config.Config
	dbpool *sql.DB
}

func NewRepository(cfg *config.Config, dbpool *sql.DB) *Repository {
	return &Repository{
		cfg:    cfg,
		dbpool: dbpool,
	}
}
