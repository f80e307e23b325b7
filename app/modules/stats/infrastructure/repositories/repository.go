package statsdb

import (
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
)

// ErrNotFound is returned when a cursor or link does not exist.
var ErrNotFound = errors.New("not found")

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new stats repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
