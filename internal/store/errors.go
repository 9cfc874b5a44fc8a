package store

import (
	"errors"

	"github.com/cortexmemory/cortex/internal/domain"
	"github.com/jackc/pgx/v5"
)

// wrapNotFound maps pgx.ErrNoRows to the domain NOT_FOUND error kind,
// matching the teacher's GetByID handling. Any other error is tagged
// STORAGE_FAILED.
func wrapNotFound(err error, message string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NewError(domain.ErrNotFound, message)
	}
	return domain.WrapError(domain.ErrStorageFailed, message, err)
}

func wrapStorage(err error, message string) error {
	if err == nil {
		return nil
	}
	return domain.WrapError(domain.ErrStorageFailed, message, err)
}
