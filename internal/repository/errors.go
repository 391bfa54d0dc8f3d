package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Store level failures services translate into domain errors.
var (
	ErrDuplicate  = errors.New("duplicate key")
	ErrForeignKey = errors.New("foreign key violation")
	ErrStaleWrite = errors.New("row changed since it was read")
	ErrAboveMax   = errors.New("degree above course maximum")
)

const (
	pqUniqueViolation     = pq.ErrorCode("23505")
	pqForeignKeyViolation = pq.ErrorCode("23503")
	pqInvalidText         = pq.ErrorCode("22P02")
)

// lookupErr reports a malformed UUID in a lookup as a missing row.
func lookupErr(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqInvalidText {
		return sql.ErrNoRows
	}
	return err
}

// classify wraps err with op and tags well known PostgreSQL constraint
// violations so callers can match them with errors.Is.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return fmt.Errorf("%s: %w (%s)", op, ErrDuplicate, pqErr.Constraint)
		case pqForeignKeyViolation:
			return fmt.Errorf("%s: %w (%s)", op, ErrForeignKey, pqErr.Constraint)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func pageBounds(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	return size, (page - 1) * size
}
