package db

import (
	"errors"
	"fmt"
	"strings"

	e "github.com/gartstein/fleet/internal/company/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// Postgres SQLSTATE codes for integrity constraint violations.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// translateError maps driver constraint failures onto the storage sentinels.
// Errors it does not recognise are returned unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return e.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			if strings.HasSuffix(pgErr.ConstraintName, "_pkey") {
				return fmt.Errorf("%w: %s", e.ErrPrimaryKeyViolation, pgErr.Detail)
			}
			return fmt.Errorf("%w: %s", e.ErrUniqueViolation, pgErr.Detail)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", e.ErrForeignKeyViolation, pgErr.Detail)
		}
		return err
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %s", e.ErrPrimaryKeyViolation, liteErr.Error())
		case sqlite3.ErrConstraintUnique:
			return fmt.Errorf("%w: %s", e.ErrUniqueViolation, liteErr.Error())
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%w: %s", e.ErrForeignKeyViolation, liteErr.Error())
		}
	}
	return err
}
