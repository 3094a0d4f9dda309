package database

import (
	"database/sql"
	"net"
	"syscall"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/englishcenter/core"
)

// Postgres SQLSTATE codes
const (
	ForeignKeyViolation = "23503"
	UniqueViolation     = "23505"
	CheckViolation      = "23514"
)

// Mapping assigns the domain errors raised by a statement's constraint violations.
type Mapping struct {
	NotFound   error // returned for sql.ErrNoRows
	ForeignKey error // returned for 23503
	Unique     error // returned for 23505
}

// TranslateError turns a storage failure of the operation `op` into one of the core error kinds.
func TranslateError(err error, op string, mappings ...Mapping) error {
	if err == nil {
		return nil
	}
	var m Mapping
	if len(mappings) > 0 {
		m = mappings[0]
	}

	if errors.Is(err, sql.ErrNoRows) {
		if m.NotFound != nil {
			return m.NotFound
		}
		return core.NewNotFoundError("record")
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case ForeignKeyViolation:
			if m.ForeignKey != nil {
				return m.ForeignKey
			}
			return core.NewInvalidReferenceError("invalid reference")
		case UniqueViolation:
			if m.Unique != nil {
				return m.Unique
			}
			return core.NewDuplicateError("record already exists")
		case CheckViolation:
			return core.NewValidationError(errors.New(pqErr.Message))
		}
		if pqErr.Code.Class() == "08" { // connection exception
			return core.NewPersistenceError(op, err, true)
		}
		return core.NewPersistenceError(op, err, false)
	}

	if isUnavailable(err) {
		return core.NewPersistenceError(op, err, true)
	}
	return core.NewPersistenceError(op, err, false)
}

func isUnavailable(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}
