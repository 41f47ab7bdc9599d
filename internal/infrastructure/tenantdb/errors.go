package tenantdb

import (
	"errors"
	"strings"

	"github.com/erp/pymes/internal/domain/shared"
	"github.com/erp/pymes/internal/domain/tenant"
	"github.com/go-sql-driver/mysql"
)

// MySQL server error numbers used for classification
const (
	erUnknownColumn    = 1054
	erDuplicateEntry   = 1062
	erNoSuchTable      = 1146
	erRowIsReferenced  = 1451
	erNoReferencedRow  = 1452
	erRowIsReferenced2 = 1217
	erNoReferencedRow2 = 1216
)

// IsSchemaDrift reports whether err means an expected table or column is
// missing from the tenant database
func IsSchemaDrift(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == erNoSuchTable || myErr.Number == erUnknownColumn
	}
	msg := strings.ToLower(err.Error())
	return (strings.Contains(msg, "table") && strings.Contains(msg, "doesn't exist")) ||
		strings.Contains(msg, "unknown column")
}

// IsMissingTable reports whether err is specifically a missing table
func IsMissingTable(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == erNoSuchTable
	}
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "doesn't exist")
}

// ConstraintError translates foreign key and unique violations into a
// client-safe domain error. It returns nil for any other error.
func ConstraintError(err error) *shared.DomainError {
	if err == nil {
		return nil
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case erRowIsReferenced, erRowIsReferenced2:
			return tenant.ErrConstraintViolation.Wrap(err).WithMessage(tenant.MsgReferenced)
		case erNoReferencedRow, erNoReferencedRow2:
			return tenant.ErrConstraintViolation.Wrap(err).WithMessage(tenant.MsgMissingReference)
		case erDuplicateEntry:
			return tenant.ErrConstraintViolation.Wrap(err).WithMessage(tenant.MsgDuplicate)
		}
		return nil
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "cannot delete or update a parent row"):
		return tenant.ErrConstraintViolation.Wrap(err).WithMessage(tenant.MsgReferenced)
	case strings.Contains(msg, "cannot add or update a child row"):
		return tenant.ErrConstraintViolation.Wrap(err).WithMessage(tenant.MsgMissingReference)
	case strings.Contains(msg, "duplicate entry"):
		return tenant.ErrConstraintViolation.Wrap(err).WithMessage(tenant.MsgDuplicate)
	}
	return nil
}
