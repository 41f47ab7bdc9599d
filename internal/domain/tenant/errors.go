package tenant

import "github.com/erp/pymes/internal/domain/shared"

// Tenant routing errors. Messages never contain host names or credentials.
var (
	ErrTenantNotFound = shared.NewDomainError("TENANT_NOT_FOUND",
		"Company not found")
	ErrConnectFailure = shared.NewDomainError("TENANT_UNAVAILABLE",
		"Could not connect to the company database")
	ErrSchemaRetry = shared.NewDomainError("SCHEMA_RETRY",
		"The company database was updated, please retry the request")
	ErrConstraintViolation = shared.NewDomainError("CONSTRAINT_VIOLATION",
		"The operation violates a data constraint")
	ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS",
		"Invalid credentials")
)

// Constraint violation messages
const (
	MsgReferenced       = "cannot delete: referenced by existing records"
	MsgMissingReference = "a referenced record does not exist"
	MsgDuplicate        = "a record with the same unique value already exists"
)
