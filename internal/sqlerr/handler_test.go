package sqlerr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/deppfellow/vistual/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{
			name: "unique email",
			err: &pgconn.PgError{
				Code:           "23505",
				TableName:      "users",
				ConstraintName: "unique_users_email",
			},
			status:  http.StatusConflict,
			code:    "USER_ALREADY_EXISTS",
			message: "A User with this email already exists",
		},
		{
			name: "missing owner",
			err: &pgconn.PgError{
				Code:       "23503",
				TableName:  "garments",
				ColumnName: "user_id",
			},
			status:  http.StatusBadRequest,
			code:    "GARMENT_NOT_FOUND",
			message: "The referenced User does not exist",
		},
		{
			name: "not null",
			err: &pgconn.PgError{
				Code:       "23502",
				TableName:  "garments",
				ColumnName: "image_key",
			},
			status:  http.StatusBadRequest,
			code:    "GARMENT_REQUIRED",
			message: "The Image Key is required",
		},
		{
			name: "check",
			err: &pgconn.PgError{
				Code:       "23514",
				TableName:  "garments",
				ColumnName: "name",
			},
			status:  http.StatusBadRequest,
			code:    "GARMENT_INVALID",
			message: "The Name value does not meet required conditions",
		},
		{
			name:    "no rows with table",
			err:     fmt.Errorf("get garment: %w", NotFound("garments")),
			status:  http.StatusNotFound,
			code:    "GARMENT_NOT_FOUND",
			message: "Garment not found",
		},
		{
			name:    "bare no rows",
			err:     pgx.ErrNoRows,
			status:  http.StatusNotFound,
			code:    "NOT_FOUND",
			message: "Resource not found",
		},
		{
			name:    "unknown",
			err:     errors.New("connection reset"),
			status:  http.StatusInternalServerError,
			code:    "INTERNAL_SERVER_ERROR",
			message: "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var httpErr *errs.HTTPError
			require.True(t, errors.As(HandleError(tt.err), &httpErr))
			assert.Equal(t, tt.status, httpErr.Status)
			assert.Equal(t, tt.code, httpErr.Code)
			assert.Equal(t, tt.message, httpErr.Message)
		})
	}
}

func TestHandleErrorPassesHTTPErrorThrough(t *testing.T) {
	original := errs.NewForbiddenError("not yours", true)
	assert.Same(t, original, HandleError(original))
}

func TestMapCodeAndSeverity(t *testing.T) {
	assert.Equal(t, UniqueViolation, MapCode("23505"))
	assert.Equal(t, Other, MapCode("XX000"))
	assert.Equal(t, SeverityFatal, MapSeverity("FATAL"))
	assert.Equal(t, SeverityError, MapSeverity("whatever"))
}

func TestErrCodeUnwrapsDriverError(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", Severity: "ERROR", Message: "duplicate key"}
	converted := ConvertPgError(pgErr)

	assert.Equal(t, UniqueViolation, ErrCode(fmt.Errorf("insert: %w", converted)))
	assert.Equal(t, Other, ErrCode(errors.New("plain")))

	var unwrapped *pgconn.PgError
	assert.True(t, errors.As(converted, &unwrapped))
}
