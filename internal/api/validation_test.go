package api

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidationError_FieldDetails(t *testing.T) {
	type payload struct {
		Email     string `validate:"required,email"`
		PackageID int    `validate:"required"`
	}

	err := validator.New().Struct(payload{Email: "not-an-email"})
	require.Error(t, err)

	resp := NewValidationError(err)
	assert.Equal(t, "validation failed", resp.Error)
	require.Len(t, resp.Details, 2)
	assert.Equal(t, "Email", resp.Details[0].Field)
	assert.Equal(t, "Email must be a valid email address", resp.Details[0].Message)
	assert.Equal(t, "PackageID is required", resp.Details[1].Message)
}

func TestNewValidationError_NonValidationError(t *testing.T) {
	resp := NewValidationError(errors.New("unexpected EOF"))
	assert.Equal(t, "unexpected EOF", resp.Error)
	assert.Empty(t, resp.Details)
}
