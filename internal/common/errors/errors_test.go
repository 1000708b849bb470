package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	cases := map[ErrorCode]int{
		ErrCodeValidation:   http.StatusBadRequest,
		ErrCodeNotFound:     http.StatusNotFound,
		ErrCodeUnauthorized: http.StatusUnauthorized,
		ErrCodeDuplicate:    http.StatusConflict,
		ErrCodeInternal:     http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, New(code, "x").Status(), code)
	}
}

func TestFromWrapsPlainErrors(t *testing.T) {
	cause := stderrors.New("redis down")
	appErr := From(fmt.Errorf("ledger: %w", cause))

	assert.Equal(t, ErrCodeInternal, appErr.Code)
	assert.True(t, appErr.IsInternal())
	assert.ErrorIs(t, appErr, cause)
}

func TestFromKeepsAppErrorInChain(t *testing.T) {
	dup := NewDuplicateError("already claimed")
	appErr := From(fmt.Errorf("add: %w", dup))

	assert.Same(t, dup, appErr)
	assert.Equal(t, http.StatusConflict, appErr.Status())
}
