package db

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/surrealdb/surrealdb.go"
)

func TestWrapQueryError(t *testing.T) {
	assert.NoError(t, wrapQueryError(nil))

	plain := errors.New("dial tcp: refused")
	assert.Same(t, plain, wrapQueryError(plain))

	conflict := &surrealdb.QueryError{Message: "Transaction conflict: resource busy"}
	err := wrapQueryError(conflict)
	assert.ErrorIs(t, err, ErrTransactionConflict)
	assert.Contains(t, err.Error(), "resource busy")
}

func TestOptional(t *testing.T) {
	assert.Nil(t, optional(""))
	got := optional("/onboarding/editing")
	if assert.NotNil(t, got) {
		assert.Equal(t, "/onboarding/editing", *got)
	}
	assert.Equal(t, []string{}, nonNil(nil))
}
