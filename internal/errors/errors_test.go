package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Message(t *testing.T) {
	assert.Equal(t, "[INPUT_ERROR] bad order", Input("bad order").Error())

	err := Lookup("company", stderrors.New("timeout"))
	assert.Equal(t, "[LOOKUP_FAILURE] cannot fetch company: timeout", err.Error())
}

func TestIsType_WalksChain(t *testing.T) {
	inner := NotFound("product", "501")
	outer := Wrapf(TypeDataInconsistency, inner, "product %d of line %d is not in the catalog", 501, 1)
	wrapped := fmt.Errorf("run: %w", outer)

	assert.True(t, IsType(wrapped, TypeDataInconsistency))
	assert.True(t, IsType(wrapped, TypeNotFound))
	assert.False(t, IsType(wrapped, TypeRemote))
	assert.False(t, IsType(stderrors.New("plain"), TypeNotFound))
}

func TestTypeOf(t *testing.T) {
	outer := Lookup("order products", NotFound("order", "100"))
	assert.Equal(t, TypeLookupFailure, TypeOf(outer))
	assert.Equal(t, TypeInternal, TypeOf(stderrors.New("plain")))
}

func TestContextValue(t *testing.T) {
	err := fmt.Errorf("engine: %w", Lookup("program records", nil).WithContext("program", "invoice"))

	v, ok := ContextValue(err, "program")
	assert.True(t, ok)
	assert.Equal(t, "invoice", v)

	_, ok = ContextValue(err, "missing")
	assert.False(t, ok)
	_, ok = ContextValue(stderrors.New("plain"), "program")
	assert.False(t, ok)
}
