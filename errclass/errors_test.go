package errclass_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"icon_studio/errclass"
)

func TestError_Error(t *testing.T) {
	assert.Equal(t, "E_NOT_FOUND: Not found", errclass.ErrNotFound.Error())
	err := errclass.ErrGenerationFailure.WithDetails("rate limited")
	assert.Equal(t, "E_GENERATION_FAILURE: Generation Failed: rate limited", err.Error())
	assert.Equal(t, "E_X", (&errclass.Error{Code: "E_X"}).Error())
}

func TestError_Is(t *testing.T) {
	err := errclass.ErrLoadFailure.WithMessage("bad png")
	require.True(t, errors.Is(err, errclass.ErrLoadFailure))
	require.False(t, errors.Is(err, errclass.ErrSurfaceUnavailable))

	wrapped := fmt.Errorf("render: %w", err)
	require.True(t, errors.Is(wrapped, errclass.ErrLoadFailure))
}

func TestError_CopiesDoNotMutateClass(t *testing.T) {
	_ = errclass.ErrGenerationFailure.WithDetails("boom").WithMessagef("attempt %d", 2)
	assert.Equal(t, "Generation Failed", errclass.ErrGenerationFailure.Message)
	assert.Empty(t, errclass.ErrGenerationFailure.Details)
}

func TestError_Wrap(t *testing.T) {
	err := errclass.ErrGenerationFailure.Wrap(errors.New("rate limited"))
	assert.Equal(t, "rate limited", err.Details)
	assert.Equal(t, "Generation Failed", err.Message)
	assert.Empty(t, errclass.ErrGenerationFailure.Wrap(nil).Details)
}

func TestAs(t *testing.T) {
	assert.Nil(t, errclass.As(nil))

	e := errclass.As(fmt.Errorf("outer: %w", errclass.ErrSuperseded))
	assert.Equal(t, errclass.ErrSuperseded.Code, e.Code)

	e = errclass.As(errors.New("disk on fire"))
	assert.Equal(t, errclass.ErrInternal.Code, e.Code)
	assert.Equal(t, "disk on fire", e.Details)
}
