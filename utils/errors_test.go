package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorHTTPStatus(t *testing.T) {
	cases := map[*AppError]int{
		ErrValidation("bad %s", "input"):   http.StatusBadRequest,
		ErrInvalidCredentials():            http.StatusUnauthorized,
		ErrUnauthenticated():               http.StatusUnauthorized,
		ErrForbidden("no"):                 http.StatusForbidden,
		ErrNotFound("report"):              http.StatusNotFound,
		ErrInvalidStateTransition("again"): http.StatusConflict,
		ErrAlreadyCheckedOut():             http.StatusConflict,
		ErrConflict("dup"):                 http.StatusConflict,
		ErrInternal(errors.New("boom")):    http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, err.HTTPStatus(), string(err.Kind))
	}
}

func TestIsKindThroughWrapping(t *testing.T) {
	err := fmt.Errorf("approve leave: %w", ErrInvalidStateTransition("leave request is already approved"))

	assert.True(t, IsKind(err, KindInvalidStateTransition))
	assert.False(t, IsKind(err, KindNotFound))
	assert.True(t, errors.Is(err, &AppError{Kind: KindInvalidStateTransition}))
	assert.False(t, IsKind(errors.New("plain"), KindInternal))
}

func TestErrNotFoundMessage(t *testing.T) {
	assert.Equal(t, "leave request not found", ErrNotFound("leave request").Error())
}
