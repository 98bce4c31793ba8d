package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		err  *Error
		want int
	}{
		{"not found", NotFound("Could not find city."), http.StatusBadRequest},
		{"provider with status", Provider(http.StatusUnauthorized, "fetch failed", nil), http.StatusUnauthorized},
		{"provider transport", Provider(0, "fetch failed", errors.New("dial tcp")), http.StatusBadGateway},
		{"unexpected", Unexpected("boom", nil), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.err.HTTPStatus())
		})
	}
}

func TestFromWrapsForeignErrors(t *testing.T) {
	plain := errors.New("malformed payload")
	got := From(plain)
	assert.Equal(t, KindUnexpected, got.Kind)
	assert.ErrorIs(t, got, plain)

	wrapped := fmt.Errorf("resolve: %w", NotFound("Could not find city."))
	assert.Equal(t, KindNotFound, From(wrapped).Kind)
	assert.True(t, IsKind(wrapped, KindNotFound))
	assert.False(t, IsKind(wrapped, KindProvider))
	assert.Nil(t, From(nil))
}
