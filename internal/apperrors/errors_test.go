package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", Validation("name is required"), http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("create: %w", Validation("bad")), http.StatusBadRequest},
		{"not found", NotFound("Settings not found"), http.StatusNotFound},
		{"sentinel not found", ErrNotFound, http.StatusNotFound},
		{"other", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.err))
		})
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "a; b", Message(Validation("a", "b")))
	assert.Equal(t, "Shop not found", Message(fmt.Errorf("lookup: %w", NotFound("Shop not found"))))
	assert.Equal(t, "boom", Message(errors.New("boom")))
	assert.Equal(t, "validation failed", Message(Validation()))
}
