package validation

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type signupForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,pwd"`
}

type placeForm struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required,placedesc"`
	Count       int    `json:"count" validate:"max=3"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	Register(v)
	return v
}

func TestToDetails(t *testing.T) {
	v := newValidator()

	tests := []struct {
		name string
		in   any
		want map[string]string
	}{
		{
			name: "aliases and form names",
			in:   signupForm{Email: "not-an-email", Password: "123"},
			want: map[string]string{
				"email":    "must be a valid email",
				"password": "must be at least 6 characters long",
			},
		},
		{
			name: "place rules",
			in:   placeForm{Description: "abc", Count: 9},
			want: map[string]string{
				"title":       "is required",
				"description": "must be at least 5 characters long",
				"count":       "must be at most 3",
			},
		},
		{
			name: "valid",
			in:   placeForm{Title: "Tower", Description: "A tall one"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.in)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.want, ToDetails(err))
		})
	}
}

func TestToDetails_PayloadErrors(t *testing.T) {
	var dst map[string]any
	err := json.Unmarshal([]byte(`{"title":`), &dst)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))
	assert.Equal(t, map[string]string{"payload": "invalid payload"}, ToDetails(errors.New("x")))
	assert.Nil(t, ToDetails(nil))
}
