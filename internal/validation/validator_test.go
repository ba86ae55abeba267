package validation_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/marginapp/margin-server/internal/errors"
	"github.com/marginapp/margin-server/internal/validation"
)

type TestRequest struct {
	Name     string   `json:"name" validate:"required,max=100"`
	Color    string   `json:"color" validate:"omitempty,hexcolor"`
	TokenIDs []string `json:"token_ids" validate:"omitempty,dive,tokenid"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	req := TestRequest{
		Name:     "insight",
		Color:    "#ffcc00",
		TokenIDs: []string{"gen.1.1.1", "1-ne.2.3.10"},
	}

	err := v.Validate(req)
	assert.NoError(t, err)
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		req       TestRequest
		wantField string
	}{
		{
			name:      "missing required field",
			req:       TestRequest{Name: ""},
			wantField: "name",
		},
		{
			name:      "name too long",
			req:       TestRequest{Name: string(make([]byte, 101))},
			wantField: "name",
		},
		{
			name:      "bad color",
			req:       TestRequest{Name: "insight", Color: "red"},
			wantField: "color",
		},
		{
			name:      "bad token id",
			req:       TestRequest{Name: "insight", TokenIDs: []string{"gen.1.1"}},
			wantField: "token_ids",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
			assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())

			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok, "details should carry field messages")
			assert.Contains(t, details, tt.wantField)
		})
	}
}

func TestValidator_TokenIDRule(t *testing.T) {
	v := validation.New()

	type req struct {
		Token string `json:"token" validate:"tokenid"`
	}

	assert.NoError(t, v.Validate(req{Token: "gen.1.1.1"}))
	assert.NoError(t, v.Validate(req{Token: "1-ne.2.3.10"}))
	assert.Error(t, v.Validate(req{Token: "gen.1.1"}))
	assert.Error(t, v.Validate(req{Token: "gen.1.1.x"}))
	assert.Error(t, v.Validate(req{Token: ""}))
}
