package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/musicgenreator/genreator/internal/errors"
	"github.com/musicgenreator/genreator/internal/store"
)

func marshalMap(t *testing.T, v any) map[string]any {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestEnvelopeTransformer_Success(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "200", map[string]string{"slug": "dub"})
	require.NoError(t, err)

	out := marshalMap(t, result)
	assert.Equal(t, map[string]any{
		"v":       float64(EnvelopeVersion),
		"success": true,
		"data":    map[string]any{"slug": "dub"},
	}, out)
}

func TestEnvelopeTransformer_NilData(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "204", nil)
	require.NoError(t, err)

	out := marshalMap(t, result)
	assert.Equal(t, true, out["success"])
	assert.NotContains(t, out, "error")
}

func TestEnvelopeTransformer_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		body     any
		wantCode string
		wantMsg  string
	}{
		{
			name:     "api error",
			status:   "404",
			body:     &APIError{status: http.StatusNotFound, Code: "NOT_FOUND", Message: "genre not found"},
			wantCode: "NOT_FOUND",
			wantMsg:  "genre not found",
		},
		{
			name:     "plain error",
			status:   "502",
			body:     errors.New("bad gateway"),
			wantCode: "UPSTREAM",
			wantMsg:  "bad gateway",
		},
		{
			name:     "non-error body with error status",
			status:   "500",
			body:     map[string]string{"x": "y"},
			wantCode: "INTERNAL",
			wantMsg:  "request failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := EnvelopeTransformer(nil, tt.status, tt.body)
			require.NoError(t, err)

			out := marshalMap(t, result)
			assert.Equal(t, false, out["success"])
			assert.Equal(t, float64(EnvelopeVersion), out["v"])
			assert.Equal(t, tt.wantCode, out["code"])
			assert.Equal(t, tt.wantMsg, out["message"])
			assert.Equal(t, tt.wantMsg, out["error"])
			assert.NotContains(t, out, "data")
		})
	}
}

func TestNewAPIError(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		errs       []error
		wantStatus int
		wantCode   string
		wantDetail bool
	}{
		{"domain not found", 500, []error{domainerrors.NotFoundf("genre %q not found", "dub")}, http.StatusNotFound, "NOT_FOUND", false},
		{"domain validation details", 500, []error{domainerrors.ValidationWithDetails("bad", map[string]string{"q": "is required"})}, http.StatusBadRequest, "VALIDATION", true},
		{"upstream", 500, []error{domainerrors.Upstream("deezer failed", errors.New("timeout"))}, http.StatusBadGateway, "UPSTREAM", false},
		{"store conflict", 500, []error{store.ErrAlreadyExists}, http.StatusConflict, "ALREADY_EXISTS", false},
		{"framework validation", http.StatusUnprocessableEntity, []error{errors.New("expected number")}, http.StatusUnprocessableEntity, "VALIDATION", true},
		{"internal hides cause", 500, []error{errors.New("disk on fire")}, http.StatusInternalServerError, "INTERNAL", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newAPIError(tt.status, "message", tt.errs...)

			apiErr, ok := err.(*APIError)
			require.True(t, ok)
			assert.Equal(t, tt.wantStatus, apiErr.GetStatus())
			assert.Equal(t, tt.wantCode, apiErr.Code)
			if tt.wantDetail {
				assert.NotNil(t, apiErr.Details)
			} else if tt.wantCode != "VALIDATION" {
				assert.Nil(t, apiErr.Details)
			}
		})
	}
}
