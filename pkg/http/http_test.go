package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "stowaway/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError_AppError(t *testing.T) {
	rec := httptest.NewRecorder()
	err := apperrors.ValidationFields("Reservation validation failed", map[string]string{
		"start_date": "Start date cannot be in the past.",
	})

	require.NoError(t, WriteError(rec, err))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, apperrors.CodeValidation, body["code"])
	fields := body["details"].(map[string]any)["fields"].(map[string]any)
	assert.Equal(t, "Start date cannot be in the past.", fields["start_date"])
}

func TestWriteError_PlainErrorIsGeneric(t *testing.T) {
	rec := httptest.NewRecorder()

	require.NoError(t, WriteError(rec, errors.New("mongo: connection refused to 10.0.0.5")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
	assert.Contains(t, rec.Body.String(), apperrors.CodeInternal)
}

func TestWriteList_EmptyIsArray(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteList[string](rec, nil))
	assert.JSONEq(t, `{"data": [], "total_count": 0}`, rec.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		UnitID string `json:"unit_id"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"unit_id":"u1"}`, false},
		{"empty", ``, true},
		{"malformed", `{"unit_id":`, true},
		{"unknown field", `{"unit":"u1"}`, true},
		{"two objects", `{"unit_id":"u1"}{"unit_id":"u2"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var p payload
			err := DecodeJSON(r, &p)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, apperrors.IsAppError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "u1", p.UnitID)
		})
	}
}

func TestQueryBool(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?active=true", nil)
	v, err := QueryBool(r, "active")
	require.NoError(t, err)
	assert.True(t, v)

	r = httptest.NewRequest(http.MethodGet, "/?active=maybe", nil)
	_, err = QueryBool(r, "active")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}
