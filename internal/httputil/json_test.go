package httputil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	testCases := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "valid", body: `{"name": "Cup"}`},
		{name: "empty", body: ``, wantErr: "body must not be empty"},
		{name: "syntax", body: `{"name": }`, wantErr: "badly-formed JSON"},
		{name: "truncated", body: `{"name": "Cup"`, wantErr: "badly-formed JSON"},
		{name: "wrong type", body: `{"name": 3}`, wantErr: `incorrect JSON type for field "name"`},
		{name: "unknown field", body: `{"title": "Cup"}`, wantErr: `unknown key "title"`},
		{name: "two values", body: `{"name": "a"}{"name": "b"}`, wantErr: "single JSON value"},
		{name: "too large", body: `{"name": "` + strings.Repeat("a", maxBodyBytes) + `"}`, wantErr: "must not be larger"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			w := httptest.NewRecorder()

			var dst payload
			err := ReadJSON(w, r, &dst)
			if tc.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "Cup", dst.Name)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestErrorResponse(t *testing.T) {
	w := httptest.NewRecorder()
	Error(w, http.StatusConflict, "RESULT_ALREADY_SET", "match already decided")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error": "match already decided", "code": "RESULT_ALREADY_SET"}`, w.Body.String())
}
