// SPDX-License-Identifier: MIT

package httputil_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/rbcm/internal/httputil"
	"github.com/katalvlaran/rbcm/internal/logging"
)

type doc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func testCtx() context.Context {
	return logging.WithLogger(context.Background(), logging.NewNop())
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body httputil.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body.Error
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		ctype   string
		body    string
		ok      bool
		status  int
		message string
	}{
		{name: "ok", method: http.MethodPost, ctype: "application/json; charset=utf-8", body: `{"name": "a", "count": 2}`, ok: true},
		{name: "method", method: http.MethodPut, ctype: "application/json", body: `{}`, status: http.StatusMethodNotAllowed, message: "method PUT is not allowed"},
		{name: "content type", method: http.MethodPost, ctype: "text/csv", body: `{}`, status: http.StatusUnsupportedMediaType},
		{name: "syntax", method: http.MethodPost, ctype: "application/json", body: `{"name": }`, status: http.StatusBadRequest, message: "malformed json at position"},
		{name: "truncated", method: http.MethodPost, ctype: "application/json", body: `{"name": "a"`, status: http.StatusBadRequest, message: "malformed json"},
		{name: "type", method: http.MethodPost, ctype: "application/json", body: `{"count": "two"}`, status: http.StatusBadRequest, message: "invalid value for count"},
		{name: "unknown", method: http.MethodPost, ctype: "application/json", body: `{"other": 1}`, status: http.StatusBadRequest, message: `unknown field "other"`},
		{name: "empty", method: http.MethodPost, ctype: "application/json", body: ``, status: http.StatusBadRequest, message: "body must not be empty"},
		{name: "too large", method: http.MethodPost, ctype: "application/json", body: `{"name": "` + strings.Repeat("x", 64) + `"}`, status: http.StatusRequestEntityTooLarge, message: "body exceeds 32 bytes"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(tc.method, "/", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", tc.ctype)

			var v doc
			ok := httputil.DecodeJSON(testCtx(), rec, req, 32, &v)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, doc{Name: "a", Count: 2}, v)

				return
			}
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, errorOf(t, rec), tc.message)
		})
	}
}

func TestRespInternalError_HidesDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	httputil.RespInternalError(testCtx(), rec, "database password is %s", "hunter2")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error", errorOf(t, rec))
}

func TestDecodeErr_Unknown(t *testing.T) {
	rec := httptest.NewRecorder()
	httputil.DecodeErr(testCtx(), rec, errors.New("connection reset"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRespJSON_Unencodable(t *testing.T) {
	rec := httptest.NewRecorder()
	httputil.RespJSON(testCtx(), rec, http.StatusOK, map[string]any{"ch": make(chan int)})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Body.String())
}
