package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nand2tetris-go/jackc/api"
	"github.com/nand2tetris-go/jackc/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleHealth(t *testing.T) {
	srv := api.NewServer(0, config.DefaultConfig())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleCompile_Success(t *testing.T) {
	srv := api.NewServer(0, config.DefaultConfig())

	body, err := json.Marshal(map[string]string{
		"filename": "Main.jack",
		"source":   "class Main { function void main() { return; } }",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/compile", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		VM string `json:"vm"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Contains(t, resp.VM, "function Main.main 0")
}

func TestHandleCompile_FatalErrorIsUnprocessable(t *testing.T) {
	srv := api.NewServer(0, config.DefaultConfig())

	body, err := json.Marshal(map[string]string{
		"filename": "Bad.jack",
		"source":   "not a class",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/compile", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp struct {
		Error struct {
			Kind    string `json:"kind"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "structural", resp.Error.Kind)
}

func TestHandleCompile_WrongMethod(t *testing.T) {
	srv := api.NewServer(0, config.DefaultConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/compile", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
