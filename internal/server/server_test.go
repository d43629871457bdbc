// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/tyx/internal/convert"
	"github.com/pdiddy/tyx/pkg/types"
)

func testServer(t *testing.T, maxBody int64) (*Server, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, nil))
	cfg := types.DefaultConfig()
	cfg.Serve.MaxBodyBytes = maxBody
	return New(convert.New(cfg.Convert, nil, log), log, cfg.Serve), &logs
}

func post(t *testing.T, s *Server, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := testServer(t, 0)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestConvertEndpoint(t *testing.T) {
	s, logs := testServer(t, 0)
	rec := post(t, s, "/api/convert?direction=tex2typst", `\section{A}\label{a} see \ref{b}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp convertResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Output, "= A <a>")
	assert.Equal(t, []string{"b"}, resp.UndefinedReferences)
	assert.Equal(t, []string{"a"}, resp.UnusedLabels)
	require.Len(t, resp.Diagnostics, 1)
	assert.Equal(t, "UnresolvedReference", string(resp.Diagnostics[0].Kind))

	assert.Contains(t, logs.String(), "path=/api/convert")
	assert.Contains(t, logs.String(), "status=200")
}

func TestConvertEndpointReverse(t *testing.T) {
	s, _ := testServer(t, 0)
	rec := post(t, s, "/api/convert?direction=typst2tex", "= Intro\n$norm(x)$")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp convertResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "\\section{Intro}\n$\\|x\\|$\n", resp.Output)
	assert.NotNil(t, resp.Diagnostics)
}

func TestRoundTripEndpoint(t *testing.T) {
	s, _ := testServer(t, 0)
	rec := post(t, s, "/api/roundtrip?direction=tex2typst", `Let $\|x\|_{2} \le 1$.`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp roundTripResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Equal, resp.Diff)
	assert.Contains(t, resp.Intermediate, "norm(x)_(2)")
}

func TestRequestErrors(t *testing.T) {
	s, _ := testServer(t, 16)
	tests := []struct {
		name   string
		target string
		body   string
		status int
	}{
		{"bad direction", "/api/convert?direction=md", "x", http.StatusBadRequest},
		{"too large", "/api/convert", strings.Repeat("x", 64), http.StatusRequestEntityTooLarge},
		{"roundtrip too large", "/api/roundtrip", strings.Repeat("x", 64), http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, s, tt.target, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestConcurrentRequests(t *testing.T) {
	s, _ := testServer(t, 0)
	want := post(t, s, "/api/convert", `\begin{Lemma}\label{l}$\|x\|$\end{Lemma}`).Body.String()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := post(t, s, "/api/convert", `\begin{Lemma}\label{l}$\|x\|$\end{Lemma}`).Body.String()
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()
}
