// File path: internal/api/server_test.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rofenac/fo76-ml-db/internal/engine"
	"github.com/rofenac/fo76-ml-db/internal/exact"
	"github.com/rofenac/fo76-ml-db/internal/intent"
	"github.com/rofenac/fo76-ml-db/internal/retriever"
	"github.com/rofenac/fo76-ml-db/internal/store"
	"github.com/rofenac/fo76-ml-db/internal/vector"
)

type stubProvider struct{}

func (stubProvider) Name() string { return "stub" }

func (stubProvider) Complete(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	return "a grounded answer", nil
}

func (stubProvider) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	vectors := make([][]float32, len(inputs))
	for i := range inputs {
		vectors[i] = []float32{0.1, 0.2}
	}
	return vectors, nil
}

type stubIndex struct{}

func (stubIndex) Available() bool    { return true }
func (stubIndex) Collection() string { return "fallout76" }

func (stubIndex) Upsert(ctx context.Context, docs []vector.Doc, vectors [][]float32) error {
	return nil
}

func (stubIndex) Search(ctx context.Context, vec []float32, limit int, where map[string]any) ([]vector.SearchResult, error) {
	return []vector.SearchResult{
		{ID: "weapon_1", Distance: 0.1, Metadata: map[string]any{"type": "weapon", "name": "Combat Shotgun"}},
	}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.db")
	st, err := store.OpenWithConfig(store.Config{Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	_, err = st.DB().Exec(`INSERT INTO weapons (id, name, weapon_type, weapon_class, damage) VALUES (1, 'Combat Shotgun', 'Ranged', 'Shotgun', '60')`)
	require.NoError(t, err)

	provider := stubProvider{}
	eng := engine.New(
		intent.NewClassifier(intent.DefaultOptions),
		exact.New(provider, st),
		retriever.New(provider, stubIndex{}, st),
		provider,
	)
	server, err := NewServer(eng)
	require.NoError(t, err)
	return server
}

func postJSON(t *testing.T, handler http.Handler, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAskCreatesSession(t *testing.T) {
	server := newTestServer(t)

	rec := postJSON(t, server.Handler(), "/v1/ask", askRequest{Question: "Best bloodied heavy gunner build"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp askResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "VECTOR+SQL", resp.Method)
	require.NotEmpty(t, resp.SessionID)
	require.NotEmpty(t, resp.Answer)
}

func TestAskReusesSession(t *testing.T) {
	server := newTestServer(t)

	first := postJSON(t, server.Handler(), "/v1/ask", askRequest{Question: "Best bloodied heavy gunner build"})
	require.Equal(t, http.StatusOK, first.Code)
	var resp askResponse
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &resp))

	second := postJSON(t, server.Handler(), "/v1/ask", askRequest{
		Question:  "Recommend shotguns for a stealth build",
		SessionID: resp.SessionID,
	})
	require.Equal(t, http.StatusOK, second.Code)
	var followUp askResponse
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &followUp))
	require.Equal(t, resp.SessionID, followUp.SessionID)
	require.Equal(t, "HYBRID", followUp.Method)
}

func TestAskUnknownSession(t *testing.T) {
	server := newTestServer(t)
	rec := postJSON(t, server.Handler(), "/v1/ask", askRequest{Question: "anything", SessionID: "nope"})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	server := newTestServer(t)
	rec := postJSON(t, server.Handler(), "/v1/ask", askRequest{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionClear(t *testing.T) {
	server := newTestServer(t)

	rec := postJSON(t, server.Handler(), "/v1/ask", askRequest{Question: "Best bloodied heavy gunner build"})
	var resp askResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	cleared := postJSON(t, server.Handler(), "/v1/session/clear", clearRequest{SessionID: resp.SessionID})
	require.Equal(t, http.StatusOK, cleared.Code)

	missing := postJSON(t, server.Handler(), "/v1/session/clear", clearRequest{SessionID: "nope"})
	require.Equal(t, http.StatusNotFound, missing.Code)
}

func TestHealthz(t *testing.T) {
	server := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}

func TestLogsEndpoint(t *testing.T) {
	server := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/logs", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "logs")
}
