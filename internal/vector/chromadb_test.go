// File path: internal/vector/chromadb_test.go
package vector

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeChroma struct {
	t *testing.T

	mu                sync.Mutex
	collectionName    string
	collectionID      string
	heartbeatFailures int
	heartbeatCalls    int
	findCollectionErr error
	upsertCalls       int
	queryCalls        int

	lastUpsertPayload map[string]interface{}
	lastQueryPayload  map[string]interface{}

	heartbeatCalled chan struct{}
}

func newFakeChroma(t *testing.T) *fakeChroma {
	t.Helper()
	return &fakeChroma{
		t:               t,
		collectionName:  "fallout76",
		collectionID:    "col-123",
		heartbeatCalled: make(chan struct{}, 10),
	}
}

func (f *fakeChroma) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/v1/heartbeat":
		f.handleHeartbeat(w)
	case r.URL.Path == "/api/v1/collections":
		f.handleCollections(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/v1/collections/") && strings.HasSuffix(r.URL.Path, "/upsert"):
		f.handleUpsert(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/v1/collections/") && strings.HasSuffix(r.URL.Path, "/query"):
		f.handleQuery(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeChroma) handleHeartbeat(w http.ResponseWriter) {
	f.mu.Lock()
	f.heartbeatCalls++
	shouldFail := f.heartbeatFailures > 0
	if shouldFail {
		f.heartbeatFailures--
	}
	f.mu.Unlock()
	select {
	case f.heartbeatCalled <- struct{}{}:
	default:
	}
	if shouldFail {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("heartbeat failure"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (f *fakeChroma) handleCollections(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		f.mu.Lock()
		err := f.findCollectionErr
		name := r.URL.Query().Get("name")
		collectionName := f.collectionName
		collectionID := f.collectionID
		f.mu.Unlock()
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(err.Error()))
			return
		}
		resp := map[string]interface{}{"collections": []map[string]string{}}
		if collectionID != "" && (name == "" || strings.EqualFold(name, collectionName)) {
			resp["collections"] = []map[string]string{{"id": collectionID, "name": collectionName}}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
		return
	}
	if r.Method == http.MethodPost {
		f.mu.Lock()
		if f.collectionID == "" {
			f.collectionID = "generated"
		}
		id := f.collectionID
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"id": id})
		return
	}
	w.WriteHeader(http.StatusMethodNotAllowed)
}

func (f *fakeChroma) handleUpsert(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("invalid payload"))
		return
	}
	f.mu.Lock()
	f.upsertCalls++
	f.lastUpsertPayload = payload
	f.mu.Unlock()
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("upserted"))
}

func (f *fakeChroma) handleQuery(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("invalid payload"))
		return
	}
	f.mu.Lock()
	f.queryCalls++
	f.lastQueryPayload = payload
	f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	metadatas := []map[string]interface{}{{"type": "weapon", "name": "Combat Shotgun"}}
	resp := map[string]interface{}{
		"ids":       [][]string{{"weapon_1"}},
		"distances": [][]float64{{0.42}},
		"metadatas": [][]map[string]interface{}{metadatas},
		"documents": [][]string{{"Weapon: Combat Shotgun"}},
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func (f *fakeChroma) heartbeatCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.heartbeatCalls
}

func (f *fakeChroma) upsertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.upsertCalls
}

func (f *fakeChroma) lastUpsert() map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastUpsertPayload
}

func (f *fakeChroma) lastQuery() map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastQueryPayload
}

func newTestClient(server *httptest.Server, fake *fakeChroma) *Client {
	return &Client{
		httpClient: server.Client(),
		baseURL:    strings.TrimRight(server.URL, "/") + "/api/v1",
		collection: fake.collectionName,
	}
}

func TestEnsureReadyRetriesHeartbeat(t *testing.T) {
	fake := newFakeChroma(t)
	fake.heartbeatFailures = 1
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	client := newTestClient(server, fake)

	if err := client.ensureReady(context.Background()); err != nil {
		t.Fatalf("ensureReady returned error: %v", err)
	}
	if !client.Available() {
		t.Fatalf("client should be marked available")
	}
	if fake.heartbeatCount() < 2 {
		t.Fatalf("expected at least two heartbeat attempts, got %d", fake.heartbeatCount())
	}
}

func TestEnsureReadyContextCanceled(t *testing.T) {
	fake := newFakeChroma(t)
	fake.heartbeatFailures = 10
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	client := newTestClient(server, fake)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- client.ensureReady(ctx)
	}()

	select {
	case <-fake.heartbeatCalled:
	case <-time.After(2 * time.Second):
		t.Fatal("expected heartbeat to be called")
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context canceled error, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ensureReady did not return after context cancellation")
	}
	if client.Available() {
		t.Fatal("client should not be marked available after cancellation")
	}
}

func TestEnsureReadyCollectionLookupFailure(t *testing.T) {
	fake := newFakeChroma(t)
	fake.findCollectionErr = errors.New("discovery failed")
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	client := newTestClient(server, fake)

	err := client.ensureReady(context.Background())
	if err == nil || !strings.Contains(err.Error(), "discovery failed") {
		t.Fatalf("expected discovery error, got %v", err)
	}
	if client.Available() {
		t.Fatal("client should remain unavailable on discovery failure")
	}
}

func TestUpsertCarriesMetadata(t *testing.T) {
	fake := newFakeChroma(t)
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	client := newTestClient(server, fake)
	client.available = true
	client.collectionID = fake.collectionID

	doc := Doc{
		ID:   "weapon_1",
		Text: "Weapon: Combat Shotgun. Class: Shotgun",
		Metadata: map[string]string{
			"type":  "weapon",
			"id":    "1",
			"name":  "Combat Shotgun",
			"class": "Shotgun",
		},
	}
	vectors := [][]float32{{0.1, 0.2, 0.3}}

	if err := client.Upsert(context.Background(), []Doc{doc}, vectors); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}

	payload := fake.lastUpsert()
	if payload == nil {
		t.Fatal("expected payload to be captured")
	}
	metadatas, ok := payload["metadatas"].([]interface{})
	if !ok || len(metadatas) != 1 {
		t.Fatalf("expected 1 metadata entry, got %v", payload["metadatas"])
	}
	metadata, ok := metadatas[0].(map[string]interface{})
	if !ok {
		t.Fatalf("metadata entry has unexpected type %T", metadatas[0])
	}
	for _, key := range []string{"type", "id", "name", "class"} {
		if _, ok := metadata[key].(string); !ok {
			t.Fatalf("expected %s to be a string, got %T", key, metadata[key])
		}
	}
}

func TestSearchForwardsWhereFilter(t *testing.T) {
	fake := newFakeChroma(t)
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	client := newTestClient(server, fake)
	client.available = true
	client.collectionID = fake.collectionID

	results, err := client.Search(context.Background(), []float32{0.5, 0.9}, 1000, map[string]any{"type": "weapon"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 || results[0].ID != "weapon_1" {
		t.Fatalf("unexpected search results: %+v", results)
	}
	if results[0].Distance != 0.42 {
		t.Fatalf("expected raw distance 0.42, got %v", results[0].Distance)
	}

	payload := fake.lastQuery()
	where, ok := payload["where"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected where filter in payload, got %v", payload)
	}
	if where["type"] != "weapon" {
		t.Fatalf("unexpected where filter: %v", where)
	}
	if n, ok := payload["n_results"].(float64); !ok || int(n) != 1000 {
		t.Fatalf("expected n_results 1000, got %v", payload["n_results"])
	}
}

func TestSearchOmitsEmptyWhere(t *testing.T) {
	fake := newFakeChroma(t)
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	client := newTestClient(server, fake)
	client.available = true
	client.collectionID = fake.collectionID

	if _, err := client.Search(context.Background(), []float32{0.5, 0.9}, 5, nil); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	payload := fake.lastQuery()
	if _, present := payload["where"]; present {
		t.Fatalf("expected no where filter, got %v", payload["where"])
	}
}

func TestSearchRecoversAfterHeartbeatFailure(t *testing.T) {
	fake := newFakeChroma(t)
	fake.heartbeatFailures = 1
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	client := newTestClient(server, fake)
	client.available = false
	client.collectionID = ""

	results, err := client.Search(context.Background(), []float32{0.5, 0.9}, 2, nil)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 || results[0].ID != "weapon_1" {
		t.Fatalf("unexpected search results: %+v", results)
	}
	if !client.Available() {
		t.Fatal("client should be available after recovery")
	}
}
