package importer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"leadflow_backend/platform/logger"
)

type fakeImportConfig struct {
	sourceURL string
	batchSize int
}

func (f fakeImportConfig) GetImportSourceURL() string       { return f.sourceURL }
func (f fakeImportConfig) GetImportInterval() time.Duration { return time.Hour }
func (f fakeImportConfig) GetImportBatchSize() int          { return f.batchSize }
func (f fakeImportConfig) GetImportTimeout() time.Duration  { return 5 * time.Second }

func TestRandomUserClientFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("results"); got != "2" {
			t.Errorf("results param = %q, want %q", got, "2")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results": [
			{"name": {"first": "Ana", "last": "Smith"}, "email": "ana@example.com", "phone": "(212) 555-0147"},
			{"name": {"first": "Bob", "last": "Jones"}, "email": "bob@example.com", "phone": ""}
		]}`))
	}))
	defer srv.Close()

	client := NewRandomUserClient(fakeImportConfig{sourceURL: srv.URL, batchSize: 2}, logger.New("development"))
	contacts, err := client.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(contacts) != 2 {
		t.Fatalf("expected 2 contacts, got %d", len(contacts))
	}
	if contacts[0].FirstName != "Ana" || contacts[0].LastName != "Smith" {
		t.Errorf("unexpected first contact: %+v", contacts[0])
	}
	if contacts[1].Email != "bob@example.com" {
		t.Errorf("unexpected second contact email: %q", contacts[1].Email)
	}
}

func TestRandomUserClientFetchNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewRandomUserClient(fakeImportConfig{sourceURL: srv.URL, batchSize: 10}, logger.New("development"))
	if _, err := client.Fetch(context.Background()); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestRandomUserClientFetchBadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	client := NewRandomUserClient(fakeImportConfig{sourceURL: srv.URL, batchSize: 10}, logger.New("development"))
	if _, err := client.Fetch(context.Background()); err == nil {
		t.Fatal("expected error for undecodable response")
	}
}
