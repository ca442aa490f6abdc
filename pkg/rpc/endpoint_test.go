package rpc

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cockroachdb/errors"
)

func statusHandler(network string, hits *int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			*hits++
		}
		fmt.Fprintf(w, `{"result":{"node_info":{"network":"%s"}}}`, network)
	}
}

func TestSelectEndpoint_FirstAliveWins(t *testing.T) {
	var firstHits, secondHits int
	first := httptest.NewServer(statusHandler("test-1", &firstHits))
	defer first.Close()
	second := httptest.NewServer(statusHandler("test-1", &secondHits))
	defer second.Close()

	conf := testConf(t)
	conf.Endpoints = []string{first.URL, second.URL}

	client, err := SelectEndpoint(t.Context(), conf)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if client.Endpoint() != first.URL {
		t.Fatalf("expected first endpoint %s, got %s", first.URL, client.Endpoint())
	}
	if firstHits != 1 {
		t.Fatalf("expected one probe of first endpoint, got %d", firstHits)
	}
	if secondHits != 0 {
		t.Fatalf("expected no probe of second endpoint, got %d", secondHits)
	}
}

func TestSelectEndpoint_SkipsDeadCandidate(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	live := httptest.NewServer(statusHandler("test-1", nil))
	defer live.Close()

	conf := testConf(t)
	conf.Endpoints = []string{deadURL, live.URL}

	client, err := SelectEndpoint(t.Context(), conf)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if client.Endpoint() != live.URL {
		t.Fatalf("expected live endpoint %s, got %s", live.URL, client.Endpoint())
	}
}

func TestSelectEndpoint_BadStatusSkipped(t *testing.T) {
	// Answers but without a network field, so the probe fails.
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"result":{}}`)
	}))
	defer broken.Close()

	live := httptest.NewServer(statusHandler("test-1", nil))
	defer live.Close()

	conf := testConf(t)
	conf.Endpoints = []string{broken.URL, live.URL}

	client, err := SelectEndpoint(t.Context(), conf)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if client.Endpoint() != live.URL {
		t.Fatalf("expected live endpoint %s, got %s", live.URL, client.Endpoint())
	}
}

func TestSelectEndpoint_AllDead(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	conf := testConf(t)
	conf.Endpoints = []string{deadURL}

	_, err := SelectEndpoint(t.Context(), conf)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, ErrNoEndpointAvailable) {
		t.Fatalf("expected ErrNoEndpointAvailable, got %v", err)
	}
}
