package saxo

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"fxstream/internal/domain"
	"fxstream/internal/infra"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(apiBase, wsURL string) *infra.Config {
	cfg := &infra.Config{}
	cfg.Feed.APIBase = apiBase
	cfg.Feed.WSURL = wsURL
	cfg.Feed.AssetType = "FxSpot"
	cfg.Feed.RefreshRateMS = 1000
	cfg.Feed.SubscribeTimeoutSec = 5
	cfg.Feed.Instruments = infra.DefaultInstruments()
	return cfg
}

func TestCreateSubscription(t *testing.T) {
	var got subscriptionRequest
	var auth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != subscriptionPath {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL, "ws://unused"), discardLogger())

	refID, err := c.CreateSubscription(context.Background(), "EUR-USD", "mds-1", "tok")
	if err != nil {
		t.Fatalf("CreateSubscription: %v", err)
	}
	if refID != "EUR_USD_sub" {
		t.Errorf("expected EUR_USD_sub, got %s", refID)
	}
	if auth != "Bearer tok" {
		t.Errorf("expected bearer auth, got %q", auth)
	}
	if got.Arguments.AssetType != "FxSpot" || got.Arguments.Uic != 21 {
		t.Errorf("unexpected arguments: %+v", got.Arguments)
	}
	if got.ContextID != "mds-1" || got.ReferenceID != "EUR_USD_sub" || got.RefreshRate != 1000 {
		t.Errorf("unexpected request: %+v", got)
	}
}

func TestCreateSubscription_UnknownSymbol(t *testing.T) {
	c := NewClient(testConfig("http://unused", "ws://unused"), discardLogger())

	_, err := c.CreateSubscription(context.Background(), "XXX-YYY", "mds-1", "tok")
	if !errors.Is(err, domain.ErrUnknownSymbol) {
		t.Fatalf("expected ErrUnknownSymbol, got %v", err)
	}
	if domain.IsRetriable(err) {
		t.Error("unknown symbol must not be retriable")
	}
}

func TestOpenSession_PartialFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req subscriptionRequest
		json.NewDecoder(r.Body).Decode(&req)
		// GBP-USD (Uic 22) is rejected; everything else succeeds.
		if req.Arguments.Uic == 22 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL, "ws://unused"), discardLogger())

	refIDs, err := c.OpenSession(context.Background(), []string{"EUR-USD", "GBP-USD", "USD-JPY"}, "mds-1", "tok")
	if err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	if len(refIDs) != 2 {
		t.Fatalf("expected 2 subscriptions, got %d: %v", len(refIDs), refIDs)
	}
}

func TestOpenSession_TotalFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL, "ws://unused"), discardLogger())

	_, err := c.OpenSession(context.Background(), []string{"EUR-USD", "GBP-USD"}, "mds-1", "tok")
	if !errors.Is(err, domain.ErrNoSubscriptions) {
		t.Fatalf("expected ErrNoSubscriptions, got %v", err)
	}
}
