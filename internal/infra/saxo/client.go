package saxo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"fxstream/internal/domain"
	"fxstream/internal/infra"

	"github.com/gorilla/websocket"
)

const subscriptionPath = "/trade/v1/prices/subscriptions"

// Client talks to the feed's request/response API and opens the streaming
// connection. It never retries; the reconnection loop in Worker owns all
// retry policy.
type Client struct {
	apiBase     string
	wsURL       string
	assetType   string
	refreshRate int
	instruments map[string]int
	httpClient  *http.Client
	dialer      *websocket.Dialer
	logger      *slog.Logger
}

// NewClient creates a feed API client from configuration.
func NewClient(cfg *infra.Config, logger *slog.Logger) *Client {
	timeout := time.Duration(cfg.Feed.SubscribeTimeoutSec) * time.Second

	return &Client{
		apiBase:     cfg.Feed.APIBase,
		wsURL:       cfg.Feed.WSURL,
		assetType:   cfg.Feed.AssetType,
		refreshRate: cfg.Feed.RefreshRateMS,
		instruments: cfg.Feed.Instruments,
		httpClient: &http.Client{
			// A hanging subscription call counts as a transport failure,
			// so it must time out rather than stall the session.
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 30 * time.Second,
			},
		},
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		logger: logger.With("module", "saxo_client"),
	}
}

// CreateSubscription registers one symbol's updates under a reference ID
// within the session context and returns that reference ID.
func (c *Client) CreateSubscription(ctx context.Context, symbol, contextID, token string) (string, error) {
	uic, ok := c.instruments[symbol]
	if !ok {
		return "", &domain.ConfigError{Field: "instruments", Err: fmt.Errorf("%w: %s", domain.ErrUnknownSymbol, symbol)}
	}

	refID := ReferenceIDFor(symbol)
	body := subscriptionRequest{
		Arguments:   subscriptionArguments{AssetType: c.assetType, Uic: uic},
		ContextID:   contextID,
		ReferenceID: refID,
		RefreshRate: c.refreshRate,
	}

	b, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+subscriptionPath, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domain.NewNetworkError("subscribe", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", domain.NewNetworkError("subscribe",
			fmt.Errorf("subscription failed for %s: %d - %s", symbol, resp.StatusCode, detail))
	}
	return refID, nil
}

// OpenSession creates subscriptions for all symbols. One symbol failing is
// logged and skipped; zero successes ends the session with
// ErrNoSubscriptions.
func (c *Client) OpenSession(ctx context.Context, symbols []string, contextID, token string) ([]string, error) {
	refIDs := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		refID, err := c.CreateSubscription(ctx, symbol, contextID, token)
		if err != nil {
			c.logger.Warn("subscription failed",
				slog.String("symbol", symbol), slog.Any("error", err))
			continue
		}
		c.logger.Info("subscribed", slog.String("symbol", symbol), slog.String("ref_id", refID))
		refIDs = append(refIDs, refID)
	}

	if len(refIDs) == 0 {
		return nil, domain.ErrNoSubscriptions
	}
	return refIDs, nil
}

// DialStream opens the single duplex connection all subscriptions of the
// session multiplex over.
func (c *Client) DialStream(ctx context.Context, contextID, token string) (*websocket.Conn, error) {
	url := fmt.Sprintf("%s?contextId=%s", c.wsURL, contextID)
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	conn, _, err := c.dialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, domain.NewNetworkError("dial", err)
	}
	return conn, nil
}
