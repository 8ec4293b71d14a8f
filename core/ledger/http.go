package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// HTTPClient is the production ledger client. Queries go over HTTP with
// strict transport timeouts; subscriptions go over a websocket feed.
type HTTPClient struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// NewHTTPClient creates a ledger client from configuration.
func NewHTTPClient(cfg Config, logger *zap.Logger) *HTTPClient {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 10
	}
	timeoutDuration := time.Duration(timeout) * time.Second

	// Strict timeouts at every stage so a stalled ledger node can never
	// hang a sync cycle beyond its budget.
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeoutDuration,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeoutDuration,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: timeoutDuration,
	}

	return &HTTPClient{
		cfg: cfg,
		http: &http.Client{
			Transport: transport,
			Timeout:   timeoutDuration,
		},
		logger: logger,
	}
}

// AssetSupply returns the on-ledger total supply and decimals of the asset.
func (c *HTTPClient) AssetSupply(ctx context.Context, ledgerID uint64) (Supply, error) {
	var resp struct {
		Asset struct {
			Index  uint64 `json:"index"`
			Params struct {
				Total    uint64 `json:"total"`
				Decimals uint32 `json:"decimals"`
			} `json:"params"`
		} `json:"asset"`
	}

	url := fmt.Sprintf("%s/v2/assets/%d", c.cfg.Endpoint, ledgerID)
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return Supply{}, fmt.Errorf("asset supply query for %d: %w", ledgerID, err)
	}
	return Supply{Total: resp.Asset.Params.Total, Decimals: resp.Asset.Params.Decimals}, nil
}

// AccountBalance returns the holder's balance of the asset. An account that
// never opted in to the asset has balance zero.
func (c *HTTPClient) AccountBalance(ctx context.Context, holder string, ledgerID uint64) (uint64, error) {
	var resp struct {
		Balance uint64 `json:"balance"`
	}

	url := fmt.Sprintf("%s/v2/accounts/%s/assets/%d", c.cfg.Endpoint, holder, ledgerID)
	err := c.getJSON(ctx, url, &resp)
	if err != nil {
		var status *statusError
		if errors.As(err, &status) && status.code == http.StatusNotFound {
			// Not opted in.
			return 0, nil
		}
		return 0, fmt.Errorf("balance query for %s on %d: %w", holder, ledgerID, err)
	}
	return resp.Balance, nil
}

// Subscribe opens the websocket feed filtered to the given asset ids.
func (c *HTTPClient) Subscribe(ctx context.Context, ledgerIDs []uint64) (Stream, error) {
	return openStream(ctx, c.cfg, ledgerIDs, c.logger)
}

func (c *HTTPClient) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if c.cfg.Token != "" {
		req.Header.Set("X-API-Token", c.cfg.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &statusError{code: resp.StatusCode, url: url}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// statusError is a non-200 ledger response.
type statusError struct {
	code int
	url  string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("ledger returned status %d for %s", e.code, e.url)
}
