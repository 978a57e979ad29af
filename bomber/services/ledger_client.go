package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/iceweasel13/solana-bomber/bomber/economy/ledger"
)

// ErrPermanent marks a ledger rejection that will not succeed on retry.
var ErrPermanent = errors.New("ledger rejected request")

//go:generate mockgen -source=ledger_client.go -destination=mock/ledger.go -package=mock

// LedgerClient delivers one outbox request to the external ledger. id is the
// idempotency key: submitting the same id twice must apply it once.
type LedgerClient interface {
	Submit(ctx context.Context, id snowflake.ID, req ledger.Request) error
}

// HTTPLedgerClient posts requests as JSON to the ledger gateway.
type HTTPLedgerClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

func NewHTTPLedgerClient(endpoint, apiKey string, timeout time.Duration) *HTTPLedgerClient {
	return &HTTPLedgerClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type ledgerPayload struct {
	ID string `json:"id"`
	ledger.Request
}

func (c *HTTPLedgerClient) Submit(ctx context.Context, id snowflake.ID, r ledger.Request) error {
	body, err := json.Marshal(ledgerPayload{ID: id.String(), Request: r})
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrPermanent, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/"+string(r.Kind), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPermanent, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", id.String())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ledger request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusConflict:
		// already applied under this key
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("ledger unavailable: status %d: %s", resp.StatusCode, readSnippet(resp.Body))
	default:
		return fmt.Errorf("%w: status %d: %s", ErrPermanent, resp.StatusCode, readSnippet(resp.Body))
	}
}

func readSnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 512))
	return strings.TrimSpace(string(b))
}
