// internal/domain/finance/client.go
package finance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/your-org/retail-backend/internal/config"
)

// ExpenseEntry is the payload posted to the finance collaborator when a
// stock adjustment carries a lost amount.
type ExpenseEntry struct {
	Category    string `json:"category"`
	Amount      int64  `json:"amount"` // In cents
	BranchID    uint   `json:"branch_id"`
	Description string `json:"description"`
	Reference   string `json:"reference"`
	ActorID     uint   `json:"actor_id"`
}

// Poster posts expense entries to the external finance service. Posting is
// best-effort; callers must not roll back ledger writes on failure.
type Poster interface {
	PostExpense(ctx context.Context, entry ExpenseEntry) error
}

// Client is the HTTP implementation of Poster
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a finance client from configuration. Returns nil when no
// base URL is configured, which disables expense posting.
func NewClient(cfg *config.Config) *Client {
	if cfg.Finance.BaseURL == "" {
		return nil
	}

	timeout := cfg.Finance.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Client{
		baseURL: cfg.Finance.BaseURL,
		apiKey:  cfg.Finance.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// PostExpense posts an expense entry to the finance service
func (c *Client) PostExpense(ctx context.Context, entry ExpenseEntry) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode expense entry: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/expenses", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build expense request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post expense: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("finance service returned status %d", resp.StatusCode)
	}

	return nil
}
