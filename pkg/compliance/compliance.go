// Package compliance wraps the external compliance predicate consulted before
// a bridge request may be created. The coordinator treats it as a yes/no gate
// and assumes the collaborator is correct.
package compliance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Checker answers whether an account is cleared to bridge assets.
type Checker interface {
	IsCompliant(ctx context.Context, account string) (bool, error)
}

// AllowAll is the checker used when compliance gating is disabled.
type AllowAll struct{}

// IsCompliant always returns true.
func (AllowAll) IsCompliant(context.Context, string) (bool, error) {
	return true, nil
}

// HTTPChecker queries a remote compliance service.
type HTTPChecker struct {
	url    string
	client *http.Client
}

// NewHTTPChecker creates a checker backed by the compliance service at url.
func NewHTTPChecker(url string, timeout time.Duration) *HTTPChecker {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPChecker{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type complianceRequest struct {
	Account string `json:"account"`
}

type complianceResponse struct {
	Compliant bool `json:"compliant"`
}

// IsCompliant posts the account to the compliance service and returns its
// verdict. Transport failures are returned as errors, not as denials, so the
// caller can distinguish "no" from "unknown".
func (c *HTTPChecker) IsCompliant(ctx context.Context, account string) (bool, error) {
	body, err := json.Marshal(complianceRequest{Account: account})
	if err != nil {
		return false, fmt.Errorf("failed to encode compliance request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("failed to build compliance request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("compliance service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("compliance service returned status %d", resp.StatusCode)
	}

	var verdict complianceResponse
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return false, fmt.Errorf("failed to decode compliance response: %w", err)
	}

	return verdict.Compliant, nil
}
