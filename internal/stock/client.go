package stock

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ErrUnavailable signals that no remote compute endpoint is configured;
// callers fall back to local per-item processing.
var ErrUnavailable = errors.New("stock compute endpoint unavailable")

// Client calls the remote aggregate inventory-deduction endpoint.
type Client interface {
	ProcessDeduction(ctx context.Context, restaurantID uuid.UUID, orderIDs []uuid.UUID) error
}

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type deductionRequest struct {
	RestaurantID string   `json:"restaurant_id"`
	OrderIDs     []string `json:"order_ids"`
}

func (c *HTTPClient) ProcessDeduction(ctx context.Context, restaurantID uuid.UUID, orderIDs []uuid.UUID) error {
	payload := deductionRequest{RestaurantID: restaurantID.String()}
	for _, id := range orderIDs {
		payload.OrderIDs = append(payload.OrderIDs, id.String())
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("cannot encode deduction request: %w", err)
	}

	url := fmt.Sprintf("%s/inventory/deduct", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("stock compute request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stock compute returned status %d", resp.StatusCode)
	}
	return nil
}

// DisabledClient always reports the endpoint as unavailable so the
// local fallback path runs.
type DisabledClient struct{}

func NewDisabledClient() *DisabledClient {
	return &DisabledClient{}
}

func (c *DisabledClient) ProcessDeduction(ctx context.Context, restaurantID uuid.UUID, orderIDs []uuid.UUID) error {
	return ErrUnavailable
}
