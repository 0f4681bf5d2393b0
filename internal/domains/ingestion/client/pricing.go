package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PricingClient updates course entitlement prices through the internal
// pricing endpoint.
type PricingClient interface {
	UpdateEntitlementPrice(ctx context.Context, courseUUID uuid.UUID, mode string, price decimal.Decimal) error
}

type pricingClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewPricingClient(baseURL, token string) PricingClient {
	return &pricingClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *pricingClient) UpdateEntitlementPrice(ctx context.Context, courseUUID uuid.UUID, mode string, price decimal.Decimal) error {
	payload := map[string]string{
		"mode":  mode,
		"price": price.StringFixed(2),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode entitlement payload: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/courses/%s/entitlements/", c.baseURL, courseUUID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build entitlement request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "JWT "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("entitlement request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("pricing service responded with status %d", resp.StatusCode)
	}
	return nil
}
