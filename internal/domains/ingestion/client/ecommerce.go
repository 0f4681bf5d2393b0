package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// EcommerceClient triggers publication of a course's products in the
// e-commerce system.
type EcommerceClient interface {
	PublishCourse(ctx context.Context, courseUUID uuid.UUID, courseKey string) error
}

type ecommerceClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewEcommerceClient(baseURL, token string) EcommerceClient {
	return &ecommerceClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *ecommerceClient) PublishCourse(ctx context.Context, courseUUID uuid.UUID, courseKey string) error {
	payload := map[string]string{
		"uuid": courseUUID.String(),
		"key":  courseKey,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode publication payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v2/publication/", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build publication request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "JWT "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("publication request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("e-commerce responded with status %d", resp.StatusCode)
	}
	return nil
}
