package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	coursemodel "catalog-backend/internal/domains/course/model"
)

// StudioClient mirrors the authoring studio's course-run API. Every call is
// independently failable; the loader records failures without rolling back
// catalog writes.
type StudioClient interface {
	CreateCourseRun(ctx context.Context, run *coursemodel.CourseRun, title, user string) error
	UpdateCourseRun(ctx context.Context, run *coursemodel.CourseRun, title, user string) error
	RerunCourseRun(ctx context.Context, oldRunKey, newRunKey, user string) error
	PushCourseRunImage(ctx context.Context, runKey string, image []byte) error
}

type studioClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewStudioClient builds a StudioClient against the studio root URL.
func NewStudioClient(baseURL, token string) StudioClient {
	return &studioClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type studioRunPayload struct {
	Key    string     `json:"key"`
	Title  string     `json:"title"`
	Start  *time.Time `json:"start,omitempty"`
	End    *time.Time `json:"end,omitempty"`
	Pacing string     `json:"pacing_type"`
	Team   []string   `json:"team,omitempty"`
	User   string     `json:"user"`
}

func (c *studioClient) CreateCourseRun(ctx context.Context, run *coursemodel.CourseRun, title, user string) error {
	payload := studioRunPayload{
		Key:    run.Key,
		Title:  title,
		Start:  run.Start,
		End:    run.End,
		Pacing: run.Pacing,
		Team:   run.Staff,
		User:   user,
	}
	return c.do(ctx, http.MethodPost, "/api/v1/course_runs/", payload)
}

func (c *studioClient) UpdateCourseRun(ctx context.Context, run *coursemodel.CourseRun, title, user string) error {
	payload := studioRunPayload{
		Key:    run.Key,
		Title:  title,
		Start:  run.Start,
		End:    run.End,
		Pacing: run.Pacing,
		Team:   run.Staff,
		User:   user,
	}
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/v1/course_runs/%s/", run.Key), payload)
}

func (c *studioClient) RerunCourseRun(ctx context.Context, oldRunKey, newRunKey, user string) error {
	payload := map[string]string{
		"run":  newRunKey,
		"user": user,
	}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/course_runs/%s/rerun/", oldRunKey), payload)
}

func (c *studioClient) PushCourseRunImage(ctx context.Context, runKey string, image []byte) error {
	payload := map[string]string{
		"card_image": base64.StdEncoding.EncodeToString(image),
	}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/course_runs/%s/images/", runKey), payload)
}

func (c *studioClient) do(ctx context.Context, method, path string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode studio payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build studio request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "JWT "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("studio request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		log.Error().Str("method", method).Str("path", path).Int("status", resp.StatusCode).
			Msg("studio returned an error status")
		return fmt.Errorf("studio responded with status %d", resp.StatusCode)
	}
	return nil
}
