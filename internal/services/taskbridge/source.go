package taskbridge

import (
	"context"
	"io"
	"net/http"

	"bootbridge/internal/domain"
	"bootbridge/internal/errors"
)

// DefaultEndpoint is the host-local endpoint that reports the current task.
const DefaultEndpoint = "http://127.0.0.1:47321/current_task"

// HTTPSource reads the current task from the host endpoint's x-current-task header.
type HTTPSource struct {
	httpAdapter domain.HTTPAdapter
	endpoint    string
}

// NewHTTPSource creates a new HTTP task source.
func NewHTTPSource(httpAdapter domain.HTTPAdapter, endpoint string) *HTTPSource {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &HTTPSource{
		httpAdapter: httpAdapter,
		endpoint:    endpoint,
	}
}

// CurrentTask performs one GET against the endpoint. A missing header yields
// an empty task; a non-2xx response is an error.
func (s *HTTPSource) CurrentTask(ctx context.Context) (domain.TaskToken, error) {
	resp, err := s.httpAdapter.Do(ctx, domain.HTTPRequest{
		Method:      http.MethodGet,
		URL:         s.endpoint,
		Credentials: domain.CredentialsOmit,
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", errors.NewHTTPError(resp.StatusCode, http.MethodGet, s.endpoint, "unexpected status polling current task")
	}

	return domain.TaskToken(resp.Header.Get(domain.HeaderCurrentTask)), nil
}
