package services

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// UpstreamService relays requests to the fixed external API the
// storefront cannot call directly from the browser.
type UpstreamService struct {
	baseURL string
	client  *http.Client
}

// NewUpstreamService creates an UpstreamService for the given origin.
func NewUpstreamService(baseURL string) *UpstreamService {
	return &UpstreamService{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// UpstreamResponse carries the relayed status and raw body.
type UpstreamResponse struct {
	Status      int
	Body        []byte
	ContentType string
}

// Do forwards method + path suffix + body to the upstream origin. Only
// Content-Type travels with the request; everything else is dropped.
func (s *UpstreamService) Do(method, path string, query url.Values, body []byte, contentType string) (*UpstreamResponse, error) {
	if s.baseURL == "" {
		return nil, errors.New("upstream API URL is not configured")
	}

	target := s.baseURL
	if path != "" {
		target += "/" + strings.TrimLeft(path, "/")
	}
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if len(body) > 0 && method != http.MethodGet {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, target, reader)
	if err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = "application/json"
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &UpstreamResponse{
		Status:      resp.StatusCode,
		Body:        respBody,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}
