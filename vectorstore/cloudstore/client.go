package cloudstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// call sends a request to the managed index API, attaching the API
// key header.
func (s *Store) call(ctx context.Context, path string, body any, out any) error {
	return s.send(ctx, s.config.Endpoint+path, body, out, true)
}

// post sends a request without the API key (relay endpoints carry
// their own auth).
func (s *Store) post(ctx context.Context, url string, body any, out any) error {
	return s.send(ctx, url, body, out, false)
}

func (s *Store) send(ctx context.Context, url string, body, out any, withKey bool) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if withKey && s.config.APIKey != "" {
		req.Header.Set("Api-Key", s.config.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("cloud store request %s: status %d: %s", url, resp.StatusCode, string(detail))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
