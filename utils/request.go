package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	DefaultRetryTimes    = 5
	DefaultRetryInterval = 100 * time.Millisecond
	DefaultTimeout       = 5 * time.Second
)

// HTTPStatusError is returned for any non-200 response so callers can
// branch on the status code (e.g. endpoint fallback on 401 vs 404).
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("request returned status %d: %s", e.StatusCode, e.Body)
}

func GetUrlResponse(url string, params map[string]string, headers map[string]string, result any, logger *slog.Logger) error {
	return GetUrlResponseWithRetry(url, params, headers, result, 1, logger)
}

func GetUrlResponseWithRetry(url string, params map[string]string, headers map[string]string, result any, retry int, logger *slog.Logger) error {
	reqUrl := url
	if len(params) > 0 {
		q := "?"
		for k, v := range params {
			q += fmt.Sprintf("%s=%s&", k, v)
		}
		reqUrl += q[:len(q)-1] // Remove trailing '&'
	}

	var lastErr error
	for i := 0; i < retry; i++ {
		lastErr = doGet(reqUrl, headers, result)
		if lastErr == nil {
			return nil
		}
		if i+1 < retry {
			logger.Warn("GET request failed, retrying...", "url", reqUrl, "attempt", i+1, "err", lastErr)
			time.Sleep(DefaultRetryInterval)
		}
	}
	if retry > 1 {
		return fmt.Errorf("GET request failed after %d attempts: %w", retry, lastErr)
	}
	return lastErr
}

func PostUrlResponse(url string, body any, headers map[string]string, result any, logger *slog.Logger) error {
	return PostUrlResponseWithRetry(url, body, headers, result, 1, logger)
}

func PostUrlResponseWithRetry(url string, body any, headers map[string]string, result any, retry int, logger *slog.Logger) error {
	var lastErr error
	for i := 0; i < retry; i++ {
		lastErr = doPost(url, body, headers, result)
		if lastErr == nil {
			return nil
		}
		if i+1 < retry {
			logger.Warn("POST request failed, retrying...", "url", url, "attempt", i+1, "err", lastErr)
			time.Sleep(DefaultRetryInterval)
		}
	}
	if retry > 1 {
		return fmt.Errorf("POST request failed after %d attempts: %w", retry, lastErr)
	}
	return lastErr
}

func doGet(url string, headers map[string]string, result any) error {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create GET request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return &HTTPStatusError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(result); err != nil {
		return fmt.Errorf("failed to stream and unmarshal GET response: %w", err)
	}

	return nil
}

func doPost(url string, body any, headers map[string]string, result any) error {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal POST body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create POST request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("POST request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyResp, _ := io.ReadAll(resp.Body)
		return &HTTPStatusError{StatusCode: resp.StatusCode, Body: string(bodyResp)}
	}

	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(result); err != nil {
		return fmt.Errorf("failed to stream and unmarshal POST response: %w", err)
	}

	return nil
}
