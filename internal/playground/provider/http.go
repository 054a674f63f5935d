package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxErrorBodyBytes caps how much of an upstream error body is kept.
const maxErrorBodyBytes = 500

// PostJSON sends a JSON payload and decodes a JSON response. Any transport
// failure, non-2xx status, or undecodable body becomes a *Error carrying the
// upstream status code when one was received.
func PostJSON(ctx context.Context, client *http.Client, providerName, url string, payload interface{}, headers map[string]string) (map[string]interface{}, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &Error{Provider: providerName, Message: "encode request payload", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Provider: providerName, Message: "create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{Provider: providerName, Message: "connection failed: " + err.Error(), Err: err}
	}
	defer resp.Body.Close()
	LogResponse(providerName, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		message := "HTTP " + resp.Status
		if len(detail) > 0 {
			message += ": " + strings.TrimSpace(string(detail))
		}
		return nil, &Error{Provider: providerName, Message: message, StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Provider: providerName, Message: "read response body", Err: err}
	}
	if len(raw) == 0 {
		return map[string]interface{}{}, nil
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &Error{Provider: providerName, Message: "provider returned invalid JSON", Err: err}
	}
	return decoded, nil
}

// DownloadBinary fetches image bytes from a provider-returned URL.
func DownloadBinary(ctx context.Context, client *http.Client, providerName, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", &Error{Provider: providerName, Message: "create download request", Err: err}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", &Error{Provider: providerName, Message: "could not download generated image: " + err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", &Error{
			Provider:   providerName,
			Message:    "could not download generated image: HTTP " + resp.Status,
			StatusCode: resp.StatusCode,
		}
	}

	imageBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &Error{Provider: providerName, Message: "read downloaded image", Err: err}
	}

	mimeType := strings.TrimSpace(strings.Split(resp.Header.Get("Content-Type"), ";")[0])
	if mimeType == "" {
		mimeType = "image/png"
	}
	return imageBytes, mimeType, nil
}
