package google

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/switchyardhq/switchyard/pkg/capability"
)

const defaultRetryAfter = time.Minute

// doJSON performs one bearer-authenticated JSON request against a Google API
// and decodes the response body. Upstream failures map onto the gateway's
// execution error taxonomy.
func doJSON(ctx context.Context, client *http.Client, capabilityID, method, url, bearer string, requestBody any) (map[string]any, error) {
	var reader io.Reader

	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}

		reader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	request.Header.Set("Authorization", "Bearer "+bearer)

	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := client.Do(request)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}

		return nil, &capability.UpstreamError{CapabilityID: capabilityID, Message: err.Error()}
	}

	defer func() { _ = response.Body.Close() }()

	if response.StatusCode == http.StatusTooManyRequests {
		return nil, &capability.RateLimitedError{
			CapabilityID: capabilityID,
			RetryAfter:   retryAfter(response),
		}
	}

	if response.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(response.Body, 512))

		return nil, &capability.UpstreamError{
			CapabilityID: capabilityID,
			Status:       response.StatusCode,
			Message:      string(detail),
		}
	}

	decoded := map[string]any{}
	if err := json.NewDecoder(response.Body).Decode(&decoded); err != nil && !errors.Is(err, io.EOF) {
		return nil, &capability.UpstreamError{CapabilityID: capabilityID, Message: "malformed response body: " + err.Error()}
	}

	return decoded, nil
}

func retryAfter(response *http.Response) time.Duration {
	seconds, err := strconv.Atoi(response.Header.Get("Retry-After"))
	if err != nil || seconds <= 0 {
		return defaultRetryAfter
	}

	return time.Duration(seconds) * time.Second
}
