package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// Healthcheck reports whether a provider's serving proxy answers. It GETs
// "<endpoint>/models" (the OpenAI-compatible model listing) and returns the
// decoded JSON payload.
func (c *Core) Healthcheck(ctx context.Context, provider string) (map[string]any, error) {
	meta, err := c.GetServiceMetadata(ctx, provider)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, c.timeouts.HTTPRequest)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, meta.Endpoint+"/models", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("heartbeat failed: %w", err)
	}
	defer func(Body io.ReadCloser) {
		err = Body.Close()
		if err != nil {
			zap.L().Error("failed to close heartbeat", zap.Error(err))
		}
	}(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("heartbeat failed with: %v", resp.StatusCode)
	}
	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode heartbeat response: %w", err)
	}

	zap.L().Debug("provider healthy", zap.String("provider", provider), zap.String("proto", resp.Proto))
	return result, nil
}
