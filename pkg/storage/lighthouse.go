package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// lighthouseFetcher is the production implementation of LighthouseFetcher.
type lighthouseFetcher struct {
	client *http.Client
}

func (f lighthouseFetcher) Fetch(ctx context.Context, endpoint, cid string) ([]byte, error) {
	zap.L().Debug("Getting lighthouse file", zap.String("cid", cid))
	return getFile(ctx, f.client, endpoint+cid)
}

// httpFetcher is the production implementation of HTTPFetcher.
type httpFetcher struct {
	client *http.Client
}

func (f httpFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	zap.L().Debug("Getting http file", zap.String("url", url))
	return getFile(ctx, f.client, url)
}

// GetLighthouseFileCtx fetches a blob from a Lighthouse HTTP gateway.
//
// It performs an HTTP GET to {lighthouseEndpoint}{cID} bounded by timeout
// (when positive) and returns the response body. Non-2xx responses are
// errors.
//
// Parameters:
//   - lighthouseEndpoint: Base URL of the Lighthouse gateway (e.g.,
//     "https://gateway.lighthouse.storage/ipfs/"). The CID is concatenated
//     directly to this string; ensure the trailing slash if required by the gateway.
//   - cID: The content identifier to fetch.
func GetLighthouseFileCtx(ctx context.Context, lighthouseEndpoint, cID string, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return lighthouseFetcher{client: http.DefaultClient}.Fetch(ctx, lighthouseEndpoint, cID)
}

func getFile(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			zap.L().Debug("failed to close response body", zap.Error(cerr))
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("GET %s: unexpected status %d", url, resp.StatusCode)
	}
	return body, nil
}
