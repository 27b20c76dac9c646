package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/ipfs/go-cid"
	"github.com/ipfs/kubo/client/rpc"
	"go.uber.org/zap"
)

// ipfsFetcher is the concrete implementation of IPFSFetcher using Kubo HTTP API.
type ipfsFetcher struct {
	api *rpc.HttpApi
}

// newIPFSFetcher creates a new IPFS fetcher with the given HTTP API client.
func newIPFSFetcher(api *rpc.HttpApi) IPFSFetcher {
	return &ipfsFetcher{api: api}
}

// Fetch retrieves content by CID with `ipfs cat`. The hash is normalized via
// formatHash and parsed as a CID. For raw-codec CIDs the content is
// re-hashed with the CID prefix and must match; other codecs wrap the bytes
// in a DAG and are not re-verified.
func (f *ipfsFetcher) Fetch(ctx context.Context, hash string) (content []byte, err error) {
	hash = formatHash(hash)

	zap.L().Debug("Hash Used to retrieve from IPFS", zap.String("hash", hash))

	if f.api == nil {
		return nil, fmt.Errorf("ipfs client not configured")
	}

	cID, err := cid.Parse(hash)
	if err != nil {
		zap.L().Error("error parsing the ipfs hash", zap.String("hash", hash), zap.Error(err))
		return nil, fmt.Errorf("parse cid %q: %w", hash, err)
	}

	resp, err := f.api.Request("cat", cID.String()).Send(ctx)
	if err != nil {
		zap.L().Error("error executing the cat command in ipfs", zap.String("hash", hash), zap.Error(err))
		return nil, err
	}
	defer func(resp *rpc.Response) {
		if cerr := resp.Close(); cerr != nil {
			zap.L().Debug("error closing response in ipfs", zap.String("hash", hash), zap.Error(cerr))
		}
	}(resp)

	if resp.Error != nil {
		zap.L().Error("ipfs cat returned error", zap.String("hash", hash), zap.Error(resp.Error))
		return nil, resp.Error
	}
	content, err = io.ReadAll(resp.Output)
	if err != nil {
		zap.L().Error("error reading ipfs content", zap.String("hash", hash), zap.Error(err))
		return nil, err
	}

	if err := verifyContent(cID, content); err != nil {
		zap.L().Error("IPFS hash verification failed", zap.String("expectedHash", hash), zap.Error(err))
		return nil, err
	}

	return content, nil
}

// verifyContent checks raw-codec CIDs against content.
func verifyContent(expected cid.Cid, content []byte) error {
	if expected.Type() != cid.Raw {
		return nil
	}
	got, err := expected.Prefix().Sum(content)
	if err != nil {
		return fmt.Errorf("hash content: %w", err)
	}
	if !got.Equals(expected) {
		return fmt.Errorf("content hash %s does not match %s", got, expected)
	}
	return nil
}

// NewIPFSClient constructs a Kubo HTTP API client pointed at url. A nil
// httpClient uses a fresh client without timeout.
func NewIPFSClient(url string, httpClient *http.Client) (*rpc.HttpApi, error) {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	client, err := rpc.NewURLApiWithClient(url, httpClient)
	if err != nil {
		zap.L().Error("Connection failed to IPFS", zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("ipfs client %s: %w", url, err)
	}
	return client, nil
}
