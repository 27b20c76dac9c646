package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/ipfs/kubo/client/rpc"
	"go.uber.org/zap"
)

const (
	// IpfsPrefix is the URI scheme prefix recognized for IPFS content.
	IpfsPrefix = "ipfs://"
	// FilecoinPrefix is the URI scheme prefix recognized for Filecoin/Lighthouse content.
	FilecoinPrefix = "filecoin://"
	// HTTPPrefix and HTTPSPrefix mark documents served by a plain web server.
	HTTPPrefix  = "http://"
	HTTPSPrefix = "https://"
)

// Reader fetches a document by URI.
type Reader interface {
	ReadFile(ctx context.Context, uri string) ([]byte, error)
}

// LighthouseFetcher fetches content from a Lighthouse gateway.
type LighthouseFetcher interface {
	Fetch(ctx context.Context, endpoint, cid string) ([]byte, error)
}

// IPFSFetcher fetches content addressed by CID from IPFS.
type IPFSFetcher interface {
	Fetch(ctx context.Context, hash string) ([]byte, error)
}

// HTTPFetcher fetches content from an http(s) URL.
type HTTPFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Client aggregates the configured storage backends.
type Client struct {
	// HttpApi is the Kubo HTTP API client used for IPFS reads.
	*rpc.HttpApi
	// LighthouseURL is the base URL of the Lighthouse HTTP gateway.
	LighthouseURL string

	lighthouseFetcher LighthouseFetcher
	ipfsFetcher       IPFSFetcher
	httpFetcher       HTTPFetcher
}

// NewStorage constructs a storage client using the provided IPFS API
// endpoint and Lighthouse gateway URL. timeout bounds each HTTP request made
// by the client; zero means no client-side limit beyond the caller's context.
func NewStorage(ipfsURL, lighthouseURL string, timeout time.Duration) (*Client, error) {
	httpClient := &http.Client{Timeout: timeout}

	api, err := NewIPFSClient(ipfsURL, httpClient)
	if err != nil {
		return nil, err
	}

	return &Client{
		HttpApi:           api,
		LighthouseURL:     lighthouseURL,
		lighthouseFetcher: lighthouseFetcher{client: httpClient},
		ipfsFetcher:       newIPFSFetcher(api),
		httpFetcher:       httpFetcher{client: httpClient},
	}, nil
}

// IsResolvable reports whether uri uses a scheme ReadFile knows how to fetch.
func IsResolvable(uri string) bool {
	for _, p := range []string{IpfsPrefix, FilecoinPrefix, HTTPPrefix, HTTPSPrefix} {
		if strings.HasPrefix(uri, p) {
			return true
		}
	}
	return false
}

// ReadFile fetches content identified by uri:
//   - "filecoin://<cid>" is retrieved via the Lighthouse gateway,
//   - "http://" and "https://" URLs are fetched as-is,
//   - anything else is treated as an IPFS CID (with or without "ipfs://").
func (s *Client) ReadFile(ctx context.Context, uri string) ([]byte, error) {
	switch {
	case strings.HasPrefix(uri, FilecoinPrefix):
		if s.lighthouseFetcher == nil {
			s.lighthouseFetcher = lighthouseFetcher{client: http.DefaultClient}
		}
		return s.lighthouseFetcher.Fetch(ctx, s.LighthouseURL, formatHash(uri))
	case strings.HasPrefix(uri, HTTPPrefix), strings.HasPrefix(uri, HTTPSPrefix):
		if s.httpFetcher == nil {
			s.httpFetcher = httpFetcher{client: http.DefaultClient}
		}
		return s.httpFetcher.Fetch(ctx, uri)
	default:
		if s.ipfsFetcher == nil {
			s.ipfsFetcher = newIPFSFetcher(s.HttpApi)
		}
		return s.ipfsFetcher.Fetch(ctx, formatHash(uri))
	}
}

// ReadJSON fetches uri with ReadFile and decodes it into v.
func (s *Client) ReadJSON(ctx context.Context, uri string, v interface{}) error {
	raw, err := s.ReadFile(ctx, uri)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		zap.L().Error("failed to decode document", zap.String("uri", uri), zap.Error(err))
		return fmt.Errorf("decode %s: %w", uri, err)
	}
	return nil
}

var specialCharacters = regexp.MustCompile("[^a-zA-Z0-9=]")

// formatHash removes known URI scheme prefixes and any non-alphanumeric
// characters (except '=') from the supplied hash/URI to produce a clean CID
// string suitable for the underlying backends.
func formatHash(hash string) string {
	hash = strings.Replace(hash, IpfsPrefix, "", -1)
	hash = strings.Replace(hash, FilecoinPrefix, "", -1)
	hash = removeSpecialCharacters(hash)
	return hash
}

// removeSpecialCharacters strips all characters except ASCII letters, digits,
// and '=' from pString. Used to sanitize incoming CIDs/IDs.
func removeSpecialCharacters(pString string) string {
	return specialCharacters.ReplaceAllString(pString, "")
}
