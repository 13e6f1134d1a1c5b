package dsc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"k8s.io/client-go/transport"
	"k8s.io/klog/v2"

	"github.com/jetstack/dsc-keys/pkg/logs"
	"github.com/jetstack/dsc-keys/pkg/version"
)

const (
	// DefaultEndpoint serves the public keys trusted by the Dutch CoronaCheck
	// verifier, which include every EU DSC.
	DefaultEndpoint = "https://verifier-api.coronacheck.nl/v4/verifier/public_keys"

	// maxResponseBodySize bounds the key directory response. As of writing the
	// production response is a few megabytes.
	maxResponseBodySize = 32 * 1024 * 1024
)

// KeyFetcher is an interface for fetching verification keys.
type KeyFetcher interface {
	// FetchVerificationKeys retrieves every verification key from the key
	// source.
	FetchVerificationKeys(ctx context.Context) ([]VerificationKey, error)
}

// Compile-time check that Client implements KeyFetcher
var _ KeyFetcher = (*Client)(nil)

// Client fetches the key directory from an HTTP endpoint. It keeps no state
// between calls; every call performs its own request.
type Client struct {
	httpClient *http.Client
	endpoint   string

	// newKey builds a key for one (certificate, algorithm) pair.
	newKey func(pemData []byte, kid KeyID, alg Algorithm) (VerificationKey, error)
}

// NewClient creates a new key directory client.
// If httpClient is nil, a default HTTP client is created whose requests are
// logged according to the verbosity of the logger in the request context.
// If endpoint is empty, DefaultEndpoint is used.
func NewClient(httpClient *http.Client, endpoint string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: transport.NewDebuggingRoundTripper(http.DefaultTransport, transport.DebugByContext),
		}
	}

	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	return &Client{
		httpClient: httpClient,
		endpoint:   endpoint,
		newKey:     NewVerificationKey,
	}
}

// Endpoint returns the URL the client fetches from.
func (c *Client) Endpoint() string {
	return c.endpoint
}

type publicKeysResponse struct {
	Payload *string `json:"payload"`
}

type publicKeysPayload struct {
	EUKeys *KeyDirectory `json:"eu_keys"`
}

// FetchVerificationKeys retrieves the key directory and returns one
// verification key per signing certificate and algorithm that parses.
//
// Keys are ordered by key identifier (in document order), then by certificate,
// then by algorithm (ES256 before PS256). Certificates whose key does not suit
// an algorithm are skipped; any other problem fails the whole call.
func (c *Client) FetchVerificationKeys(ctx context.Context) ([]VerificationKey, error) {
	logger := klog.FromContext(ctx).WithName("dsc")

	directory, err := c.fetchDirectory(ctx)
	if err != nil {
		return nil, err
	}

	keys := []VerificationKey{}
	for _, entry := range directory.Entries {
		kid, err := base64.StdEncoding.DecodeString(entry.KeyID)
		if err != nil {
			return nil, fmt.Errorf("failed to decode key identifier %q: %w", entry.KeyID, err)
		}

		for i, cert := range entry.Certificates {
			pemData := cert.PEM()
			for _, alg := range candidateAlgorithms {
				key, err := c.newKey(pemData, kid, alg)
				if errors.Is(err, ErrInvalidKeyFormat) {
					logger.V(logs.Debug).Info("skipping signing certificate", "kid", entry.KeyID, "index", i, "alg", alg, "reason", err)
					continue
				}
				if err != nil {
					return nil, err
				}

				keys = append(keys, key)
			}
		}
	}

	logger.V(logs.Debug).Info("fetched verification keys", "endpoint", c.endpoint, "kids", len(directory.Entries), "keys", len(keys))

	return keys, nil
}

// FetchVerificationKeysDefault is an alias of FetchVerificationKeys.
func (c *Client) FetchVerificationKeysDefault(ctx context.Context) ([]VerificationKey, error) {
	return c.FetchVerificationKeys(ctx)
}

func (c *Client) fetchDirectory(ctx context.Context) (*KeyDirectory, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	version.SetUserAgent(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch keys from %s: %w", c.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("unexpected status code %d from %s: %s", resp.StatusCode, c.endpoint, string(body))
	}

	var envelope publicKeysResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBodySize)).Decode(&envelope); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("rejecting JSON response from %s as it was too large or was truncated", c.endpoint)
		}
		return nil, fmt.Errorf("failed to parse key directory response: %w", err)
	}

	if envelope.Payload == nil {
		return nil, errors.New("key directory response has no payload field")
	}

	decoded, err := base64.StdEncoding.DecodeString(*envelope.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode key directory payload: %w", err)
	}

	var payload publicKeysPayload
	if err := json.Unmarshal(decoded, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse key directory payload: %w", err)
	}

	if payload.EUKeys == nil {
		return nil, errors.New("key directory payload has no eu_keys field")
	}

	return payload.EUKeys, nil
}

// FetchVerificationKeys fetches the verification keys from DefaultEndpoint.
func FetchVerificationKeys(ctx context.Context) ([]VerificationKey, error) {
	return NewClient(nil, DefaultEndpoint).FetchVerificationKeys(ctx)
}

// FetchVerificationKeysDefault fetches the verification keys from the default
// key source. It currently behaves exactly like FetchVerificationKeys.
func FetchVerificationKeysDefault(ctx context.Context) ([]VerificationKey, error) {
	return FetchVerificationKeys(ctx)
}
