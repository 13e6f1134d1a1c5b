package dsc

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

// Compile-time check that FakeClient implements KeyFetcher
var _ KeyFetcher = (*FakeClient)(nil)

// FakeClient is a fake implementation of the key fetcher for testing.
// It can be configured to return specific keys or errors for testing different scenarios.
type FakeClient struct {
	// Keys are the verification keys that will be returned by FetchVerificationKeys.
	// If nil, a single random ES256 key will be generated on the first call.
	Keys []VerificationKey

	// Err is the error that will be returned by FetchVerificationKeys.
	// If both Keys and Err are set, Err takes precedence.
	Err error

	// FetchCalls tracks how many times FetchVerificationKeys was called
	FetchCalls int
}

// NewFakeClient creates a new fake client for testing.
func NewFakeClient() *FakeClient {
	return &FakeClient{}
}

// NewFakeClientWithKeys creates a new fake client that returns the specified keys.
func NewFakeClientWithKeys(keys ...VerificationKey) *FakeClient {
	return &FakeClient{
		Keys: keys,
	}
}

// NewFakeClientWithError creates a new fake client that returns the specified error.
func NewFakeClientWithError(err error) *FakeClient {
	return &FakeClient{
		Err: err,
	}
}

// FetchVerificationKeys returns the configured keys or error, or generates a
// key if none is configured.
func (f *FakeClient) FetchVerificationKeys(ctx context.Context) ([]VerificationKey, error) {
	f.FetchCalls++

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if f.Err != nil {
		return nil, f.Err
	}

	if f.Keys != nil {
		return f.Keys, nil
	}

	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate test key: %w", err)
	}

	der, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal test key: %w", err)
	}

	key, err := NewVerificationKey(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), KeyID("test-key"), AlgorithmES256)
	if err != nil {
		return nil, err
	}

	// Cache the generated key for subsequent calls
	f.Keys = []VerificationKey{key}

	return f.Keys, nil
}
