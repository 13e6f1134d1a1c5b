package hcert

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/jetstack/dsc-keys/internal/dsc"
)

var (
	// ErrNoMatchingKey is returned by Verify when no key carries the
	// certificate's key identifier.
	ErrNoMatchingKey = errors.New("no verification key matches the certificate key identifier")

	// ErrInvalidSignature is returned by Verify when keys with the
	// certificate's key identifier exist but none of them verifies the
	// signature.
	ErrInvalidSignature = errors.New("signature does not verify")
)

// Verify checks the certificate signature against every key with a matching
// key identifier and succeeds as soon as one of them verifies it.
func (c *Certificate) Verify(keys []dsc.VerificationKey) error {
	if c.message == nil {
		return errors.New("certificate was not produced by Decode")
	}

	var result *multierror.Error
	for _, key := range keys {
		if !key.KeyID.Equal(c.KeyID) {
			continue
		}

		verifier := key.Verifier()
		if verifier == nil {
			result = multierror.Append(result, fmt.Errorf("key %s (%s) has no verifier", key.KeyID, key.Algorithm))
			continue
		}

		err := c.message.Verify(nil, verifier)
		if err == nil {
			return nil
		}
		result = multierror.Append(result, fmt.Errorf("key %s (%s): %w", key.KeyID, key.Algorithm, err))
	}

	if result == nil {
		return fmt.Errorf("%w: %s", ErrNoMatchingKey, c.KeyID)
	}

	return fmt.Errorf("%w: %w", ErrInvalidSignature, result)
}
