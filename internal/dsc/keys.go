package dsc

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/veraison/go-cose"
)

const (
	// minRSAKeySize is the smallest RSA modulus accepted for PS256, as
	// required by RFC 8230.
	minRSAKeySize = 2048
)

// ErrInvalidKeyFormat is wrapped by every error NewVerificationKey returns
// because the key material does not suit the requested algorithm. The fetcher
// skips these and returns every other error.
var ErrInvalidKeyFormat = errors.New("invalid key format")

// NewVerificationKey parses a PEM encoded PKIX public key and builds a
// verification key for alg.
func NewVerificationKey(pemData []byte, kid KeyID, alg Algorithm) (VerificationKey, error) {
	coseAlg, err := alg.COSE()
	if err != nil {
		return VerificationKey{}, err
	}

	block, _ := pem.Decode(pemData)
	if block == nil {
		return VerificationKey{}, fmt.Errorf("%w: failed to decode PEM block", ErrInvalidKeyFormat)
	}

	if block.Type != "PUBLIC KEY" {
		return VerificationKey{}, fmt.Errorf("%w: unsupported PEM block type: %s (expected PUBLIC KEY)", ErrInvalidKeyFormat, block.Type)
	}

	pubKey, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return VerificationKey{}, fmt.Errorf("%w: failed to parse PKIX public key: %w", ErrInvalidKeyFormat, err)
	}

	switch alg {
	case AlgorithmES256:
		ecKey, ok := pubKey.(*ecdsa.PublicKey)
		if !ok {
			return VerificationKey{}, fmt.Errorf("%w: %s requires an ECDSA public key, got %T", ErrInvalidKeyFormat, alg, pubKey)
		}
		if ecKey.Curve != elliptic.P256() {
			return VerificationKey{}, fmt.Errorf("%w: %s requires a P-256 key, got %s", ErrInvalidKeyFormat, alg, ecKey.Curve.Params().Name)
		}
	case AlgorithmPS256:
		rsaKey, ok := pubKey.(*rsa.PublicKey)
		if !ok {
			return VerificationKey{}, fmt.Errorf("%w: %s requires an RSA public key, got %T", ErrInvalidKeyFormat, alg, pubKey)
		}
		if rsaKey.N.BitLen() < minRSAKeySize {
			return VerificationKey{}, fmt.Errorf("%w: RSA key is %d bits, at least %d are required", ErrInvalidKeyFormat, rsaKey.N.BitLen(), minRSAKeySize)
		}
	}

	verifier, err := cose.NewVerifier(coseAlg, pubKey)
	if err != nil {
		if errors.Is(err, cose.ErrInvalidPubKey) {
			return VerificationKey{}, fmt.Errorf("%w: %w", ErrInvalidKeyFormat, err)
		}
		return VerificationKey{}, err
	}

	return VerificationKey{
		KeyID:     kid,
		Algorithm: alg,
		Key:       pubKey,
		verifier:  verifier,
	}, nil
}
