package dsc

import (
	"fmt"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
)

// ToJWKSet converts verification keys to a JSON Web Key Set. Each JWK carries
// the base64 key identifier as "kid" and the algorithm as "alg". A key that
// was constructed for both algorithms appears twice.
func ToJWKSet(keys []VerificationKey) (jwk.Set, error) {
	set := jwk.NewSet()

	for _, key := range keys {
		jwKey, err := jwk.Import(key.Key)
		if err != nil {
			return nil, fmt.Errorf("failed to import key %s (%s): %w", key.KeyID, key.Algorithm, err)
		}

		if err := jwKey.Set(jwk.KeyIDKey, key.KeyID.String()); err != nil {
			return nil, fmt.Errorf("failed to set kid: %w", err)
		}

		var alg jwa.SignatureAlgorithm
		switch key.Algorithm {
		case AlgorithmES256:
			alg = jwa.ES256()
		case AlgorithmPS256:
			alg = jwa.PS256()
		default:
			return nil, fmt.Errorf("unsupported algorithm %q", string(key.Algorithm))
		}

		if err := jwKey.Set(jwk.AlgorithmKey, alg); err != nil {
			return nil, fmt.Errorf("failed to set alg: %w", err)
		}

		if err := set.AddKey(jwKey); err != nil {
			return nil, fmt.Errorf("failed to add key %s (%s) to set: %w", key.KeyID, key.Algorithm, err)
		}
	}

	return set, nil
}
