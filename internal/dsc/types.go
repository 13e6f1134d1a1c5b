package dsc

import (
	"bytes"
	"crypto"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/veraison/go-cose"
)

// Algorithm is a signature algorithm a verification key can be constructed for.
type Algorithm string

const (
	AlgorithmES256 Algorithm = "ES256"
	AlgorithmPS256 Algorithm = "PS256"
)

// candidateAlgorithms is the order in which every signing certificate is
// tried. It also determines the order of keys in the output.
var candidateAlgorithms = []Algorithm{AlgorithmES256, AlgorithmPS256}

// COSE returns the COSE algorithm identifier for a.
func (a Algorithm) COSE() (cose.Algorithm, error) {
	switch a {
	case AlgorithmES256:
		return cose.AlgorithmES256, nil
	case AlgorithmPS256:
		return cose.AlgorithmPS256, nil
	default:
		return 0, fmt.Errorf("unsupported algorithm %q", string(a))
	}
}

// KeyID is the raw key identifier of a trust anchor.
type KeyID []byte

// String returns the standard base64 encoding of the key identifier, which is
// how it appears in the key directory.
func (k KeyID) String() string {
	return base64.StdEncoding.EncodeToString(k)
}

// Equal reports whether k and other hold the same bytes.
func (k KeyID) Equal(other KeyID) bool {
	return bytes.Equal(k, other)
}

// VerificationKey is a public key tagged with the key identifier and the
// algorithm it was constructed for.
type VerificationKey struct {
	KeyID     KeyID
	Algorithm Algorithm
	// Key is either an *ecdsa.PublicKey (ES256) or an *rsa.PublicKey (PS256).
	Key crypto.PublicKey

	verifier cose.Verifier
}

// Verifier returns the COSE verifier backing this key.
func (k VerificationKey) Verifier() cose.Verifier {
	return k.verifier
}

// Verify checks signature over content.
func (k VerificationKey) Verify(content, signature []byte) error {
	if k.verifier == nil {
		return errors.New("verification key was not constructed with NewVerificationKey")
	}
	return k.verifier.Verify(content, signature)
}

// SigningCertificate is a single entry of the key directory.
type SigningCertificate struct {
	// SubjectPK is the base64 DER of the subject public key, without PEM
	// armor.
	SubjectPK string
}

// UnmarshalJSON requires the subjectPk field to be present. Other fields are
// ignored.
func (s *SigningCertificate) UnmarshalJSON(data []byte) error {
	var raw struct {
		SubjectPK *string `json:"subjectPk"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.SubjectPK == nil {
		return errors.New("signing certificate is missing the subjectPk field")
	}
	s.SubjectPK = *raw.SubjectPK
	return nil
}

// PEM wraps the subject public key in PEM armor.
func (s SigningCertificate) PEM() []byte {
	return []byte("-----BEGIN PUBLIC KEY-----\n" + s.SubjectPK + "\n-----END PUBLIC KEY-----")
}

// KeyDirectoryEntry holds the signing certificates published for one key
// identifier.
type KeyDirectoryEntry struct {
	// KeyID is the key identifier as it appears in the document, base64
	// encoded.
	KeyID        string
	Certificates []SigningCertificate
}

// KeyDirectory is the decoded eu_keys object. Entries keep the order in which
// they appear in the JSON document.
type KeyDirectory struct {
	Entries []KeyDirectoryEntry
}

// UnmarshalJSON decodes a JSON object while preserving member order. When a
// member name is repeated, the entry stays at the position of its first
// occurrence and takes the value of the last one.
func (d *KeyDirectory) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected a JSON object for the key directory, got %v", tok)
	}

	entries := []KeyDirectoryEntry{}
	seen := map[string]int{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		kid, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected a key identifier, got %v", tok)
		}

		var certs []SigningCertificate
		if err := dec.Decode(&certs); err != nil {
			return fmt.Errorf("failed to decode signing certificates for key %q: %w", kid, err)
		}
		if certs == nil {
			return fmt.Errorf("signing certificates for key %q are null", kid)
		}

		if i, ok := seen[kid]; ok {
			entries[i].Certificates = certs
			continue
		}
		seen[kid] = len(entries)
		entries = append(entries, KeyDirectoryEntry{KeyID: kid, Certificates: certs})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	d.Entries = entries
	return nil
}
