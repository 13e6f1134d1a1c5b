package hcert

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/minvws/base45-go/base45"
	"github.com/veraison/go-cose"

	"github.com/jetstack/dsc-keys/internal/dsc"
)

const (
	// maxMessageSize bounds the inflated COSE message. QR codes carry a few
	// kilobytes at most.
	maxMessageSize = 1024 * 1024

	// claimHealthCertificate is the CWT claim holding the health certificate
	// container; the certificate itself is entry 1 of that container.
	claimHealthCertificate = -260

	zlibMagic      = 0x78
	coseSign1Tag18 = 0xd2
)

// ErrMissingKeyID is returned when neither COSE header carries a key
// identifier.
var ErrMissingKeyID = errors.New("COSE message has no key identifier")

type claims struct {
	Issuer    string             `cbor:"1,keyasint,omitempty"`
	ExpiresAt int64              `cbor:"4,keyasint,omitempty"`
	IssuedAt  int64              `cbor:"6,keyasint,omitempty"`
	HCert     *healthCertificate `cbor:"-260,keyasint"`
}

type healthCertificate struct {
	DGCv1 cbor.RawMessage `cbor:"1,keyasint"`
}

// Certificate is a decoded health certificate.
type Certificate struct {
	KeyID dsc.KeyID
	// Algorithm is the algorithm named in the protected header, zero if
	// absent.
	Algorithm cose.Algorithm

	// Issuer is the ISO 3166 country code of the issuing state.
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time

	DGC DGC

	message *cose.Sign1Message
}

// Expired reports whether the certificate has expired at now.
func (c *Certificate) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Decode parses a QR code payload. The "HC1:" prefix is optional.
func Decode(qr string) (*Certificate, error) {
	if rest, ok := strings.CutPrefix(qr, "HC1"); ok {
		qr = strings.TrimPrefix(rest, ":")
	}

	data, err := base45.Base45Decode([]byte(qr))
	if err != nil {
		return nil, fmt.Errorf("failed to decode base45: %w", err)
	}

	if len(data) > 0 && data[0] == zlibMagic {
		data, err = inflate(data)
		if err != nil {
			return nil, err
		}
	}

	msg, err := decodeSign1(data)
	if err != nil {
		return nil, err
	}

	kid, err := keyID(msg.Headers)
	if err != nil {
		return nil, err
	}

	var c claims
	if err := cbor.Unmarshal(msg.Payload, &c); err != nil {
		return nil, fmt.Errorf("failed to decode CWT claims: %w", err)
	}

	if c.HCert == nil || len(c.HCert.DGCv1) == 0 {
		return nil, fmt.Errorf("CWT has no health certificate claim %d", claimHealthCertificate)
	}

	var dgc DGC
	if err := cbor.Unmarshal(c.HCert.DGCv1, &dgc); err != nil {
		return nil, fmt.Errorf("failed to decode health certificate: %w", err)
	}

	cert := &Certificate{
		KeyID:   kid,
		Issuer:  c.Issuer,
		DGC:     dgc,
		message: msg,
	}

	if alg, err := msg.Headers.Protected.Algorithm(); err == nil {
		cert.Algorithm = alg
	}
	if c.IssuedAt != 0 {
		cert.IssuedAt = time.Unix(c.IssuedAt, 0).UTC()
	}
	if c.ExpiresAt != 0 {
		cert.ExpiresAt = time.Unix(c.ExpiresAt, 0).UTC()
	}

	return cert, nil
}

func inflate(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress payload: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, maxMessageSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress payload: %w", err)
	}
	if len(out) > maxMessageSize {
		return nil, fmt.Errorf("decompressed payload exceeds %d bytes", maxMessageSize)
	}

	return out, nil
}

// decodeSign1 accepts both the tagged and the untagged COSE_Sign1 encoding;
// issuers use both.
func decodeSign1(data []byte) (*cose.Sign1Message, error) {
	if len(data) > 0 && data[0] == coseSign1Tag18 {
		var msg cose.Sign1Message
		if err := msg.UnmarshalCBOR(data); err != nil {
			return nil, fmt.Errorf("failed to decode COSE_Sign1 message: %w", err)
		}
		return &msg, nil
	}

	var untagged cose.UntaggedSign1Message
	if err := untagged.UnmarshalCBOR(data); err != nil {
		return nil, fmt.Errorf("failed to decode COSE_Sign1 message: %w", err)
	}
	msg := cose.Sign1Message(untagged)
	return &msg, nil
}

// keyID reads the kid from the protected header, falling back to the
// unprotected one.
func keyID(headers cose.Headers) (dsc.KeyID, error) {
	for _, header := range []map[any]any{headers.Protected, headers.Unprotected} {
		value, ok := headerValue(header, cose.HeaderLabelKeyID)
		if !ok {
			continue
		}

		kid, ok := value.([]byte)
		if !ok {
			return nil, fmt.Errorf("COSE key identifier is %T, expected a byte string", value)
		}
		return dsc.KeyID(kid), nil
	}

	return nil, ErrMissingKeyID
}

func headerValue(header map[any]any, label int64) (any, bool) {
	for k, v := range header {
		switch k := k.(type) {
		case int64:
			if k == label {
				return v, true
			}
		case uint64:
			if label >= 0 && k == uint64(label) {
				return v, true
			}
		case int:
			if int64(k) == label {
				return v, true
			}
		}
	}
	return nil, false
}
