// Package hcert decodes EU Digital COVID Certificates from their "HC1:" QR
// code representation and verifies them against the keys fetched by package
// dsc.
//
// A QR payload is a base45 string of a (usually zlib compressed) COSE_Sign1
// message whose payload is a CBOR Web Token carrying the health certificate
// under claim -260.
package hcert
