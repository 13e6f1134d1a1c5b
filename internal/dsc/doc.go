// Package dsc fetches the Document Signing Certificate (DSC) public keys used
// to verify EU Digital COVID Certificates.
//
// The key directory is served as a JSON document whose "payload" field holds
// base64 encoded JSON. Inside, "eu_keys" maps base64 key identifiers to the
// signing certificates published for them. Each certificate's subjectPk is
// tried as an ES256 key and as a PS256 key, and every combination that parses
// becomes a VerificationKey.
//
// Signature verification is delegated to github.com/veraison/go-cose.
package dsc
