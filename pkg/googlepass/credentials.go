package googlepass

import (
	"bytes"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"
)

// ErrNotConfigured marks a tenant that has not set up Google Wallet. Like
// the Apple-side sentinel this is an expected state, not a failure.
var ErrNotConfigured = errors.New("google wallet is not configured")

// Config is the Google-side configuration for one tenant.
type Config struct {
	IssuerID string

	// ServiceAccountKey is the service-account key blob: JSON, optionally
	// base64-wrapped. Parsed once per call.
	ServiceAccountKey []byte

	// SiteOrigin resolves relative image references to the absolute URLs
	// Google requires, e.g. "https://tickets.example.com".
	SiteOrigin string
}

// ServiceAccount is the parsed signing identity.
type ServiceAccount struct {
	ClientEmail string
	PrivateKey  *rsa.PrivateKey
}

// Status reports which credential fields are present, without I/O.
type Status struct {
	Configured           bool `json:"configured"`
	HasIssuerID          bool `json:"hasIssuerId"`
	HasServiceAccountKey bool `json:"hasServiceAccountKey"`
}

// Configured reports whether the required fields are present.
func (c Config) Configured() bool {
	return c.IssuerID != "" && len(c.ServiceAccountKey) > 0
}

// Report returns the read-only capability status for this config.
func (c Config) Report() Status {
	return Status{
		Configured:           c.Configured(),
		HasIssuerID:          c.IssuerID != "",
		HasServiceAccountKey: len(c.ServiceAccountKey) > 0,
	}
}

// absoluteURL resolves an image reference for Google. Absolute URLs pass
// through; relative paths are joined to the configured site origin, or
// dropped when no origin is known, since Google rejects them.
func (c Config) absoluteURL(ref string) string {
	if ref == "" || strings.HasPrefix(ref, "data:") {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if c.SiteOrigin == "" {
		return ""
	}
	return strings.TrimSuffix(c.SiteOrigin, "/") + "/" + strings.TrimPrefix(ref, "/")
}

// ParseServiceAccount decodes a service-account key blob. The blob is the
// JSON key file Google issues, optionally wrapped in a layer of base64 as
// it often is when carried through environment variables.
func ParseServiceAccount(blob []byte) (*ServiceAccount, error) {
	trimmed := bytes.TrimSpace(blob)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("service account key is empty")
	}
	if trimmed[0] != '{' {
		decoded, err := base64.StdEncoding.DecodeString(string(trimmed))
		if err != nil {
			return nil, fmt.Errorf("service account key is neither JSON nor base64: %w", err)
		}
		trimmed = bytes.TrimSpace(decoded)
	}

	var key struct {
		ClientEmail string `json:"client_email"`
		PrivateKey  string `json:"private_key"`
	}
	if err := json.Unmarshal(trimmed, &key); err != nil {
		return nil, fmt.Errorf("failed to parse service account JSON: %w", err)
	}
	if key.ClientEmail == "" || key.PrivateKey == "" {
		return nil, fmt.Errorf("service account key is missing client_email or private_key")
	}

	block, _ := pem.Decode([]byte(key.PrivateKey))
	if block == nil {
		return nil, fmt.Errorf("service account private_key is not valid PEM")
	}
	var parsed any
	var err error
	switch block.Type {
	case "PRIVATE KEY":
		parsed, err = x509.ParsePKCS8PrivateKey(block.Bytes)
	case "RSA PRIVATE KEY":
		parsed, err = x509.ParsePKCS1PrivateKey(block.Bytes)
	default:
		return nil, fmt.Errorf("unsupported private key PEM type %q", block.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account private key: %w", err)
	}
	rsaKey, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("service account key is not RSA")
	}
	return &ServiceAccount{ClientEmail: key.ClientEmail, PrivateKey: rsaKey}, nil
}
