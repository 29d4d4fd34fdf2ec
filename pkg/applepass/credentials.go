package applepass

import (
	"bytes"
	"context"
	"crypto"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	gop12 "software.sslmate.com/src/go-pkcs12"
)

// ErrNotConfigured marks the expected steady state of a tenant that has not
// set up Apple Wallet: required credential material is absent. It is a
// configuration state, not a failure, and callers must not surface it as
// one.
var ErrNotConfigured = errors.New("apple wallet is not configured")

// wwdrCertURL is the public location of Apple's WWDR G4 intermediate
// certificate (DER), fetched when no override is configured.
const wwdrCertURL = "https://www.apple.com/certificateauthority/AppleWWDRCAG4.cer"

// Config is the Apple-side credential configuration for one tenant.
type Config struct {
	// CertificateData is the signer bundle: either a PKCS#12 container or
	// PEM text holding the certificate and private key.
	CertificateData     []byte
	CertificatePassword string

	// CertificateFormat forces bundle decoding: "p12" or "pem". Empty means
	// sniff: PEM when the data starts with a PEM preamble, PKCS#12
	// otherwise. A failed PKCS#12 parse is an error, never a silent
	// fallback to PEM.
	CertificateFormat string

	// IntermediatePEM overrides the fetched WWDR certificate. PEM text, or
	// base64-wrapped DER.
	IntermediatePEM string

	PassTypeID string
	TeamID     string
}

// Credentials is the loaded signing material.
type Credentials struct {
	Certificate  *x509.Certificate
	PrivateKey   crypto.PrivateKey
	Intermediate *x509.Certificate
	PassTypeID   string
	TeamID       string
}

// Status reports which credential fields are present, without doing any
// I/O or parsing.
type Status struct {
	Configured     bool `json:"configured"`
	HasCertificate bool `json:"hasCertificate"`
	HasPassTypeID  bool `json:"hasPassTypeId"`
	HasTeamID      bool `json:"hasTeamId"`
}

// Configured reports whether every required field is present. Certificate
// validity is not checked here; that happens on load.
func (c Config) Configured() bool {
	return len(c.CertificateData) > 0 && c.PassTypeID != "" && c.TeamID != ""
}

// Report returns the read-only capability status for this config.
func (c Config) Report() Status {
	return Status{
		Configured:     c.Configured(),
		HasCertificate: len(c.CertificateData) > 0,
		HasPassTypeID:  c.PassTypeID != "",
		HasTeamID:      c.TeamID != "",
	}
}

// LoadCredentials resolves a Config into usable signing material.
// Missing configuration returns ErrNotConfigured. Credential material that
// is present but unparseable, and intermediate-fetch failures, wrap
// ErrNotConfigured too: in both cases the Apple path is unavailable for
// this call and ticket issuance must continue without it.
func LoadCredentials(ctx context.Context, cfg Config) (*Credentials, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}

	cert, key, err := decodeSignerBundle(cfg)
	if err != nil {
		log.Error().Err(err).Msg("apple signer bundle is present but unusable, check the certificate configuration")
		return nil, fmt.Errorf("decoding signer bundle: %v: %w", err, ErrNotConfigured)
	}

	intermediate, err := resolveIntermediate(ctx, cfg.IntermediatePEM)
	if err != nil {
		log.Warn().Err(err).Msg("could not resolve the WWDR intermediate certificate")
		return nil, fmt.Errorf("resolving intermediate certificate: %v: %w", err, ErrNotConfigured)
	}

	return &Credentials{
		Certificate:  cert,
		PrivateKey:   key,
		Intermediate: intermediate,
		PassTypeID:   cfg.PassTypeID,
		TeamID:       cfg.TeamID,
	}, nil
}

func decodeSignerBundle(cfg Config) (*x509.Certificate, crypto.PrivateKey, error) {
	format := cfg.CertificateFormat
	if format == "" {
		if bytes.HasPrefix(bytes.TrimSpace(cfg.CertificateData), []byte("-----BEGIN")) {
			format = "pem"
		} else {
			format = "p12"
		}
	}
	switch format {
	case "p12":
		key, cert, _, err := gop12.DecodeChain(cfg.CertificateData, cfg.CertificatePassword)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decode PKCS#12 bundle: %w", err)
		}
		return cert, key, nil
	case "pem":
		return decodePEMBundle(cfg.CertificateData)
	default:
		return nil, nil, fmt.Errorf("unknown certificate format %q", format)
	}
}

// decodePEMBundle walks all PEM blocks in the bundle, taking the first
// certificate and the first private key it finds.
func decodePEMBundle(data []byte) (*x509.Certificate, crypto.PrivateKey, error) {
	var cert *x509.Certificate
	var key crypto.PrivateKey

	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		switch block.Type {
		case "CERTIFICATE":
			if cert != nil {
				continue
			}
			parsed, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to parse certificate: %w", err)
			}
			cert = parsed
		case "RSA PRIVATE KEY":
			parsed, err := x509.ParsePKCS1PrivateKey(block.Bytes)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to parse RSA private key: %w", err)
			}
			key = parsed
		case "PRIVATE KEY":
			parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to parse private key: %w", err)
			}
			key = parsed
		case "EC PRIVATE KEY":
			parsed, err := x509.ParseECPrivateKey(block.Bytes)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to parse EC private key: %w", err)
			}
			key = parsed
		}
	}
	if cert == nil {
		return nil, nil, fmt.Errorf("no certificate found in PEM bundle")
	}
	if key == nil {
		return nil, nil, fmt.Errorf("no private key found in PEM bundle")
	}
	return cert, key, nil
}

// intermediateCache holds the fetched WWDR certificate for the process
// lifetime. First successful fetch wins; a racing duplicate fetch is wasted
// work, not a correctness problem, but the mutex keeps it tidy.
type intermediateCache struct {
	mu   sync.Mutex
	cert *x509.Certificate
}

var wwdrCache intermediateCache

var certClient = &http.Client{Timeout: 10 * time.Second}

// resolveIntermediate returns the WWDR intermediate: a configured override
// wins, then the in-process cache, then a fetch from Apple which populates
// the cache.
func resolveIntermediate(ctx context.Context, override string) (*x509.Certificate, error) {
	if override != "" {
		return decodeIntermediate(override)
	}

	wwdrCache.mu.Lock()
	defer wwdrCache.mu.Unlock()
	if wwdrCache.cert != nil {
		return wwdrCache.cert, nil
	}

	cert, err := fetchIntermediate(ctx)
	if err != nil {
		// Not cached: the next call retries.
		return nil, err
	}
	wwdrCache.cert = cert
	return cert, nil
}

// decodeIntermediate accepts PEM text or base64-wrapped DER.
func decodeIntermediate(value string) (*x509.Certificate, error) {
	if strings.Contains(value, "-----BEGIN") {
		block, _ := pem.Decode([]byte(value))
		if block == nil {
			return nil, fmt.Errorf("intermediate override is not valid PEM")
		}
		return x509.ParseCertificate(block.Bytes)
	}
	der, err := base64.StdEncoding.DecodeString(strings.TrimSpace(value))
	if err != nil {
		return nil, fmt.Errorf("intermediate override is neither PEM nor base64 DER: %w", err)
	}
	return x509.ParseCertificate(der)
}

func fetchIntermediate(ctx context.Context) (*x509.Certificate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wwdrCertURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := certClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch WWDR certificate: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching WWDR certificate", resp.StatusCode)
	}
	der, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	// Apple serves DER; keep the PEM round-trip so a cached value and a
	// configured override go through the same parser.
	pemText := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	return decodeIntermediate(string(pemText))
}
