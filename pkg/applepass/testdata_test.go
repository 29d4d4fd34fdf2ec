package applepass

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"testing"
	"time"
)

// newTestCert issues a throwaway self-signed RSA certificate.
func newTestCert(t *testing.T, cn string) (*x509.Certificate, *rsa.PrivateKey) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	template := &x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject:      pkix.Name{CommonName: cn},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("creating certificate: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("parsing certificate: %v", err)
	}
	return cert, key
}

// testCredentials builds loaded signing material without touching the
// network: a signer pair plus a second self-signed cert standing in for the
// WWDR intermediate.
func testCredentials(t *testing.T) *Credentials {
	t.Helper()

	cert, key := newTestCert(t, "Pass Signer Test")
	intermediate, _ := newTestCert(t, "Intermediate Test")
	return &Credentials{
		Certificate:  cert,
		PrivateKey:   key,
		Intermediate: intermediate,
		PassTypeID:   "pass.com.example.tickets",
		TeamID:       "TEAM123456",
	}
}

// pemBundle encodes a cert and key as the PEM form of the signer bundle.
func pemBundle(t *testing.T, cert *x509.Certificate, key *rsa.PrivateKey) []byte {
	t.Helper()

	var out []byte
	out = append(out, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw})...)
	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("marshalling key: %v", err)
	}
	out = append(out, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER})...)
	return out
}

// certPEM encodes just the certificate.
func certPEM(cert *x509.Certificate) string {
	return string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw}))
}
