package applepass

import (
	"fmt"

	"go.mozilla.org/pkcs7"
)

// SignManifest produces the detached PKCS#7/CMS signature over the manifest
// bytes. The signature embeds the signer certificate and the WWDR
// intermediate, uses SHA-256 as the signer digest, and carries the
// content-type, message-digest and signing-time authenticated attributes.
// The manifest content itself is not embedded (detached mode).
func SignManifest(manifest []byte, creds *Credentials) ([]byte, error) {
	signed, err := pkcs7.NewSignedData(manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to create signed data: %w", err)
	}
	// Must precede AddSigner so the signer info uses SHA-256.
	signed.SetDigestAlgorithm(pkcs7.OIDDigestAlgorithmSHA256)

	if err := signed.AddSigner(creds.Certificate, creds.PrivateKey, pkcs7.SignerInfoConfig{}); err != nil {
		return nil, fmt.Errorf("failed to add signer: %w", err)
	}
	if creds.Intermediate != nil {
		signed.AddCertificate(creds.Intermediate)
	}
	signed.Detach()

	der, err := signed.Finish()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize signature: %w", err)
	}
	return der, nil
}
