package applepass

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"

	"github.com/feralclo/walletpass/pkg/zipstore"
)

// BuildManifest digests every archive entry with SHA-1 and maps the hex
// digest by filename. Apple validates each member of the archive against
// this map, so the entries passed here must be exactly the entries that end
// up in the archive.
func BuildManifest(entries []zipstore.Entry) map[string]string {
	manifest := make(map[string]string, len(entries))
	for _, e := range entries {
		sum := sha1.Sum(e.Data)
		manifest[e.Name] = hex.EncodeToString(sum[:])
	}
	return manifest
}

// MarshalManifest serializes the manifest as the manifest.json document.
// encoding/json emits map keys sorted, so the output is deterministic.
func MarshalManifest(manifest map[string]string) ([]byte, error) {
	return json.Marshal(manifest)
}
