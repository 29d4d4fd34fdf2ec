package pass

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// MediaStore resolves internal media keys to image bytes. The ticketing
// platform's storage layer implements this; pass generation only calls
// through the interface.
type MediaStore interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// imageClient bounds the optional remote image fetches. A slow CDN must not
// stall ticket issuance.
var imageClient = &http.Client{Timeout: 10 * time.Second}

const maxImageBytes = 5 << 20

// FetchImage resolves an image reference to raw bytes. The reference may be
// a data URI, an absolute HTTP(S) URL, or an internal media key looked up
// through store. Every failure path returns nil: images are an optional
// enhancement and must never fail a pass.
func FetchImage(ctx context.Context, ref string, store MediaStore) []byte {
	if ref == "" {
		return nil
	}
	var (
		data []byte
		err  error
	)
	switch {
	case strings.HasPrefix(ref, "data:"):
		data, err = decodeDataURI(ref)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		data, err = fetchRemote(ctx, ref)
	default:
		if store == nil {
			err = fmt.Errorf("no media store configured for key %q", ref)
		} else {
			data, err = store.Fetch(ctx, ref)
		}
	}
	if err != nil {
		log.Warn().Err(err).Str("ref", truncateRef(ref)).Msg("image fetch failed, continuing without it")
		return nil
	}
	return data
}

func decodeDataURI(uri string) ([]byte, error) {
	_, rest, ok := strings.Cut(uri, ",")
	if !ok {
		return nil, fmt.Errorf("malformed data URI")
	}
	meta := uri[:len(uri)-len(rest)-1]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("unsupported data URI encoding")
	}
	return base64.StdEncoding.DecodeString(rest)
}

func fetchRemote(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := imageClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching image", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
}

// truncateRef keeps data URIs from flooding the log.
func truncateRef(ref string) string {
	if len(ref) > 64 {
		return ref[:64] + "..."
	}
	return ref
}
