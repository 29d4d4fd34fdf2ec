package pass

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakeStore map[string][]byte

func (s fakeStore) Fetch(_ context.Context, key string) ([]byte, error) {
	data, ok := s[key]
	if !ok {
		return nil, fmt.Errorf("no media with key %q", key)
	}
	return data, nil
}

func TestFetchImageDataURI(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G', 1, 2, 3}
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(payload)

	got := FetchImage(context.Background(), uri, nil)
	if !bytes.Equal(got, payload) {
		t.Errorf("data URI decoded to %v, expected %v", got, payload)
	}
}

func TestFetchImageBadDataURI(t *testing.T) {
	for _, uri := range []string{"data:image/png;base64", "data:image/png,notbase64encoded!!", "data:"} {
		if got := FetchImage(context.Background(), uri, nil); got != nil {
			t.Errorf("malformed data URI %q should resolve to nil", uri)
		}
	}
}

func TestFetchImageHTTP(t *testing.T) {
	payload := []byte("fake png bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	got := FetchImage(context.Background(), srv.URL+"/logo.png", nil)
	if !bytes.Equal(got, payload) {
		t.Errorf("HTTP fetch returned %v, expected %v", got, payload)
	}
}

func TestFetchImageHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	if got := FetchImage(context.Background(), srv.URL+"/missing.png", nil); got != nil {
		t.Error("a 404 should resolve to nil, not an error or stale bytes")
	}
}

func TestFetchImageMediaKey(t *testing.T) {
	store := fakeStore{"media/logo-abc123": []byte("stored logo")}

	if got := FetchImage(context.Background(), "media/logo-abc123", store); !bytes.Equal(got, []byte("stored logo")) {
		t.Errorf("media key resolved to %q", got)
	}
	if got := FetchImage(context.Background(), "media/unknown", store); got != nil {
		t.Error("unknown media key should resolve to nil")
	}
	// No store wired at all: still nil, never a panic.
	if got := FetchImage(context.Background(), "media/logo-abc123", nil); got != nil {
		t.Error("media key without a store should resolve to nil")
	}
}

func TestFetchImageEmptyRef(t *testing.T) {
	if got := FetchImage(context.Background(), "", nil); got != nil {
		t.Error("empty ref should resolve to nil")
	}
}
