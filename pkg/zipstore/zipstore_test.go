package zipstore

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
)

// TestArchiveRoundTrip verifies that an archive we write can be read back
// by the standard ZIP reader with identical names and bytes.
func TestArchiveRoundTrip(t *testing.T) {
	entries := []Entry{
		{Name: "pass.json", Data: []byte(`{"formatVersion":1}`)},
		{Name: "icon.png", Data: []byte{0x89, 'P', 'N', 'G', 0, 1, 2, 3}},
		{Name: "manifest.json", Data: []byte(`{}`)},
		{Name: "signature", Data: bytes.Repeat([]byte{0xAB}, 1500)},
	}

	data, err := Archive(entries)
	if err != nil {
		t.Fatalf("Archive failed: %v", err)
	}

	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("standard reader rejected our archive: %v", err)
	}
	if len(r.File) != len(entries) {
		t.Fatalf("expected %d entries, got %d", len(entries), len(r.File))
	}

	for i, f := range r.File {
		if f.Name != entries[i].Name {
			t.Errorf("entry %d: name %q, expected %q", i, f.Name, entries[i].Name)
		}
		if f.Method != zip.Store {
			t.Errorf("entry %q: method %d, expected Store", f.Name, f.Method)
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("entry %q: open failed: %v", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("entry %q: read failed: %v", f.Name, err)
		}
		if !bytes.Equal(content, entries[i].Data) {
			t.Errorf("entry %q: content mismatch", f.Name)
		}
	}
}

func TestArchiveEmpty(t *testing.T) {
	data, err := Archive(nil)
	if err != nil {
		t.Fatalf("Archive(nil) failed: %v", err)
	}
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("standard reader rejected empty archive: %v", err)
	}
	if len(r.File) != 0 {
		t.Errorf("expected empty archive, got %d entries", len(r.File))
	}
}

func TestArchiveRejectsEmptyName(t *testing.T) {
	_, err := Archive([]Entry{{Name: "", Data: []byte("x")}})
	if err == nil {
		t.Error("expected an error for an entry with no name")
	}
}

// TestArchiveDeterministic: same input, same bytes. Timestamps are zeroed
// so nothing varies between calls.
func TestArchiveDeterministic(t *testing.T) {
	entries := []Entry{
		{Name: "a.txt", Data: []byte("alpha")},
		{Name: "b.txt", Data: []byte("beta")},
	}
	first, err := Archive(entries)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Archive(entries)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("two archives of the same entries differ")
	}
}

// TestArchiveNestedArchive stores a complete inner archive as an entry and
// checks it survives byte-identical, which is what the multi-pass bundle
// relies on.
func TestArchiveNestedArchive(t *testing.T) {
	inner, err := Archive([]Entry{{Name: "pass.json", Data: []byte(`{"serialNumber":"X"}`)}})
	if err != nil {
		t.Fatal(err)
	}
	outer, err := Archive([]Entry{{Name: "TICKET-1.pkpass", Data: inner}})
	if err != nil {
		t.Fatal(err)
	}

	r, err := zip.NewReader(bytes.NewReader(outer), int64(len(outer)))
	if err != nil {
		t.Fatal(err)
	}
	rc, err := r.File[0].Open()
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	content, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(content, inner) {
		t.Error("nested archive bytes were altered by the outer archive")
	}
	if _, err := zip.NewReader(bytes.NewReader(content), int64(len(content))); err != nil {
		t.Errorf("nested archive no longer parses: %v", err)
	}
}
