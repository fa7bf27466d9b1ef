package rom

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.gb"))
	var fae *FileAccessError
	if !errors.As(err, &fae) {
		t.Fatalf("expected FileAccessError, got %v", err)
	}
	if fae.Op != "read" {
		t.Errorf("Op = %q, want read", fae.Op)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected error to unwrap to os.ErrNotExist, got %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	data := make([]byte, 0x8000)
	for i := range data {
		data[i] = byte(i * 7)
	}
	path := filepath.Join(t.TempDir(), "out.gb")

	if err := Save(New(data), path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	img, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !bytes.Equal(img.Bytes(), data) {
		t.Error("loaded bytes differ from saved bytes")
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the destination file, found %d entries", len(entries))
	}
}

func TestSaveFailureLeavesNoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no-such-dir", "out.gb")
	err := Save(New(make([]byte, 16)), path)
	var fae *FileAccessError
	if !errors.As(err, &fae) {
		t.Fatalf("expected FileAccessError, got %v", err)
	}
	if fae.Op != "write" {
		t.Errorf("Op = %q, want write", fae.Op)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("destination should not exist, stat err = %v", err)
	}
}

func TestSaveKeepsExistingDestinationOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.gb")
	if err := os.WriteFile(path, []byte("original"), 0o644); err != nil {
		t.Fatal(err)
	}
	if os.Getuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	// Read-only directory: the temp file cannot be created.
	if err := os.Chmod(dir, 0o500); err != nil {
		t.Fatal(err)
	}
	defer os.Chmod(dir, 0o700)

	if err := Save(New([]byte("replacement")), path); err == nil {
		t.Fatal("expected Save to fail in a read-only directory")
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "original" {
		t.Errorf("destination changed to %q", got)
	}
}

func TestSliceAndPatch(t *testing.T) {
	img := New(make([]byte, 32))

	if err := img.Patch(4, []byte{1, 2, 3}); err != nil {
		t.Fatalf("Patch failed: %v", err)
	}
	got, err := img.Slice(3, 5)
	if err != nil {
		t.Fatalf("Slice failed: %v", err)
	}
	if want := []byte{0, 1, 2, 3, 0}; !bytes.Equal(got, want) {
		t.Errorf("Slice = %v, want %v", got, want)
	}

	// Slice returns a copy.
	got[0] = 0xFF
	if img.Bytes()[3] != 0 {
		t.Error("Slice aliased the image buffer")
	}

	cases := []struct {
		offset, length int
	}{
		{-1, 2},
		{31, 2},
		{0, 33},
	}
	for i, tc := range cases {
		if _, err := img.Slice(tc.offset, tc.length); err == nil {
			t.Errorf("%d: expected out-of-range error for %d+%d", i, tc.offset, tc.length)
		}
		if err := img.Patch(tc.offset, make([]byte, tc.length)); err == nil {
			t.Errorf("%d: expected Patch to reject %d+%d", i, tc.offset, tc.length)
		}
	}
	if img.Len() != 32 {
		t.Errorf("image resized to %d", img.Len())
	}
}

func TestBankOffset(t *testing.T) {
	cases := []struct {
		bank   int
		addr   uint16
		offset int
	}{
		{0, 0x0150, 0x0150},
		{1, 0x4000, 0x4000},
		{1, 0x7FFF, 0x7FFF},
		{2, 0x4000, 0x8000},
		{3, 0x4ABC, 0xCABC},
	}
	for i, tc := range cases {
		if got := BankOffset(tc.bank, tc.addr); got != tc.offset {
			t.Errorf("%d: BankOffset(%d, %04X) = %X, want %X", i, tc.bank, tc.addr, got, tc.offset)
		}
		if got := BankAddress(tc.bank, tc.offset); got != tc.addr {
			t.Errorf("%d: BankAddress(%d, %X) = %04X, want %04X", i, tc.bank, tc.offset, got, tc.addr)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	img := New([]byte{1, 2, 3})
	c := img.Clone()
	c.Bytes()[0] = 9
	if img.Bytes()[0] != 1 {
		t.Error("Clone shares the buffer")
	}
	if img.SHA256() == c.SHA256() {
		t.Error("expected different digests after modifying the clone")
	}
}
