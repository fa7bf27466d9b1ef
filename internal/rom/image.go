// Package rom loads, patches and saves Game Boy cartridge images.
package rom

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// BankSize is the size of one switchable ROM bank.
const BankSize = 0x4000

// Image is an owned, mutable cartridge dump. Its length never changes after
// construction; bytes are only patched in place.
type Image struct {
	data []byte
}

// New wraps a copy of data as an Image.
func New(data []byte) *Image {
	buf := make([]byte, len(data))
	copy(buf, data)
	return &Image{data: buf}
}

// Load reads the ROM at path.
func Load(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileAccessError{Op: "read", Path: path, Err: err}
	}
	return &Image{data: data}, nil
}

// Save writes img to path. The bytes go to a temporary file in the same
// directory which is renamed over path once fully written, so a failed save
// leaves path untouched.
func Save(img *Image, path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &FileAccessError{Op: "write", Path: path, Err: err}
	}
	tmpName := tmp.Name()

	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return &FileAccessError{Op: "write", Path: path, Err: err}
	}

	if _, err := tmp.Write(img.data); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &FileAccessError{Op: "write", Path: path, Err: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return &FileAccessError{Op: "write", Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &FileAccessError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// Len returns the image size in bytes.
func (img *Image) Len() int {
	return len(img.data)
}

// Bytes returns the underlying buffer. Callers must not resize it.
func (img *Image) Bytes() []byte {
	return img.data
}

// Banks returns the number of full 16 KiB banks in the image.
func (img *Image) Banks() int {
	return len(img.data) / BankSize
}

// Slice returns a copy of length bytes starting at offset.
func (img *Image) Slice(offset, length int) ([]byte, error) {
	if err := img.checkSpan(offset, length); err != nil {
		return nil, err
	}
	out := make([]byte, length)
	copy(out, img.data[offset:offset+length])
	return out, nil
}

// Patch overwrites the bytes at offset with data.
func (img *Image) Patch(offset int, data []byte) error {
	if err := img.checkSpan(offset, len(data)); err != nil {
		return err
	}
	copy(img.data[offset:], data)
	return nil
}

// ReadU16 reads a little-endian word at offset.
func (img *Image) ReadU16(offset int) (uint16, error) {
	if err := img.checkSpan(offset, 2); err != nil {
		return 0, err
	}
	return uint16(img.data[offset]) | uint16(img.data[offset+1])<<8, nil
}

// Clone returns an independent copy of the image.
func (img *Image) Clone() *Image {
	return New(img.data)
}

// SHA256 returns the hex digest of the whole image.
func (img *Image) SHA256() string {
	sum := sha256.Sum256(img.data)
	return hex.EncodeToString(sum[:])
}

func (img *Image) checkSpan(offset, length int) error {
	if offset < 0 || length < 0 || offset+length > len(img.data) {
		return fmt.Errorf("span 0x%X+%d outside image of %d bytes", offset, length, len(img.data))
	}
	return nil
}

// BankOffset converts a banked address (0x4000..0x7FFF for banks >= 1) to a
// file offset.
func BankOffset(bank int, addr uint16) int {
	if bank == 0 {
		return int(addr)
	}
	return bank*BankSize + int(addr) - BankSize
}

// BankAddress is the inverse of BankOffset for offsets inside bank.
func BankAddress(bank, offset int) uint16 {
	if bank == 0 {
		return uint16(offset)
	}
	return uint16(offset - bank*BankSize + BankSize)
}
