package rom

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
)

// Cartridge header location.
const (
	HeaderStart = 0x0100
	HeaderEnd   = 0x0150

	titleStart = 0x0134
	titleEnd   = 0x0144
)

// CGB flag values at 0x0143.
const (
	CGBSupported = 0x80
	CGBOnly      = 0xC0
)

var ErrShortHeader = errors.New("ROM too small to contain a cartridge header")

// Header holds the cartridge header fields (0x0100-0x014F).
type Header struct {
	Title          string `json:"title"`
	CGBFlag        byte   `json:"cgb_flag"`        // 0x0143
	NewLicensee    string `json:"new_licensee"`    // 0x0144-0x0145
	SGBFlag        byte   `json:"sgb_flag"`        // 0x0146
	CartType       byte   `json:"cart_type"`       // 0x0147
	ROMSizeCode    byte   `json:"rom_size_code"`   // 0x0148
	RAMSizeCode    byte   `json:"ram_size_code"`   // 0x0149
	Destination    byte   `json:"destination"`     // 0x014A
	OldLicensee    byte   `json:"old_licensee"`    // 0x014B
	Version        byte   `json:"version"`         // 0x014C
	HeaderChecksum byte   `json:"header_checksum"` // 0x014D
	GlobalChecksum uint16 `json:"global_checksum"` // 0x014E-0x014F, big-endian

	ROMSizeBytes int `json:"rom_size_bytes"`
	ROMBanks     int `json:"rom_banks"`
	RAMSizeBytes int `json:"ram_size_bytes"`
}

// ParseHeader decodes the header of img.
func ParseHeader(img *Image) (*Header, error) {
	rom := img.data
	if len(rom) < HeaderEnd {
		return nil, ErrShortHeader
	}

	h := &Header{
		Title:          Title(rom),
		CGBFlag:        rom[0x0143],
		NewLicensee:    string(rom[0x0144:0x0146]),
		SGBFlag:        rom[0x0146],
		CartType:       rom[0x0147],
		ROMSizeCode:    rom[0x0148],
		RAMSizeCode:    rom[0x0149],
		Destination:    rom[0x014A],
		OldLicensee:    rom[0x014B],
		Version:        rom[0x014C],
		HeaderChecksum: rom[0x014D],
		GlobalChecksum: binary.BigEndian.Uint16(rom[0x014E:0x0150]),
	}
	h.ROMSizeBytes, h.ROMBanks = decodeROMSize(h.ROMSizeCode)
	h.RAMSizeBytes = decodeRAMSize(h.RAMSizeCode)
	return h, nil
}

// Title extracts the printable title from the header title area. The CGB
// flag byte is dropped when set, and the title ends at the first NUL.
func Title(rom []byte) string {
	if len(rom) < titleEnd {
		return ""
	}
	raw := rom[titleStart:titleEnd]
	if raw[len(raw)-1]&CGBSupported != 0 {
		raw = raw[:len(raw)-1]
	}
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	var sb strings.Builder
	for _, b := range raw {
		if b >= 0x20 && b < 0x7F {
			sb.WriteByte(b)
		}
	}
	return strings.TrimSpace(sb.String())
}

// IsCGB reports whether the header advertises Game Boy Color support.
func (h *Header) IsCGB() bool {
	return h.CGBFlag == CGBSupported || h.CGBFlag == CGBOnly
}

// HeaderChecksumOK verifies the header checksum byte at 0x014D.
func HeaderChecksumOK(img *Image) bool {
	rom := img.data
	if len(rom) < HeaderEnd {
		return false
	}
	var sum byte
	for addr := 0x0134; addr <= 0x014C; addr++ {
		sum = sum - rom[addr] - 1
	}
	return sum == rom[0x014D]
}

// ComputeGlobalChecksum sums every byte except the two checksum bytes.
func ComputeGlobalChecksum(img *Image) uint16 {
	var sum uint16
	for i, b := range img.data {
		if i == 0x014E || i == 0x014F {
			continue
		}
		sum += uint16(b)
	}
	return sum
}

// GlobalChecksumOK compares the stored global checksum with the computed one.
// Hardware never checks it, so a randomized ROM keeps the original value.
func GlobalChecksumOK(img *Image) bool {
	h, err := ParseHeader(img)
	if err != nil {
		return false
	}
	return h.GlobalChecksum == ComputeGlobalChecksum(img)
}

func decodeROMSize(code byte) (size, banks int) {
	if code <= 0x08 {
		size = (32 * 1024) << code
		return size, size / BankSize
	}
	switch code {
	case 0x52:
		return 1152 * 1024, 72
	case 0x53:
		return 1280 * 1024, 80
	case 0x54:
		return 1536 * 1024, 96
	default:
		return 0, 0
	}
}

func decodeRAMSize(code byte) int {
	switch code {
	case 0x02:
		return 8 * 1024
	case 0x03:
		return 32 * 1024
	case 0x04:
		return 128 * 1024
	case 0x05:
		return 64 * 1024
	default:
		return 0
	}
}
