// Package mifare decodes raw MIFARE Classic dump files: card geometry,
// UID extraction, sector trailer key material, and the Proxmark3 JSON
// interchange format.
package mifare

import (
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	BlockSize = 16

	smallSectorBlocks = 4
	largeSectorBlocks = 16
	smallSectorCount  = 32

	// Block index where large 4K sectors begin.
	largeSectorFirstBlock = 128
)

// CardType identifies the MIFARE Classic variant a dump came from.
type CardType string

const (
	Classic1K   CardType = "MIFARE Classic 1K"
	Classic1K2S CardType = "MIFARE Classic 1K+2sectors"
	Classic4K   CardType = "MIFARE Classic 4K"
)

var cardGeometry = map[CardType]struct {
	bytes   int
	blocks  int
	sectors int
	atqa    string
	sak     string
}{
	Classic1K:   {1024, 64, 16, "0400", "08"},
	Classic1K2S: {1152, 72, 18, "0400", "08"},
	Classic4K:   {4096, 256, 40, "0200", "18"},
}

// GeometryForSize maps a raw dump size in bytes to a card type.
func GeometryForSize(size int) (CardType, error) {
	for cardType, geo := range cardGeometry {
		if size == geo.bytes {
			return cardType, nil
		}
	}
	return "", fmt.Errorf("unsupported dump size %d bytes: expected 1024, 1152 or 4096", size)
}

// Dump is a parsed raw MIFARE Classic dump.
type Dump struct {
	Type CardType
	data []byte
}

// ParseDump validates dump size and wraps the raw bytes. The card type
// is inferred from the file size alone; there is no other signal in a
// raw dump.
func ParseDump(data []byte) (*Dump, error) {
	for cardType, geo := range cardGeometry {
		if len(data) == geo.bytes {
			return &Dump{Type: cardType, data: data}, nil
		}
	}
	return nil, fmt.Errorf("unsupported dump size %d bytes: expected 1024, 1152 or 4096", len(data))
}

// UID returns the tag UID: the first 4 bytes of block 0, uppercase hex.
func (d *Dump) UID() string {
	return strings.ToUpper(hex.EncodeToString(d.data[:4]))
}

// Bytes returns the raw dump content.
func (d *Dump) Bytes() []byte {
	return d.data
}

// BlockCount returns the number of 16-byte blocks in the dump.
func (d *Dump) BlockCount() int {
	return cardGeometry[d.Type].blocks
}

// SectorCount returns the number of sectors in the dump.
func (d *Dump) SectorCount() int {
	return cardGeometry[d.Type].sectors
}

// ATQA returns the answer-to-request bytes conventionally reported for
// this card type.
func (d *Dump) ATQA() string {
	return cardGeometry[d.Type].atqa
}

// SAK returns the select-acknowledge byte for this card type.
func (d *Dump) SAK() string {
	return cardGeometry[d.Type].sak
}

// Block returns the raw bytes of block n.
func (d *Dump) Block(n int) ([]byte, error) {
	if n < 0 || n >= d.BlockCount() {
		return nil, fmt.Errorf("block %d out of range for %s", n, d.Type)
	}
	start := n * BlockSize
	return d.data[start : start+BlockSize], nil
}

// BlockHex returns block n as 32 uppercase hex characters.
func (d *Dump) BlockHex(n int) (string, error) {
	block, err := d.Block(n)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(block)), nil
}

// TrailerBlock returns the sector trailer block index for a sector.
// Sectors 0-31 hold 4 blocks; 4K sectors 32-39 hold 16.
func TrailerBlock(sector int) int {
	if sector < smallSectorCount {
		return sector*smallSectorBlocks + smallSectorBlocks - 1
	}
	return largeSectorFirstBlock + (sector-smallSectorCount)*largeSectorBlocks + largeSectorBlocks - 1
}

// SectorFirstBlock returns the first block index of a sector.
func SectorFirstBlock(sector int) int {
	if sector < smallSectorCount {
		return sector * smallSectorBlocks
	}
	return largeSectorFirstBlock + (sector-smallSectorCount)*largeSectorBlocks
}

// SectorBlockCount returns the number of blocks in a sector.
func SectorBlockCount(sector int) int {
	if sector < smallSectorCount {
		return smallSectorBlocks
	}
	return largeSectorBlocks
}
