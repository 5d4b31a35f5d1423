package mifare

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	proxmarkCreated  = "proxmark3"
	proxmarkFileType = "mfc v2"
)

// ProxmarkCard identifies the card in a Proxmark3 JSON dump.
type ProxmarkCard struct {
	UID  string `json:"UID"`
	ATQA string `json:"ATQA"`
	SAK  string `json:"SAK"`
}

// ProxmarkSector is the per-sector key entry of a Proxmark3 JSON dump.
type ProxmarkSector struct {
	KeyA                 string            `json:"KeyA"`
	KeyB                 string            `json:"KeyB"`
	AccessConditions     string            `json:"AccessConditions"`
	AccessConditionsText map[string]string `json:"AccessConditionsText,omitempty"`
}

// ProxmarkDump is the Proxmark3 "mfc v2" JSON interchange format. Block
// numbers are decimal strings to stay byte-compatible with the files
// the upstream tooling produces.
type ProxmarkDump struct {
	Created    string                    `json:"Created"`
	FileType   string                    `json:"FileType"`
	Card       ProxmarkCard              `json:"Card"`
	Blocks     map[string]string         `json:"blocks"`
	SectorKeys map[string]ProxmarkSector `json:"SectorKeys,omitempty"`
}

// EncodeProxmark converts a raw dump into the Proxmark3 JSON structure.
func EncodeProxmark(d *Dump) (*ProxmarkDump, error) {
	blocks := make(map[string]string, d.BlockCount())
	for n := 0; n < d.BlockCount(); n++ {
		hexBlock, err := d.BlockHex(n)
		if err != nil {
			return nil, err
		}
		blocks[strconv.Itoa(n)] = hexBlock
	}

	sectorKeys, err := d.SectorKeys()
	if err != nil {
		return nil, err
	}
	sectors := make(map[string]ProxmarkSector, len(sectorKeys))
	for sector, keys := range sectorKeys {
		sectors[strconv.Itoa(sector)] = ProxmarkSector{
			KeyA:                 keys.KeyA,
			KeyB:                 keys.KeyB,
			AccessConditions:     keys.AccessConditions,
			AccessConditionsText: AccessConditionsText(keys.AccessConditions, sector),
		}
	}

	return &ProxmarkDump{
		Created:  proxmarkCreated,
		FileType: proxmarkFileType,
		Card: ProxmarkCard{
			UID:  d.UID(),
			ATQA: d.ATQA(),
			SAK:  d.SAK(),
		},
		Blocks:     blocks,
		SectorKeys: sectors,
	}, nil
}

// Raw reassembles the original dump bytes from the block map. Block
// numbers must be contiguous from zero and match a known geometry.
func (p *ProxmarkDump) Raw() ([]byte, error) {
	if len(p.Blocks) == 0 {
		return nil, fmt.Errorf("proxmark dump has no blocks")
	}

	numbers := make([]int, 0, len(p.Blocks))
	for raw := range p.Blocks {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid block number %q", raw)
		}
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	for i, n := range numbers {
		if n != i {
			return nil, fmt.Errorf("blocks are not contiguous: missing block %d", i)
		}
	}

	out := make([]byte, 0, len(numbers)*BlockSize)
	for _, n := range numbers {
		block, err := hex.DecodeString(p.Blocks[strconv.Itoa(n)])
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", n, err)
		}
		if len(block) != BlockSize {
			return nil, fmt.Errorf("block %d: expected %d bytes, got %d", n, BlockSize, len(block))
		}
		out = append(out, block...)
	}

	if _, err := ParseDump(out); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeProxmark parses Proxmark3 JSON bytes.
func DecodeProxmark(data []byte) (*ProxmarkDump, error) {
	var p ProxmarkDump
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse proxmark json: %w", err)
	}
	if !looksLikeProxmark(&p) {
		return nil, fmt.Errorf("not a proxmark3 dump")
	}
	return &p, nil
}

// IsProxmarkJSON reports whether arbitrary JSON bytes carry a Proxmark3
// format dump. Files in this format hold raw (still encrypted) block
// content and must never be regenerated from decoded sidecars.
func IsProxmarkJSON(data []byte) bool {
	var p ProxmarkDump
	if err := json.Unmarshal(data, &p); err != nil {
		return false
	}
	return looksLikeProxmark(&p)
}

func looksLikeProxmark(p *ProxmarkDump) bool {
	if strings.EqualFold(p.Created, proxmarkCreated) {
		return true
	}
	if len(p.Blocks) > 0 {
		return true
	}
	return strings.EqualFold(p.FileType, proxmarkFileType)
}
