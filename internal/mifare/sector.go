package mifare

import (
	"fmt"
)

// SectorKeys holds the key material decoded from one sector trailer:
// KeyA (6 bytes) | access conditions (4 bytes) | KeyB (6 bytes).
type SectorKeys struct {
	KeyA             string `json:"KeyA"`
	KeyB             string `json:"KeyB"`
	AccessConditions string `json:"AccessConditions"`
}

// SectorKeys extracts key material from every sector trailer present in
// the dump. Sectors whose trailer block is missing are skipped.
func (d *Dump) SectorKeys() (map[int]SectorKeys, error) {
	out := make(map[int]SectorKeys, d.SectorCount())
	for sector := 0; sector < d.SectorCount(); sector++ {
		trailer := TrailerBlock(sector)
		if trailer >= d.BlockCount() {
			continue
		}
		hexBlock, err := d.BlockHex(trailer)
		if err != nil {
			return nil, err
		}
		keys, err := parseTrailer(hexBlock)
		if err != nil {
			return nil, fmt.Errorf("sector %d: %w", sector, err)
		}
		out[sector] = keys
	}
	return out, nil
}

func parseTrailer(trailerHex string) (SectorKeys, error) {
	if len(trailerHex) != BlockSize*2 {
		return SectorKeys{}, fmt.Errorf("trailer must be %d hex chars, got %d", BlockSize*2, len(trailerHex))
	}
	return SectorKeys{
		KeyA:             trailerHex[0:12],
		AccessConditions: trailerHex[12:20],
		KeyB:             trailerHex[20:32],
	}, nil
}

// AccessConditionsText produces the human-readable access summary the
// upstream tooling embeds next to each sector's conditions. Most tags
// in the archive use the standard transport conditions, so this is a
// fixed description keyed by block role.
func AccessConditionsText(accessConditions string, sector int) map[string]string {
	out := map[string]string{}
	if len(accessConditions) >= 2 {
		out["UserData"] = accessConditions[len(accessConditions)-2:]
	}

	base := SectorFirstBlock(sector)
	count := SectorBlockCount(sector)
	for i := 0; i < count; i++ {
		label := fmt.Sprintf("block%d", base+i)
		if i == count-1 {
			out[label] = "read ACCESS by AB; write ACCESS by B"
		} else {
			out[label] = "read AB"
		}
	}
	return out
}
