package mifare

import (
	"bytes"
	"testing"
)

// testDump1K builds a synthetic 1K dump with a fixed UID and
// recognizable sector trailers.
func testDump1K(t *testing.T) *Dump {
	t.Helper()
	data := make([]byte, 1024)
	copy(data, []byte{0x3D, 0xE6, 0x05, 0xF4})
	for sector := 0; sector < 16; sector++ {
		trailer := TrailerBlock(sector) * BlockSize
		for i := 0; i < 6; i++ {
			data[trailer+i] = byte(0xA0 + sector) // KeyA
			data[trailer+10+i] = byte(0xB0 + sector) // KeyB
		}
		copy(data[trailer+6:trailer+10], []byte{0xFF, 0x07, 0x80, 0x69})
	}
	d, err := ParseDump(data)
	if err != nil {
		t.Fatalf("parse dump: %v", err)
	}
	return d
}

func TestParseDumpGeometry(t *testing.T) {
	cases := []struct {
		size    int
		want    CardType
		blocks  int
		sectors int
	}{
		{1024, Classic1K, 64, 16},
		{1152, Classic1K2S, 72, 18},
		{4096, Classic4K, 256, 40},
	}

	for _, tc := range cases {
		d, err := ParseDump(make([]byte, tc.size))
		if err != nil {
			t.Fatalf("size %d: %v", tc.size, err)
		}
		if d.Type != tc.want {
			t.Fatalf("size %d: expected %s, got %s", tc.size, tc.want, d.Type)
		}
		if d.BlockCount() != tc.blocks {
			t.Fatalf("size %d: expected %d blocks, got %d", tc.size, tc.blocks, d.BlockCount())
		}
		if d.SectorCount() != tc.sectors {
			t.Fatalf("size %d: expected %d sectors, got %d", tc.size, tc.sectors, d.SectorCount())
		}
	}

	for _, size := range []int{0, 100, 1023, 2048} {
		if _, err := ParseDump(make([]byte, size)); err == nil {
			t.Fatalf("expected error for size %d", size)
		}
	}
}

func TestDumpUID(t *testing.T) {
	d := testDump1K(t)
	if d.UID() != "3DE605F4" {
		t.Fatalf("expected UID 3DE605F4, got %s", d.UID())
	}
}

func TestTrailerBlockLayout(t *testing.T) {
	cases := map[int]int{
		0:  3,
		1:  7,
		31: 127,
		32: 143,
		39: 255,
	}
	for sector, want := range cases {
		if got := TrailerBlock(sector); got != want {
			t.Fatalf("sector %d: expected trailer %d, got %d", sector, want, got)
		}
	}
}

func TestSectorKeys(t *testing.T) {
	d := testDump1K(t)
	keys, err := d.SectorKeys()
	if err != nil {
		t.Fatalf("sector keys: %v", err)
	}
	if len(keys) != 16 {
		t.Fatalf("expected 16 sectors, got %d", len(keys))
	}
	s0 := keys[0]
	if s0.KeyA != "A0A0A0A0A0A0" {
		t.Fatalf("sector 0 KeyA: %s", s0.KeyA)
	}
	if s0.KeyB != "B0B0B0B0B0B0" {
		t.Fatalf("sector 0 KeyB: %s", s0.KeyB)
	}
	if s0.AccessConditions != "FF078069" {
		t.Fatalf("sector 0 access: %s", s0.AccessConditions)
	}
}

func TestProxmarkRoundTrip(t *testing.T) {
	d := testDump1K(t)

	p, err := EncodeProxmark(d)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if p.Created != "proxmark3" || p.FileType != "mfc v2" {
		t.Fatalf("unexpected envelope: %q %q", p.Created, p.FileType)
	}
	if p.Card.UID != "3DE605F4" {
		t.Fatalf("unexpected card uid %q", p.Card.UID)
	}
	if p.Card.ATQA != "0400" || p.Card.SAK != "08" {
		t.Fatalf("unexpected 1K card identity: %q/%q", p.Card.ATQA, p.Card.SAK)
	}
	if len(p.Blocks) != 64 {
		t.Fatalf("expected 64 blocks, got %d", len(p.Blocks))
	}

	raw, err := p.Raw()
	if err != nil {
		t.Fatalf("raw: %v", err)
	}
	if !bytes.Equal(raw, d.Bytes()) {
		t.Fatal("proxmark round trip did not reproduce dump bytes")
	}
}

func TestProxmark4KIdentity(t *testing.T) {
	d, err := ParseDump(make([]byte, 4096))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	p, err := EncodeProxmark(d)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if p.Card.ATQA != "0200" || p.Card.SAK != "18" {
		t.Fatalf("unexpected 4K card identity: %q/%q", p.Card.ATQA, p.Card.SAK)
	}
}

func TestIsProxmarkJSON(t *testing.T) {
	if !IsProxmarkJSON([]byte(`{"Created":"proxmark3"}`)) {
		t.Fatal("Created marker should match")
	}
	if !IsProxmarkJSON([]byte(`{"blocks":{"0":"00"}}`)) {
		t.Fatal("blocks marker should match")
	}
	if !IsProxmarkJSON([]byte(`{"FileType":"mfc v2"}`)) {
		t.Fatal("FileType marker should match")
	}
	if IsProxmarkJSON([]byte(`{"uid":"3DE605F4","filament_type":"PETG"}`)) {
		t.Fatal("decoded sidecar should not match")
	}
	if IsProxmarkJSON([]byte(`not json`)) {
		t.Fatal("invalid json should not match")
	}
}

func TestRawRejectsGaps(t *testing.T) {
	p := &ProxmarkDump{
		Created: "proxmark3",
		Blocks:  map[string]string{"0": "00000000000000000000000000000000", "2": "00000000000000000000000000000000"},
	}
	if _, err := p.Raw(); err == nil {
		t.Fatal("expected error for non-contiguous blocks")
	}
}
