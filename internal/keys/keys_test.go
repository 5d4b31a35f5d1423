package keys

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseKeyBinSkipsPadding(t *testing.T) {
	data := make([]byte, KeyFileSize)
	// Two real keys, rest zero padding.
	copy(data[0:6], []byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66})
	copy(data[6:12], []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF})

	keys, err := ParseKeyBin(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(keys))
	}
	if keys[0].String() != "112233445566" {
		t.Fatalf("unexpected first key %s", keys[0])
	}
	if keys[1].String() != "AABBCCDDEEFF" {
		t.Fatalf("unexpected second key %s", keys[1])
	}
}

func TestParseKeyBinErrors(t *testing.T) {
	if _, err := ParseKeyBin(nil); err == nil {
		t.Fatal("expected error for empty input")
	}
	if _, err := ParseKeyBin(make([]byte, 7)); err == nil {
		t.Fatal("expected error for non-multiple size")
	}
	if _, err := ParseKeyBin(make([]byte, KeyFileSize)); err == nil {
		t.Fatal("expected error for all-padding file")
	}
}

func TestDicRoundTrip(t *testing.T) {
	data := make([]byte, KeyFileSizeSingle)
	for i := 0; i < KeysPerTag; i++ {
		for j := 0; j < KeySize; j++ {
			data[i*KeySize+j] = byte(i + 1)
		}
	}
	keys, err := ParseKeyBin(data)
	if err != nil {
		t.Fatalf("parse bin: %v", err)
	}
	if len(keys) != KeysPerTag {
		t.Fatalf("expected %d keys, got %d", KeysPerTag, len(keys))
	}

	var buf bytes.Buffer
	if err := WriteDic(&buf, keys); err != nil {
		t.Fatalf("write dic: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != KeysPerTag {
		t.Fatalf("expected %d dic lines, got %d", KeysPerTag, len(lines))
	}
	if lines[0] != "010101010101" {
		t.Fatalf("unexpected first dic line %q", lines[0])
	}

	back, err := ParseDic(&buf)
	if err != nil {
		t.Fatalf("parse dic: %v", err)
	}
	if len(back) != len(keys) {
		t.Fatalf("round trip lost keys: %d != %d", len(back), len(keys))
	}
	for i := range keys {
		if back[i] != keys[i] {
			t.Fatalf("key %d changed: %s != %s", i, back[i], keys[i])
		}
	}
}

func TestParseDicSkipsJunkLines(t *testing.T) {
	input := strings.Join([]string{
		"112233445566",
		"",
		"not-a-key",
		"AABBCCDDEEFF",
		"TOOSHORT",
	}, "\n")

	keys, err := ParseDic(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(keys))
	}
}

func TestDeriveTagKeys(t *testing.T) {
	uid := []byte{0x3D, 0xE6, 0x05, 0xF4}

	keys, err := DeriveTagKeys(uid)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if len(keys) != KeysPerTag {
		t.Fatalf("expected %d keys, got %d", KeysPerTag, len(keys))
	}

	// Known-answer vector for UID 3DE605F4, cross-checked against an
	// independent HKDF-SHA256 implementation.
	want := []string{
		"736B01748E64", "9146267CC805", "7173C8737362", "B818AE202384",
		"F04DF190DD23", "4B17A8AB0A84", "F614C90F0BBD", "220772E1C1C0",
		"42E636FC9AFB", "BC03340C53FF", "A025D5531C53", "4DDEF8AC2A78",
		"0B30DC0D3B13", "9A5127CFC9B6", "8B7F2319EDD4", "FDEC71087B54",
	}
	for i, w := range want {
		if keys[i].String() != w {
			t.Fatalf("key %d = %s, want %s", i, keys[i], w)
		}
	}

	// A different UID yields different key material.
	other, err := DeriveTagKeys([]byte{0x00, 0x01, 0x02, 0x03})
	if err != nil {
		t.Fatalf("derive other: %v", err)
	}
	if keys[0] == other[0] {
		t.Fatal("expected different keys for different UIDs")
	}

	if _, err := DeriveTagKeys([]byte{0x01}); err == nil {
		t.Fatal("expected error for short uid")
	}
}
