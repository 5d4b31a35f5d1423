// Package keys handles MIFARE sector key material: the binary key.bin
// layout, the .dic dictionary format, and UID-based key derivation.
package keys

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

const (
	// KeySize is the length of one MIFARE Classic sector key.
	KeySize = 6
	// KeysPerTag is the number of sectors (and so keys) on a 1K tag.
	KeysPerTag = 16
	// KeyFileSize is the canonical key.bin size: 16 keys of 6 bytes.
	KeyFileSize = KeySize * KeysPerTag * 2 // KeyA and KeyB planes
	// KeyFileSizeSingle is a key.bin holding only the KeyA plane.
	KeyFileSizeSingle = KeySize * KeysPerTag
)

// Key is one 6-byte sector key.
type Key [KeySize]byte

// String renders the key as 12 uppercase hex characters, the .dic line
// format.
func (k Key) String() string {
	return strings.ToUpper(hex.EncodeToString(k[:]))
}

// IsZero reports whether the key is all-zero padding.
func (k Key) IsZero() bool {
	return k == Key{}
}

// ParseKeyBin splits a binary key file into keys, skipping all-zero
// padding entries. Trailing partial keys are an error.
func ParseKeyBin(data []byte) ([]Key, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("key file is empty")
	}
	if len(data)%KeySize != 0 {
		return nil, fmt.Errorf("key file size %d is not a multiple of %d", len(data), KeySize)
	}

	keys := make([]Key, 0, len(data)/KeySize)
	for i := 0; i < len(data); i += KeySize {
		var k Key
		copy(k[:], data[i:i+KeySize])
		if k.IsZero() {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("no valid keys found")
	}
	return keys, nil
}

// WriteDic writes keys in dictionary format: one uppercase hex key per
// line.
func WriteDic(w io.Writer, keys []Key) error {
	bw := bufio.NewWriter(w)
	for _, k := range keys {
		if _, err := bw.WriteString(k.String() + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ParseDic reads a .dic dictionary, skipping blank and malformed lines
// the same way the upstream tooling does.
func ParseDic(r io.Reader) ([]Key, error) {
	var keys []Key
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) != KeySize*2 {
			continue
		}
		raw, err := hex.DecodeString(line)
		if err != nil {
			continue
		}
		var k Key
		copy(k[:], raw)
		keys = append(keys, k)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("no valid keys in dictionary")
	}
	return keys, nil
}
