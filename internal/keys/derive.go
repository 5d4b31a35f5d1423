package keys

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// deriveMaster is the fixed HKDF salt used by Bambu Lab tags.
var deriveMaster = []byte{
	0x9a, 0x75, 0x9c, 0xf2, 0xc4, 0xf7, 0xca, 0xff,
	0x22, 0x2c, 0xb9, 0x76, 0x9b, 0x41, 0xbc, 0x96,
}

// deriveContext is the HKDF info string, NUL terminator included.
var deriveContext = []byte("RFID-A\x00")

const uidLength = 4

// DeriveTagKeys derives the 16 KeyA sector keys for a tag from its
// 4-byte UID using the Bambu Lab HKDF-SHA256 scheme. Tags place the
// derived keys in sector order.
func DeriveTagKeys(uid []byte) ([]Key, error) {
	if len(uid) != uidLength {
		return nil, fmt.Errorf("uid must be %d bytes, got %d", uidLength, len(uid))
	}

	reader := hkdf.New(sha256.New, uid, deriveMaster, deriveContext)
	material := make([]byte, KeySize*KeysPerTag)
	if _, err := io.ReadFull(reader, material); err != nil {
		return nil, fmt.Errorf("derive keys: %w", err)
	}

	keys := make([]Key, KeysPerTag)
	for i := range keys {
		copy(keys[i][:], material[i*KeySize:(i+1)*KeySize])
	}
	return keys, nil
}
