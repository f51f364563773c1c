// Package utf16 decodes the UTF-16 byte strings that appear throughout NTFS attribute content
// (FILE_NAME names, attribute names, ATTRIBUTE_LIST entry names, VOLUME_NAME content).
package utf16

import (
	"encoding/binary"
	"errors"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DecodeString decodes b, interpreted as UTF-16 using the given byte order, into a Go string. b must have an even
// number of bytes.
func DecodeString(b []byte, bo binary.ByteOrder) (string, error) {
	if len(b)%2 != 0 {
		return "", errors.New("input data must have even number of bytes")
	}
	if len(b) == 0 {
		return "", nil
	}

	enc := unicode.UTF16(endianness(bo), unicode.IgnoreBOM)
	out, _, err := transform.Bytes(enc.NewDecoder(), b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func endianness(bo binary.ByteOrder) unicode.Endianness {
	if bo == binary.BigEndian {
		return unicode.BigEndian
	}
	return unicode.LittleEndian
}
