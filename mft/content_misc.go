package mft

import (
	"encoding/binary"
	"fmt"

	"github.com/dfirtools/gomft/binutil"
	"github.com/dfirtools/gomft/utf16"
)

// ObjectID ($OBJECT_ID) carries a distributed-link-tracking GUID plus, for files that have been
// moved across volumes, the GUIDs recorded at creation time (birth volume/object/domain). The
// Birth* fields are nil when the attribute's content is too short to carry them (pre-NTFS-5
// volumes only ever wrote the bare 16-byte ObjectID).
type ObjectID struct {
	ObjectID        [16]byte
	BirthVolumeID   *[16]byte
	BirthObjectID   *[16]byte
	BirthDomainID   *[16]byte
}

// ParseObjectID decodes a $OBJECT_ID attribute's resident content.
func ParseObjectID(b []byte) (ObjectID, error) {
	if len(b) < 16 {
		return ObjectID{}, fmt.Errorf("expected at least 16 bytes but got %d", len(b))
	}
	var o ObjectID
	copy(o.ObjectID[:], b[0:16])
	if len(b) >= 32 {
		var v [16]byte
		copy(v[:], b[16:32])
		o.BirthVolumeID = &v
	}
	if len(b) >= 48 {
		var v [16]byte
		copy(v[:], b[32:48])
		o.BirthObjectID = &v
	}
	if len(b) >= 64 {
		var v [16]byte
		copy(v[:], b[48:64])
		o.BirthDomainID = &v
	}
	return o, nil
}

// VolumeName ($VOLUME_NAME) is the volume label, stored as the attribute's entire content.
type VolumeName struct {
	Name string
}

// ParseVolumeName decodes a $VOLUME_NAME attribute's resident content.
func ParseVolumeName(b []byte) (VolumeName, error) {
	name, err := utf16.DecodeString(b, binary.LittleEndian)
	if err != nil {
		return VolumeName{}, fmt.Errorf("unable to decode volume name: %w", err)
	}
	return VolumeName{Name: name}, nil
}

// VolumeInformation ($VOLUME_INFORMATION) carries the NTFS version and dirty/upgrade/resize
// flags of the volume the MFT belongs to.
type VolumeInformation struct {
	MajorVersion byte
	MinorVersion byte
	Flags        uint16
}

// ParseVolumeInformation decodes a $VOLUME_INFORMATION attribute's resident content.
func ParseVolumeInformation(b []byte) (VolumeInformation, error) {
	if len(b) < 12 {
		return VolumeInformation{}, fmt.Errorf("expected at least 12 bytes but got %d", len(b))
	}
	r := binutil.NewLittleEndianReader(b)
	return VolumeInformation{
		MajorVersion: r.Byte(8),
		MinorVersion: r.Byte(9),
		Flags:        r.Uint16(10),
	}, nil
}

// ReparsePoint ($REPARSE_POINT) marks a file or directory as a reparse target (a symlink,
// junction, or a third-party filter's tag). Data holds the tag-specific payload uninterpreted.
type ReparsePoint struct {
	Tag  uint32
	Data []byte
}

// ParseReparsePoint decodes a $REPARSE_POINT attribute's resident content.
func ParseReparsePoint(b []byte) (ReparsePoint, error) {
	if len(b) < 8 {
		return ReparsePoint{}, fmt.Errorf("expected at least 8 bytes but got %d", len(b))
	}
	r := binutil.NewLittleEndianReader(b)
	tag := r.Uint32(0)
	dataLength := int(r.Uint16(4))
	if !r.HasLength(8, dataLength) {
		return ReparsePoint{}, fmt.Errorf("reparse data length %d exceeds attribute bounds (%d)", dataLength, len(b))
	}
	return ReparsePoint{Tag: tag, Data: binutil.Duplicate(r.Read(8, dataLength))}, nil
}

// EAInformation ($EA_INFORMATION) summarizes the size of a file's extended attributes, stored
// separately in an $EA attribute.
type EAInformation struct {
	PackedSize   uint16
	NeedEACount  uint16
	UnpackedSize uint32
}

// ParseEAInformation decodes a $EA_INFORMATION attribute's resident content.
func ParseEAInformation(b []byte) (EAInformation, error) {
	if len(b) < 8 {
		return EAInformation{}, fmt.Errorf("expected at least 8 bytes but got %d", len(b))
	}
	r := binutil.NewLittleEndianReader(b)
	return EAInformation{
		PackedSize:   r.Uint16(0),
		NeedEACount:  r.Uint16(2),
		UnpackedSize: r.Uint32(4),
	}, nil
}

// EAEntry is a single OS/2-style extended attribute: an ASCII name and an opaque value.
type EAEntry struct {
	Flags byte
	Name  string
	Value []byte
}

// ParseEA decodes a $EA attribute's resident content into its list of extended attribute
// entries. Each entry is packed as: next-entry-offset(4), flags(1), name-length(1),
// value-length(2), name (name-length bytes, NUL-terminated), value (value-length bytes).
func ParseEA(b []byte) ([]EAEntry, error) {
	var entries []EAEntry
	for len(b) > 0 {
		if len(b) < 9 {
			return entries, fmt.Errorf("EA entry header truncated: %d bytes remaining", len(b))
		}
		r := binutil.NewLittleEndianReader(b)
		nextEntryOffset := int(r.Uint32(0))
		flags := r.Byte(4)
		nameLength := int(r.Byte(5))
		valueLength := int(r.Uint16(6))

		nameEnd := 8 + nameLength
		valueEnd := nameEnd + 1 + valueLength
		if !r.HasLength(8, nameLength) || !r.HasLength(nameEnd+1, valueLength) {
			return entries, fmt.Errorf("EA entry name/value exceeds remaining data (%d)", len(b))
		}

		entries = append(entries, EAEntry{
			Flags: flags,
			Name:  string(r.Read(8, nameLength)),
			Value: binutil.Duplicate(r.Read(nameEnd+1, valueLength)),
		})

		if nextEntryOffset == 0 {
			break
		}
		if nextEntryOffset <= 0 || nextEntryOffset >= len(b) || nextEntryOffset < valueEnd {
			return entries, fmt.Errorf("EA entry next-entry-offset %d is out of range", nextEntryOffset)
		}
		b = r.ReadFrom(nextEntryOffset)
	}
	return entries, nil
}

// Bitmap ($BITMAP) is a raw bit array: for an $INDEX_ALLOCATION's companion $BITMAP, one bit per
// index record slot; for the volume's own $BITMAP entry, one bit per cluster. Decoded opaquely -
// callers interested in individual bits index into Data themselves.
type Bitmap struct {
	Data []byte
}

// ParseBitmap decodes a $BITMAP attribute's resident content.
func ParseBitmap(b []byte) (Bitmap, error) {
	return Bitmap{Data: binutil.Duplicate(b)}, nil
}

// LoggedUtilityStream ($LOGGED_UTILITY_STREAM) carries transactional metadata for NTFS features
// built atop the log (classically EFS's $EFS stream). Decoded opaquely: its internal layout is
// feature-specific and not needed for MFT-level triage.
type LoggedUtilityStream struct {
	Data []byte
}

// ParseLoggedUtilityStream decodes a $LOGGED_UTILITY_STREAM attribute's resident content.
func ParseLoggedUtilityStream(b []byte) (LoggedUtilityStream, error) {
	return LoggedUtilityStream{Data: binutil.Duplicate(b)}, nil
}
