package mft

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/dfirtools/gomft/binutil"
	"github.com/dfirtools/gomft/utf16"
)

// FileAttribute is a bit mask of the DOS/Windows file attributes stored in STANDARD_INFORMATION
// and FILE_NAME.
type FileAttribute uint32

const (
	FileAttributeReadOnly          FileAttribute = 0x0001
	FileAttributeHidden            FileAttribute = 0x0002
	FileAttributeSystem            FileAttribute = 0x0004
	FileAttributeArchive           FileAttribute = 0x0020
	FileAttributeDevice            FileAttribute = 0x0040
	FileAttributeNormal            FileAttribute = 0x0080
	FileAttributeTemporary         FileAttribute = 0x0100
	FileAttributeSparseFile        FileAttribute = 0x0200
	FileAttributeReparsePoint      FileAttribute = 0x0400
	FileAttributeCompressed        FileAttribute = 0x0800
	FileAttributeOffline           FileAttribute = 0x1000
	FileAttributeNotContentIndexed FileAttribute = 0x2000
	FileAttributeEncrypted         FileAttribute = 0x4000
)

// recognisedAttributeTypes lists the attribute types with a registered content decoder. $DATA is
// deliberately excluded: its content is routed to a Datastream (C8), never decoded as a typed
// value.
var recognisedAttributeTypes = []AttributeType{
	AttributeTypeStandardInformation,
	AttributeTypeAttributeList,
	AttributeTypeFileName,
	AttributeTypeObjectId,
	AttributeTypeSecurityDescriptor,
	AttributeTypeVolumeName,
	AttributeTypeVolumeInformation,
	AttributeTypeIndexRoot,
	AttributeTypeBitmap,
	AttributeTypeReparsePoint,
	AttributeTypeEAInformation,
	AttributeTypeEA,
	AttributeTypeLoggedUtilityStream,
}

type contentDecoder func(b []byte) (interface{}, error)

var contentDecoders = map[AttributeType]contentDecoder{
	AttributeTypeStandardInformation: func(b []byte) (interface{}, error) { return ParseStandardInformation(b) },
	AttributeTypeFileName:            func(b []byte) (interface{}, error) { return ParseFileName(b) },
	AttributeTypeAttributeList: func(b []byte) (interface{}, error) {
		return ParseAttributeList(b)
	},
	AttributeTypeObjectId:           func(b []byte) (interface{}, error) { return ParseObjectID(b) },
	AttributeTypeSecurityDescriptor: func(b []byte) (interface{}, error) { return ParseSecurityDescriptor(b) },
	AttributeTypeVolumeName:         func(b []byte) (interface{}, error) { return ParseVolumeName(b) },
	AttributeTypeVolumeInformation:  func(b []byte) (interface{}, error) { return ParseVolumeInformation(b) },
	AttributeTypeIndexRoot:          func(b []byte) (interface{}, error) { return ParseIndexRoot(b) },
	AttributeTypeBitmap:             func(b []byte) (interface{}, error) { return ParseBitmap(b) },
	AttributeTypeReparsePoint:       func(b []byte) (interface{}, error) { return ParseReparsePoint(b) },
	AttributeTypeEAInformation:      func(b []byte) (interface{}, error) { return ParseEAInformation(b) },
	AttributeTypeEA:                 func(b []byte) (interface{}, error) { return ParseEA(b) },
	AttributeTypeLoggedUtilityStream: func(b []byte) (interface{}, error) {
		return ParseLoggedUtilityStream(b)
	},
}

// decodeContent dispatches a resident attribute's raw bytes to its type's registered decoder, if
// one is registered and enabled for cfg. It returns (nil, nil) for unrecognised or disabled
// types: that is not an error, just "nothing decoded".
func decodeContent(attrType AttributeType, b []byte, cfg *Config) (interface{}, error) {
	if !cfg.attributeEnabled(attrType) {
		return nil, nil
	}
	decoder, ok := contentDecoders[attrType]
	if !ok {
		return nil, nil
	}
	return decoder(b)
}

// StandardInformation ($STANDARD_INFORMATION) carries an entry's core timestamps, DOS
// attributes, and (NTFS 3.0+) quota/security/USN bookkeeping fields.
type StandardInformation struct {
	Creation                time.Time
	FileLastModified        time.Time
	MftLastModified         time.Time
	LastAccess              time.Time
	FileAttributes          FileAttribute
	MaximumNumberOfVersions uint32
	VersionNumber           uint32
	ClassId                 uint32
	OwnerId                 uint32
	SecurityId              uint32
	QuotaCharged            uint64
	UpdateSequenceNumber    uint64
}

// ParseStandardInformation decodes a $STANDARD_INFORMATION attribute's resident content. The
// NTFS 3.0+ fields (OwnerId onward) are optional; pre-3.0 volumes write a shorter attribute and
// those fields are left zero.
func ParseStandardInformation(b []byte) (StandardInformation, error) {
	if len(b) < 48 {
		return StandardInformation{}, fmt.Errorf("expected at least 48 bytes but got %d", len(b))
	}

	r := binutil.NewLittleEndianReader(b)
	var ownerId, securityId uint32
	var quotaCharged, updateSequenceNumber uint64
	if r.HasLength(0x30, 4) {
		ownerId = r.Uint32(0x30)
	}
	if r.HasLength(0x34, 4) {
		securityId = r.Uint32(0x34)
	}
	if r.HasLength(0x38, 8) {
		quotaCharged = r.Uint64(0x38)
	}
	if r.HasLength(0x40, 8) {
		updateSequenceNumber = r.Uint64(0x40)
	}

	return StandardInformation{
		Creation:                ConvertFileTime(r.Uint64(0x00)),
		FileLastModified:        ConvertFileTime(r.Uint64(0x08)),
		MftLastModified:         ConvertFileTime(r.Uint64(0x10)),
		LastAccess:              ConvertFileTime(r.Uint64(0x18)),
		FileAttributes:          FileAttribute(r.Uint32(0x20)),
		MaximumNumberOfVersions: r.Uint32(0x24),
		VersionNumber:           r.Uint32(0x28),
		ClassId:                 r.Uint32(0x2C),
		OwnerId:                 ownerId,
		SecurityId:              securityId,
		QuotaCharged:            quotaCharged,
		UpdateSequenceNumber:    updateSequenceNumber,
	}, nil
}

// FileNameNamespace distinguishes the long ("Win32"), short ("DOS"), and combined namespaces a
// FILE_NAME can belong to.
type FileNameNamespace byte

const (
	FileNameNamespacePosix   FileNameNamespace = 0
	FileNameNamespaceWin32   FileNameNamespace = 1
	FileNameNamespaceDos     FileNameNamespace = 2
	FileNameNamespaceWin32Dos FileNameNamespace = 3
)

// FileName ($FILE_NAME) records one hard-link's name, its parent directory, its own (unreliable)
// copy of core STANDARD_INFORMATION fields, and the namespace the name was recorded under.
type FileName struct {
	ParentFileReference FileReference
	Creation            time.Time
	FileLastModified    time.Time
	MftLastModified     time.Time
	LastAccess          time.Time
	AllocatedSize       uint64
	RealSize            uint64
	Flags               FileAttribute
	ReparseTag          uint32
	Namespace           FileNameNamespace
	Name                string
}

// ParseFileName decodes a $FILE_NAME attribute's resident content.
func ParseFileName(b []byte) (FileName, error) {
	if len(b) < 66 {
		return FileName{}, fmt.Errorf("expected at least 66 bytes but got %d", len(b))
	}

	r := binutil.NewLittleEndianReader(b)
	nameLengthChars := int(r.Byte(0x40))
	nameLengthBytes := nameLengthChars * 2
	if !r.HasLength(0x42, nameLengthBytes) {
		return FileName{}, fmt.Errorf("expected at least %d bytes but got %d", 0x42+nameLengthBytes, len(b))
	}

	name, err := utf16.DecodeString(r.Read(0x42, nameLengthBytes), binary.LittleEndian)
	if err != nil {
		return FileName{}, fmt.Errorf("unable to decode file name: %w", err)
	}

	return FileName{
		ParentFileReference: ParseFileReference(r.Uint64(0x00)),
		Creation:            ConvertFileTime(r.Uint64(0x08)),
		FileLastModified:    ConvertFileTime(r.Uint64(0x10)),
		MftLastModified:     ConvertFileTime(r.Uint64(0x18)),
		LastAccess:          ConvertFileTime(r.Uint64(0x20)),
		AllocatedSize:       r.Uint64(0x28),
		RealSize:            r.Uint64(0x30),
		Flags:               FileAttribute(r.Uint32(0x38)),
		ReparseTag:          r.Uint32(0x3C),
		Namespace:           FileNameNamespace(r.Byte(0x41)),
		Name:                name,
	}, nil
}

// AttributeListEntry is one entry of an $ATTRIBUTE_LIST: a pointer to where one of an entry's
// attributes actually lives, which may be the base entry itself or one of its extensions.
type AttributeListEntry struct {
	Type                AttributeType
	Name                string
	StartingVCN         uint64
	BaseRecordReference FileReference
	AttributeId         uint16
}

// ParseAttributeList decodes a $ATTRIBUTE_LIST attribute's resident content into its entries.
func ParseAttributeList(b []byte) ([]AttributeListEntry, error) {
	if len(b) < 26 {
		return nil, fmt.Errorf("expected at least 26 bytes but got %d", len(b))
	}

	var entries []AttributeListEntry
	for len(b) > 0 {
		r := binutil.NewLittleEndianReader(b)
		entryLength := int(r.Uint16(0x04))
		if entryLength <= 0 || entryLength > len(b) {
			return entries, fmt.Errorf("attribute list entry length %d exceeds remaining data (%d)", entryLength, len(b))
		}

		nameLength := int(r.Byte(0x06))
		var name string
		if nameLength != 0 {
			nameOffset := int(r.Byte(0x07))
			if !r.HasLength(nameOffset, nameLength*2) {
				return entries, fmt.Errorf("attribute list entry name exceeds entry bounds")
			}
			decoded, err := utf16.DecodeString(r.Read(nameOffset, nameLength*2), binary.LittleEndian)
			if err != nil {
				return entries, fmt.Errorf("unable to decode attribute list entry name: %w", err)
			}
			name = decoded
		}

		entries = append(entries, AttributeListEntry{
			Type:                AttributeType(r.Uint32(0x00)),
			Name:                name,
			StartingVCN:         r.Uint64(0x08),
			BaseRecordReference: ParseFileReference(r.Uint64(0x10)),
			AttributeId:         r.Uint16(0x18),
		})
		b = r.ReadFrom(entryLength)
	}
	return entries, nil
}

// CollationType identifies the sort order of an index's entries.
type CollationType uint32

const (
	CollationTypeBinary            CollationType = 0x00000000
	CollationTypeFileName          CollationType = 0x00000001
	CollationTypeUnicodeString     CollationType = 0x00000002
	CollationTypeNtofsULong        CollationType = 0x00000010
	CollationTypeNtofsSid          CollationType = 0x00000011
	CollationTypeNtofsSecurityHash CollationType = 0x00000012
	CollationTypeNtofsUlongs       CollationType = 0x00000013
)

// IndexRoot ($INDEX_ROOT) is the always-resident head of a directory's B-tree index; Entries
// holds whatever entries fit in the root node before overflowing into $INDEX_ALLOCATION.
type IndexRoot struct {
	AttributeType     AttributeType
	CollationType     CollationType
	BytesPerRecord    uint32
	ClustersPerRecord uint32
	Flags             uint32
	Entries           []IndexEntry
}

// ParseIndexRoot decodes an $INDEX_ROOT attribute's resident content. Only indexes over the
// FILE_NAME attribute (directory indexes) are supported; an index of any other attribute type is
// rejected since its entry payload isn't a FILE_NAME.
func ParseIndexRoot(b []byte) (IndexRoot, error) {
	if len(b) < 32 {
		return IndexRoot{}, fmt.Errorf("expected at least 32 bytes but got %d", len(b))
	}
	r := binutil.NewLittleEndianReader(b)
	attributeType := AttributeType(r.Uint32(0x00))
	if attributeType != AttributeTypeFileName {
		return IndexRoot{}, fmt.Errorf("unsupported indexed attribute type %d (%s) in $INDEX_ROOT", attributeType, attributeType.Name())
	}

	totalSize := int(r.Uint32(0x14))
	if totalSize < 16 || !r.HasLength(0x20, totalSize-16) {
		return IndexRoot{}, fmt.Errorf("index entry area size %d exceeds attribute bounds (%d)", totalSize, len(b))
	}

	entries, err := parseIndexEntries(r.Read(0x20, totalSize-16))
	if err != nil {
		return IndexRoot{}, fmt.Errorf("error parsing index entries: %w", err)
	}

	return IndexRoot{
		AttributeType:     attributeType,
		CollationType:     CollationType(r.Uint32(0x04)),
		BytesPerRecord:    r.Uint32(0x08),
		ClustersPerRecord: r.Uint32(0x0C),
		Flags:             r.Uint32(0x1C),
		Entries:           entries,
	}, nil
}

// IndexEntry is one entry of a directory index: a reference to the entry it names, that entry's
// FILE_NAME record as recorded in the index, and (for non-leaf entries) the VCN of the
// $INDEX_ALLOCATION sub-node below it.
type IndexEntry struct {
	FileReference  FileReference
	Flags          uint32
	FileName       FileName
	HasFileName    bool
	HasSubNode     bool
	SubNodeVCN     uint64
}

func parseIndexEntries(b []byte) ([]IndexEntry, error) {
	var entries []IndexEntry
	for len(b) > 0 {
		if len(b) < 16 {
			return entries, fmt.Errorf("index entry header truncated: %d bytes remaining", len(b))
		}
		r := binutil.NewLittleEndianReader(b)
		entryLength := int(r.Uint16(0x08))
		if entryLength < 16 || entryLength > len(b) {
			return entries, fmt.Errorf("index entry length %d exceeds remaining data (%d)", entryLength, len(b))
		}

		flags := r.Uint32(0x0C)
		isLastEntryInNode := flags&0x2 != 0
		pointsToSubNode := flags&0x1 != 0
		contentLength := int(r.Uint16(0x0A))

		var fileName FileName
		hasFileName := contentLength != 0 && !isLastEntryInNode
		if hasFileName {
			if !r.HasLength(0x10, contentLength) {
				return entries, fmt.Errorf("index entry FILE_NAME content exceeds entry bounds")
			}
			parsed, err := ParseFileName(r.Read(0x10, contentLength))
			if err != nil {
				return entries, fmt.Errorf("error parsing $FILE_NAME in index entry: %w", err)
			}
			fileName = parsed
		}

		var subNodeVCN uint64
		if pointsToSubNode {
			if !r.HasLength(entryLength-8, 8) {
				return entries, fmt.Errorf("index entry sub-node VCN exceeds entry bounds")
			}
			subNodeVCN = r.Uint64(entryLength - 8)
		}

		entries = append(entries, IndexEntry{
			FileReference: ParseFileReference(r.Uint64(0x00)),
			Flags:         flags,
			FileName:      fileName,
			HasFileName:   hasFileName,
			HasSubNode:    pointsToSubNode,
			SubNodeVCN:    subNodeVCN,
		})
		if isLastEntryInNode {
			break
		}
		b = r.ReadFrom(entryLength)
	}
	return entries, nil
}
