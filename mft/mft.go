// Package mft parses an NTFS Master File Table: individual entries (header, attributes,
// datastreams) and the collection-level relationships between them (base/extension merging, full
// path resolution) needed to present it as a coherent forensic file system view.
package mft

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dfirtools/gomft/binutil"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Source is the byte-addressable, sized input an MFT is built over: a raw $MFT file, a carved
// MFT fragment, or an entire volume image positioned at the MFT's start.
type Source interface {
	io.ReaderAt
	Size() int64
}

var knownEntrySignatures = [][]byte{[]byte("FILE"), []byte("BAAD"), []byte("INDX")}

// candidateEntrySizes are tried, in this order, when Config.EntrySize is zero: the common 1024
// and 4096 first, then the less common sizes seen on older or unusually formatted volumes.
var candidateEntrySizes = []int{1024, 4096, 512, 2048, 256, 8192}

func isKnownEntrySignature(b []byte) bool {
	for _, sig := range knownEntrySignatures {
		if bytes.Equal(b, sig) {
			return true
		}
	}
	return false
}

// detectEntrySize finds the MFT's entry size by locating the second entry's signature: read the
// first entry's signature to confirm src actually starts on an MFT entry, then probe each
// candidate size in turn until a second matching signature turns up at that offset.
func detectEntrySize(src Source) (int, error) {
	first := make([]byte, 4)
	if _, err := src.ReadAt(first, 0); err != nil {
		return 0, &MFTError{Msg: fmt.Sprintf("unable to read first entry signature: %v", err)}
	}
	if !isKnownEntrySignature(first) {
		return 0, &MFTError{Msg: "source does not begin with a known entry signature"}
	}

	buf := make([]byte, 4)
	for _, size := range candidateEntrySizes {
		n, err := src.ReadAt(buf, int64(size))
		if err != nil || n < 4 {
			continue
		}
		if isKnownEntrySignature(buf) {
			return size, nil
		}
	}
	return 0, &MFTError{Msg: "unable to detect MFT entry size from any candidate"}
}

// MFT is a parsed NTFS Master File Table: random access to assembled LogicalEntry values by
// record number, iteration over every base entry, and full path resolution.
type MFT struct {
	src        Source
	cfg        Config
	entrySize  int
	totalSlots uint64

	forwardExt map[uint64][]uint64
	reverseExt map[uint64]uint64
	empty      map[uint64]bool
	validCount int

	cache *lru.Cache[uint64, *LogicalEntry]
}

// New builds an MFT over src using cfg. When cfg.EntrySize is zero the entry size is
// autodetected. When cfg.CreateInitialInformation is set, a stub scan runs immediately to
// discover base/extension relationships and empty slots; this is required before Iterate can be
// used and before Get will reject extension record numbers.
func New(src Source, cfg Config) (*MFT, error) {
	m := &MFT{src: src, cfg: cfg}

	entrySize := cfg.EntrySize
	if entrySize == 0 {
		detected, err := detectEntrySize(src)
		if err != nil {
			return nil, err
		}
		entrySize = detected
	}
	m.entrySize = entrySize

	size := src.Size()
	if size <= 0 || size%int64(entrySize) != 0 {
		return nil, &MFTError{Msg: fmt.Sprintf("source size %d is not a positive multiple of entry size %d", size, entrySize)}
	}
	m.totalSlots = uint64(size / int64(entrySize))

	if cfg.CreateInitialInformation {
		forward, reverse, empty, validCount, err := scanStubs(src, entrySize, int(m.totalSlots))
		if err != nil {
			return nil, err
		}
		m.forwardExt, m.reverseExt, m.empty, m.validCount = forward, reverse, empty, validCount
	}

	cache, err := newEntryCache(cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	m.cache = cache

	return m, nil
}

// EntrySize returns the MFT entry size this MFT was built with (detected or configured).
func (m *MFT) EntrySize() int {
	return m.entrySize
}

// Get returns the fully assembled LogicalEntry for recordNumber, merging in every extension entry
// discovered for it during the initial stub scan. Results are served from and populated into the
// entry cache when one is configured. When Config.CreateInitialInformation is set, Get rejects
// empty and extension record numbers outright rather than attempting to parse them as bases.
func (m *MFT) Get(recordNumber uint64) (*LogicalEntry, error) {
	if m.cfg.CreateInitialInformation {
		if m.empty[recordNumber] {
			return nil, &MFTError{Msg: fmt.Sprintf("entry %d is empty", recordNumber)}
		}
		if _, isExtension := m.reverseExt[recordNumber]; isExtension {
			return nil, &MFTError{Msg: fmt.Sprintf("entry %d is an extension, not a base entry", recordNumber)}
		}
	}

	if m.cache != nil {
		if entry, ok := m.cache.Get(recordNumber); ok {
			return entry, nil
		}
	}

	entry, err := m.assembleEntry(recordNumber)
	if err != nil {
		return nil, err
	}

	if m.cache != nil {
		m.cache.Add(recordNumber, entry)
	}
	return entry, nil
}

func (m *MFT) assembleEntry(recordNumber uint64) (*LogicalEntry, error) {
	header, attrs, streams, warnings, err := m.readOneEntry(recordNumber)
	if err != nil {
		return nil, err
	}

	if header.RecordNumber != recordNumber {
		msg := fmt.Sprintf("entry reports self record number %d but was read from slot %d", header.RecordNumber, recordNumber)
		if m.cfg.StrictSelfRecordNumber {
			return nil, &EntryError{RecordNumber: recordNumber, Msg: msg}
		}
		warnings = append(warnings, Warning{RecordNumber: recordNumber, Msg: msg})
	}

	entry := &LogicalEntry{Header: header, Attributes: attrs, Datastreams: streams, Warnings: warnings}

	for _, ext := range m.forwardExt[recordNumber] {
		_, extAttrs, extStreams, extWarnings, err := m.readOneEntry(ext)
		if err != nil {
			return nil, err
		}
		for t, as := range extAttrs {
			entry.Attributes[t] = append(entry.Attributes[t], as...)
		}
		for _, s := range extStreams {
			base := findOrCreateStream(&entry.Datastreams, s.Name)
			if err := mergeDatastream(base, s); err != nil {
				return nil, err
			}
		}
		entry.Warnings = append(entry.Warnings, extWarnings...)
	}

	return entry, nil
}

func (m *MFT) readOneEntry(recordNumber uint64) (EntryHeader, map[AttributeType][]Attribute, []*Datastream, []Warning, error) {
	buf := make([]byte, m.entrySize)
	if _, err := m.src.ReadAt(buf, int64(recordNumber)*int64(m.entrySize)); err != nil {
		return EntryHeader{}, nil, nil, nil, &EntryError{RecordNumber: recordNumber, Msg: fmt.Sprintf("unable to read entry: %v", err)}
	}

	if m.cfg.ApplyFixupArray {
		if len(buf) < 8 {
			return EntryHeader{}, nil, nil, nil, &EntryError{RecordNumber: recordNumber, Msg: "entry too small to read fixup header"}
		}
		r := binutil.NewLittleEndianReader(buf)
		fxOffset := int(r.Uint16(4))
		fxCount := int(r.Uint16(6))
		if err := applyFixUp(buf, fxOffset, fxCount, m.entrySize); err != nil {
			if fe, ok := err.(*FixUpError); ok {
				fe.RecordNumber = recordNumber
			}
			return EntryHeader{}, nil, nil, nil, err
		}
	}

	header, err := parseEntryHeader(buf, &m.cfg)
	if err != nil {
		if he, ok := err.(*HeaderError); ok {
			he.RecordNumber = recordNumber
		}
		return EntryHeader{}, nil, nil, nil, err
	}

	if int(header.AllocatedSize) != len(buf) {
		return header, nil, nil, nil, &EntryError{RecordNumber: recordNumber, Msg: fmt.Sprintf("buffer length %d does not match allocated length %d", len(buf), header.AllocatedSize), Raw: binutil.Duplicate(buf)}
	}

	if header.FirstAttributeOffset > len(buf) {
		return header, nil, nil, nil, &EntryError{RecordNumber: recordNumber, Msg: fmt.Sprintf("first attribute offset %d exceeds entry size %d", header.FirstAttributeOffset, len(buf))}
	}

	attrs, streams, warnings, err := walkAttributes(buf[header.FirstAttributeOffset:], recordNumber, &m.cfg)
	if err != nil {
		return header, nil, nil, nil, err
	}

	return header, attrs, streams, warnings, nil
}

// Iterate returns the record numbers of every base entry (i.e. every slot that is neither empty
// nor an extension of another entry), in ascending order. Requires
// Config.CreateInitialInformation.
func (m *MFT) Iterate() ([]uint64, error) {
	if !m.cfg.CreateInitialInformation {
		return nil, &MFTError{Msg: "Iterate requires Config.CreateInitialInformation"}
	}

	out := make([]uint64, 0, m.validCount)
	for i := uint64(0); i < m.totalSlots; i++ {
		if m.empty[i] {
			continue
		}
		if _, isExtension := m.reverseExt[i]; isExtension {
			continue
		}
		out = append(out, i)
	}

	if len(out) != m.validCount {
		return nil, &MFTError{Msg: fmt.Sprintf("iteration produced %d base entries but the stub scan counted %d", len(out), m.validCount)}
	}
	return out, nil
}

// GetFullPath resolves recordNumber's full path by walking FILE_NAME parent references up to the
// root directory (record number 5). It returns isOrphan=true and the partial path accumulated so
// far as soon as a parent's sequence number no longer matches the sequence number recorded in the
// child's FILE_NAME - meaning the parent record has since been reused for a different file and
// the chain can go no further. Path components are joined with a backslash, matching NTFS
// convention; the root entry itself resolves to its own FILE_NAME rather than an empty string.
func (m *MFT) GetFullPath(recordNumber uint64) (isOrphan bool, path string, err error) {
	var parts []string
	current := recordNumber
	var expectedSequence uint16
	haveExpectedSequence := false

	for {
		entry, err := m.Get(current)
		if err != nil {
			return false, "", err
		}

		if haveExpectedSequence && entry.Header.SequenceNumber != expectedSequence {
			return true, strings.Join(parts, `\`), nil
		}

		fn, _, ok := entry.MainFileName()
		if !ok {
			return false, "", &EntryError{RecordNumber: current, Msg: "entry has no FILE_NAME attribute"}
		}

		parts = append([]string{fn.Name}, parts...)

		if fn.ParentFileReference.RecordNumber == 5 {
			return false, strings.Join(parts, `\`), nil
		}

		current = fn.ParentFileReference.RecordNumber
		expectedSequence = fn.ParentFileReference.SequenceNumber
		haveExpectedSequence = true
	}
}
