package main

import (
	"fmt"
	"io"

	"github.com/dfirtools/gomft/bootsect"
	"github.com/dfirtools/gomft/fragment"
	"github.com/dfirtools/gomft/mft"
	"github.com/dfirtools/gomft/source"
)

const supportedOemId = "NTFS    "

// sourceReadSeeker adapts a mft.Source (ReadAt + Size) to the io.ReadSeeker fragment.NewReader
// needs, so the volume can be opened once - memory-mapped, by default - and used both for direct
// offset reads and for following a datastream's fragment list.
type sourceReadSeeker struct {
	src mft.Source
	pos int64
}

func (s *sourceReadSeeker) Read(p []byte) (int, error) {
	n, err := s.src.ReadAt(p, s.pos)
	s.pos += int64(n)
	if err != nil && n == len(p) {
		err = nil
	}
	return n, err
}

func (s *sourceReadSeeker) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = s.pos + offset
	case io.SeekEnd:
		target = s.src.Size() + offset
	default:
		return 0, fmt.Errorf("unsupported whence %d", whence)
	}
	if target < 0 {
		return 0, fmt.Errorf("negative seek position %d", target)
	}
	s.pos = target
	return s.pos, nil
}

// locateMFT memory-maps the NTFS volume at path, parses its boot sector, reads the $MFT's own
// entry (record 0, found directly from the boot sector's MftClusterNumber) to recover the $MFT's
// own $DATA run list, reconstitutes the full (possibly fragmented) MFT table from the volume via
// that run list, and builds an mft.MFT over the result.
func locateMFT(path string) (*mft.MFT, bootsect.BootSector, error) {
	vol, err := source.OpenMapped(path)
	if err != nil {
		return nil, bootsect.BootSector{}, fmt.Errorf("unable to open volume %s: %w", path, err)
	}
	defer vol.Close()

	printVerbose("reading boot sector\n")
	bootSectorData := make([]byte, 512)
	if _, err := vol.ReadAt(bootSectorData, 0); err != nil {
		return nil, bootsect.BootSector{}, fmt.Errorf("unable to read boot sector: %w", err)
	}

	bootSector, err := bootsect.Parse(bootSectorData)
	if err != nil {
		return nil, bootsect.BootSector{}, fmt.Errorf("unable to parse boot sector: %w", err)
	}
	if bootSector.OemId != supportedOemId {
		return nil, bootSector, fmt.Errorf("unknown OemId (file system type) %q (expected %q)", bootSector.OemId, supportedOemId)
	}

	bytesPerCluster := bootSector.BytesPerSector * bootSector.SectorsPerCluster
	mftPosInBytes := int64(bootSector.MftClusterNumber) * int64(bytesPerCluster)
	entrySize := bootSector.FileRecordSegmentSizeInBytes

	printVerbose("reading $MFT's own entry at position %d (entry size %d bytes)\n", mftPosInBytes, entrySize)
	mftEntryData := make([]byte, entrySize)
	if _, err := vol.ReadAt(mftEntryData, mftPosInBytes); err != nil {
		return nil, bootSector, fmt.Errorf("unable to read $MFT entry: %w", err)
	}

	selfCfg := mft.DefaultConfig()
	selfCfg.EntrySize = entrySize
	selfCfg.CreateInitialInformation = false
	selfMFT, err := mft.New(source.NewInMemory(mftEntryData), selfCfg)
	if err != nil {
		return nil, bootSector, fmt.Errorf("unable to build single-entry MFT for $MFT record: %w", err)
	}

	selfEntry, err := selfMFT.Get(0)
	if err != nil {
		return nil, bootSector, fmt.Errorf("unable to parse $MFT's own entry: %w", err)
	}

	var unnamed *mft.Datastream
	for _, ds := range selfEntry.Datastreams {
		if ds.Name == "" {
			unnamed = ds
			break
		}
	}
	if unnamed == nil {
		return nil, bootSector, fmt.Errorf("$MFT entry has no unnamed $DATA stream")
	}
	if unnamed.Resident {
		return nil, bootSector, fmt.Errorf("$MFT's $DATA stream is unexpectedly resident")
	}

	printVerbose("reconstituting %d bytes of $MFT table from %d run group(s)\n", unnamed.Size, len(unnamed.RunGroups()))
	fragments := unnamed.Fragments(bytesPerCluster)
	mftTable := make([]byte, unnamed.Size)
	if _, err := io.ReadFull(fragment.NewReader(&sourceReadSeeker{src: vol}, fragments), mftTable); err != nil {
		return nil, bootSector, fmt.Errorf("unable to read $MFT table data: %w", err)
	}

	cfg := mft.DefaultConfig()
	cfg.EntrySize = entrySize
	m, err := mft.New(source.NewInMemory(mftTable), cfg)
	if err != nil {
		return nil, bootSector, fmt.Errorf("unable to build MFT: %w", err)
	}
	return m, bootSector, nil
}
