// Package source provides byte-addressable, sized inputs an mft.MFT can be built over: a
// memory-mapped file for fast random access to large volume images, or a plain *os.File when
// memory-mapping isn't available or wanted.
package source

import (
	"fmt"
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// MappedFile is a memory-mapped, read-only file source.
type MappedFile struct {
	f    *os.File
	data mmap.MMap
}

// OpenMapped opens name and memory-maps its entire contents read-only.
func OpenMapped(name string) (*MappedFile, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s: %w", name, err)
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("unable to memory-map %s: %w", name, err)
	}

	return &MappedFile{f: f, data: data}, nil
}

// ReadAt implements io.ReaderAt by slicing directly into the mapped region.
func (m *MappedFile) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(m.data)) {
		return 0, fmt.Errorf("offset %d out of range (size %d)", off, len(m.data))
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, fmt.Errorf("short read at offset %d: got %d of %d bytes", off, n, len(p))
	}
	return n, nil
}

// Size returns the mapped region's length in bytes.
func (m *MappedFile) Size() int64 {
	return int64(len(m.data))
}

// Close unmaps the region and closes the underlying file.
func (m *MappedFile) Close() error {
	if m.data != nil {
		if err := m.data.Unmap(); err != nil {
			return err
		}
	}
	return m.f.Close()
}

// PlainFile is a *os.File-backed source, used when memory-mapping isn't available (e.g. a
// special device file) or wanted.
type PlainFile struct {
	f    *os.File
	size int64
}

// OpenPlain opens name for reading and stats it to determine its size.
func OpenPlain(name string) (*PlainFile, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s: %w", name, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("unable to stat %s: %w", name, err)
	}
	return &PlainFile{f: f, size: info.Size()}, nil
}

// ReadAt implements io.ReaderAt directly via the underlying file.
func (p *PlainFile) ReadAt(b []byte, off int64) (int, error) {
	return p.f.ReadAt(b, off)
}

// Size returns the file's size in bytes as of when it was opened.
func (p *PlainFile) Size() int64 {
	return p.size
}

// Close closes the underlying file.
func (p *PlainFile) Close() error {
	return p.f.Close()
}

// InMemory is a byte-slice-backed source, used for tests and for carved/in-memory MFT fragments.
type InMemory struct {
	data []byte
}

// NewInMemory wraps data as a Source. data is not copied.
func NewInMemory(data []byte) *InMemory {
	return &InMemory{data: data}
}

// ReadAt implements io.ReaderAt by slicing directly into data.
func (m *InMemory) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(m.data)) {
		return 0, fmt.Errorf("offset %d out of range (size %d)", off, len(m.data))
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, fmt.Errorf("short read at offset %d: got %d of %d bytes", off, n, len(p))
	}
	return n, nil
}

// Size returns len(data).
func (m *InMemory) Size() int64 {
	return int64(len(m.data))
}
