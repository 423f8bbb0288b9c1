// Package pex provides PE loading helpers for 32-bit x86 game executables.
package pex

import (
	"debug/pe"
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	ErrNotPE     = errors.New("pex: not a PE file")
	ErrNotI386   = errors.New("pex: not i386 (IMAGE_FILE_MACHINE_I386)")
	ErrNot32Bit  = errors.New("pex: not a PE32 image")
	ErrNoSection = errors.New("pex: no section covers address")
)

// File wraps a debug/pe.File with virtual address mapping.
type File struct {
	PE        *pe.File
	raw       io.ReaderAt
	closer    io.Closer
	size      int64
	imageBase uint32
}

// Open opens a PE file and validates it is a 32-bit i386 image.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pex: open: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("pex: stat: %w", err)
	}

	pf, err := NewFile(f, info.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	pf.closer = f
	return pf, nil
}

// NewFile reads a PE image from r, which holds size bytes.
func NewFile(r io.ReaderAt, size int64) (*File, error) {
	pf, err := pe.NewFile(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotPE, err)
	}
	if pf.Machine != pe.IMAGE_FILE_MACHINE_I386 {
		pf.Close()
		return nil, ErrNotI386
	}
	oh, ok := pf.OptionalHeader.(*pe.OptionalHeader32)
	if !ok {
		pf.Close()
		return nil, ErrNot32Bit
	}
	return &File{PE: pf, raw: r, size: size, imageBase: oh.ImageBase}, nil
}

// Close releases resources.
func (f *File) Close() error {
	err := f.PE.Close()
	if f.closer != nil {
		if cerr := f.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// FileSize returns the size of the underlying file.
func (f *File) FileSize() int64 { return f.size }

// ImageBase returns the preferred load address.
func (f *File) ImageBase() uint32 { return f.imageBase }

// section returns the section whose virtual range covers va.
func (f *File) section(va uint32) (*pe.Section, uint32, error) {
	if va < f.imageBase {
		return nil, 0, fmt.Errorf("%w: VA 0x%x below image base 0x%x", ErrNoSection, va, f.imageBase)
	}
	rva := va - f.imageBase
	for _, s := range f.PE.Sections {
		span := s.VirtualSize
		if span == 0 {
			span = s.Size
		}
		if rva >= s.VirtualAddress && rva < s.VirtualAddress+span {
			return s, rva - s.VirtualAddress, nil
		}
	}
	return nil, 0, fmt.Errorf("%w: VA 0x%x", ErrNoSection, va)
}

// VAToFileOffset converts a virtual address to a file offset using the
// section table. Addresses in uninitialized tails have no file offset.
func (f *File) VAToFileOffset(va uint32) (int64, error) {
	s, delta, err := f.section(va)
	if err != nil {
		return 0, err
	}
	if delta >= s.Size {
		return 0, fmt.Errorf("pex: VA 0x%x is past the raw data of %s", va, s.Name)
	}
	offset := int64(s.Offset) + int64(delta)
	if offset >= f.size {
		return 0, fmt.Errorf("pex: VA 0x%x maps to offset 0x%x beyond file size 0x%x", va, offset, f.size)
	}
	return offset, nil
}

// Executable reports whether va lies in an executable section.
func (f *File) Executable(va uint32) bool {
	s, _, err := f.section(va)
	if err != nil {
		return false
	}
	return s.Characteristics&pe.IMAGE_SCN_MEM_EXECUTE != 0
}

// ReadBytesAtVA reads up to n bytes starting at the given virtual address.
func (f *File) ReadBytesAtVA(va uint32, n int) ([]byte, error) {
	off, err := f.VAToFileOffset(va)
	if err != nil {
		return nil, err
	}
	// Clamp to file size.
	avail := f.size - off
	if int64(n) > avail {
		n = int(avail)
	}
	buf := make([]byte, n)
	_, err = f.raw.ReadAt(buf, off)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("pex: read at 0x%x: %w", off, err)
	}
	return buf, nil
}

// SectionInfo describes one section header.
type SectionInfo struct {
	Name    string
	VA      uint32
	Size    uint32
	RawSize uint32
	Offset  uint32
	Exec    bool
}

// Sections returns the section table with absolute virtual addresses.
func (f *File) Sections() []SectionInfo {
	out := make([]SectionInfo, 0, len(f.PE.Sections))
	for _, s := range f.PE.Sections {
		out = append(out, SectionInfo{
			Name:    s.Name,
			VA:      f.imageBase + s.VirtualAddress,
			Size:    s.VirtualSize,
			RawSize: s.Size,
			Offset:  s.Offset,
			Exec:    s.Characteristics&pe.IMAGE_SCN_MEM_EXECUTE != 0,
		})
	}
	return out
}
