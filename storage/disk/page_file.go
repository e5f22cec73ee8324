package disk

import (
	"fmt"
	"os"
	"sync/atomic"
)

const PAGE_SIZE = 4096

// PageID addresses a page inside a PageFile. Page numbers start at 1 so
// that 0 can serve as the "no page" sentinel in node child arrays and
// sibling pointers.
type PageID uint32

const INVALID_PAGE_ID PageID = 0

var nextFileId atomic.Int64

// PageFile is a file of fixed-size pages. It only moves whole pages;
// caching and pinning live in the buffer package.
type PageFile struct {
	id       int64
	name     string
	file     *os.File
	numPages uint32
}

// Create creates a fresh page file. It fails if a file with the same
// name already exists.
func Create(name string) (*PageFile, error) {
	file, err := os.OpenFile(name, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("error creating page file %s: %v", name, err)
	}

	return &PageFile{
		id:   nextFileId.Add(1),
		name: name,
		file: file,
	}, nil
}

// Open opens an existing page file.
func Open(name string) (*PageFile, error) {
	file, err := os.OpenFile(name, os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("error opening page file %s: %v", name, err)
	}

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("error getting size of %s: %v", name, err)
	}

	return &PageFile{
		id:       nextFileId.Add(1),
		name:     name,
		file:     file,
		numPages: uint32(info.Size() / PAGE_SIZE),
	}, nil
}

func Exists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

func Remove(name string) error {
	return os.Remove(name)
}

// AllocatePage extends the file with one zeroed page and returns its id.
func (f *PageFile) AllocatePage() (PageID, error) {
	f.numPages += 1
	pageNo := PageID(f.numPages)

	blank := make([]byte, PAGE_SIZE)
	if err := f.WritePage(pageNo, blank); err != nil {
		f.numPages -= 1
		return INVALID_PAGE_ID, err
	}

	return pageNo, nil
}

func (f *PageFile) ReadPage(pageNo PageID, buf []byte) error {
	if _, err := f.file.ReadAt(buf[:PAGE_SIZE], f.offset(pageNo)); err != nil {
		return fmt.Errorf("error reading page %d of %s: %v", pageNo, f.name, err)
	}

	return nil
}

func (f *PageFile) WritePage(pageNo PageID, buf []byte) error {
	if _, err := f.file.WriteAt(buf[:PAGE_SIZE], f.offset(pageNo)); err != nil {
		return fmt.Errorf("error writing page %d of %s: %v", pageNo, f.name, err)
	}

	return nil
}

func (f *PageFile) offset(pageNo PageID) int64 {
	return int64(pageNo-1) * PAGE_SIZE
}

func (f *PageFile) NumPages() uint32 {
	return f.numPages
}

func (f *PageFile) Id() int64 {
	return f.id
}

func (f *PageFile) Name() string {
	return f.name
}

func (f *PageFile) Sync() error {
	return f.file.Sync()
}

func (f *PageFile) Close() error {
	return f.file.Close()
}
