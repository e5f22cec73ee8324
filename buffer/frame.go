package buffer

import (
	"github.com/jobala/faharasa/storage/disk"
)

// Frame holds one page of one file while it is resident in the pool.
// Data is the live page buffer; callers that mutate it must unpin the
// page dirty.
type Frame struct {
	id     int
	Data   []byte
	pins   int
	dirty  bool
	file   *disk.PageFile
	pageNo disk.PageID
}

func (f *Frame) pin() {
	f.pins += 1
}

func (f *Frame) unpin() int {
	f.pins -= 1
	return f.pins
}

func (f *Frame) PinCount() int {
	return f.pins
}

func (f *Frame) PageNo() disk.PageID {
	return f.pageNo
}

func (f *Frame) reset() {
	f.pins = 0
	f.dirty = false
	f.file = nil
	f.pageNo = disk.INVALID_PAGE_ID

	for i := range f.Data {
		f.Data[i] = 0
	}
}
