package heap

import (
	"github.com/jobala/faharasa/buffer"
	"github.com/jobala/faharasa/storage/disk"
	"github.com/jobala/faharasa/util"
)

// EndOfRelationError is the terminal signal of a FileScan. Consumers
// treat it as normal termination, not a failure.
type EndOfRelationError struct {
	*util.FaharasaError
}

func NewEndOfRelationError() *EndOfRelationError {
	return &EndOfRelationError{
		&util.FaharasaError{Message: "end of relation reached"},
	}
}

// FileScan streams a heap file's records in (page, slot) order, holding
// one heap page pinned at a time.
func NewFileScan(heapFile *HeapFile, bpm *buffer.BufferpoolManager) *FileScan {
	return &FileScan{
		heapFile: heapFile,
		bpm:      bpm,
		nextPage: 1,
	}
}

func (s *FileScan) Next() (RecordID, []byte, error) {
	for {
		if s.done {
			return RecordID{}, nil, NewEndOfRelationError()
		}

		if s.frame == nil {
			if uint32(s.nextPage) > s.heapFile.File().NumPages() {
				s.done = true
				continue
			}

			frame, err := s.bpm.ReadPage(s.heapFile.File(), s.nextPage)
			if err != nil {
				return RecordID{}, nil, err
			}

			s.frame = frame
			s.currPage = s.nextPage
			s.nextPage += 1
			s.nextSlot = 0
		}

		if s.nextSlot < slotCount(s.frame.Data) {
			rid := RecordID{PageNo: s.currPage, SlotNo: uint32(s.nextSlot)}
			record := recordAt(s.frame.Data, s.nextSlot)
			s.nextSlot += 1
			return rid, record, nil
		}

		if err := s.bpm.UnpinPage(s.heapFile.File(), s.currPage, false); err != nil {
			return RecordID{}, nil, err
		}
		s.frame = nil
	}
}

// Close releases the pinned page, if any. Safe to call after the scan
// ran to completion.
func (s *FileScan) Close() error {
	if s.frame == nil {
		return nil
	}

	err := s.bpm.UnpinPage(s.heapFile.File(), s.currPage, false)
	s.frame = nil
	s.done = true
	return err
}

type FileScan struct {
	heapFile *HeapFile
	bpm      *buffer.BufferpoolManager
	currPage disk.PageID
	nextPage disk.PageID
	nextSlot int
	frame    *buffer.Frame
	done     bool
}
