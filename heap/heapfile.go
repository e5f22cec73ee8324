package heap

import (
	"encoding/binary"
	"fmt"

	"github.com/jobala/faharasa/buffer"
	"github.com/jobala/faharasa/storage/disk"
)

// RecordID points at one record in a heap file. The all-zero RecordID is
// the "empty slot" sentinel; real records never live on page 0.
type RecordID struct {
	PageNo disk.PageID
	SlotNo uint32
}

// Heap page layout:
//
//	[0-1]  uint16  slot count
//	[2-3]  uint16  cell content start (grows down from the page end)
//	[4+]   slot directory, one (offset uint16, length uint16) per record
//	       ...free space...
//	       record bytes, packed at the bottom of the page
const (
	offSlotCount   = 0
	offCellContent = 2
	offSlotDir     = 4
	slotDirEntry   = 4
)

func NewHeapFile(file *disk.PageFile, bpm *buffer.BufferpoolManager) *HeapFile {
	return &HeapFile{file: file, bpm: bpm}
}

// InsertRecord appends the record to the last page with room, spilling
// onto a fresh page when full.
func (h *HeapFile) InsertRecord(record []byte) (RecordID, error) {
	if len(record) > disk.PAGE_SIZE-offSlotDir-slotDirEntry {
		return RecordID{}, fmt.Errorf("record of %d bytes does not fit in a page", len(record))
	}

	var pageNo disk.PageID
	var frame *buffer.Frame
	var err error

	if h.file.NumPages() > 0 {
		pageNo = disk.PageID(h.file.NumPages())
		frame, err = h.bpm.ReadPage(h.file, pageNo)
		if err != nil {
			return RecordID{}, err
		}

		if freeSpace(frame.Data) < len(record)+slotDirEntry {
			if err := h.bpm.UnpinPage(h.file, pageNo, false); err != nil {
				return RecordID{}, err
			}
			frame = nil
		}
	}

	if frame == nil {
		pageNo, frame, err = h.bpm.AllocatePage(h.file)
		if err != nil {
			return RecordID{}, err
		}
		initPage(frame.Data)
	}

	slot := slotCount(frame.Data)
	top := cellContent(frame.Data) - len(record)
	copy(frame.Data[top:], record)

	dir := offSlotDir + slot*slotDirEntry
	binary.LittleEndian.PutUint16(frame.Data[dir:], uint16(top))
	binary.LittleEndian.PutUint16(frame.Data[dir+2:], uint16(len(record)))
	setSlotCount(frame.Data, slot+1)
	setCellContent(frame.Data, top)

	if err := h.bpm.UnpinPage(h.file, pageNo, true); err != nil {
		return RecordID{}, err
	}

	h.recordCount += 1
	return RecordID{PageNo: pageNo, SlotNo: uint32(slot)}, nil
}

func (h *HeapFile) RecordCount() int {
	return h.recordCount
}

func (h *HeapFile) File() *disk.PageFile {
	return h.file
}

func (h *HeapFile) Close() error {
	if err := h.bpm.FlushFile(h.file); err != nil {
		return err
	}

	return h.file.Close()
}

func initPage(data []byte) {
	setSlotCount(data, 0)
	setCellContent(data, disk.PAGE_SIZE)
}

func slotCount(data []byte) int {
	return int(binary.LittleEndian.Uint16(data[offSlotCount:]))
}

func setSlotCount(data []byte, n int) {
	binary.LittleEndian.PutUint16(data[offSlotCount:], uint16(n))
}

// cellContent reads the watermark. A zeroed page stores 0, which reads
// back as PAGE_SIZE, and setCellContent writes PAGE_SIZE as 0 to match.
func cellContent(data []byte) int {
	v := int(binary.LittleEndian.Uint16(data[offCellContent:]))
	if v == 0 {
		return disk.PAGE_SIZE
	}
	return v
}

func setCellContent(data []byte, v int) {
	if v == disk.PAGE_SIZE {
		v = 0
	}
	binary.LittleEndian.PutUint16(data[offCellContent:], uint16(v))
}

func freeSpace(data []byte) int {
	return cellContent(data) - (offSlotDir + slotCount(data)*slotDirEntry)
}

func recordAt(data []byte, slot int) []byte {
	dir := offSlotDir + slot*slotDirEntry
	off := int(binary.LittleEndian.Uint16(data[dir:]))
	length := int(binary.LittleEndian.Uint16(data[dir+2:]))

	record := make([]byte, length)
	copy(record, data[off:off+length])
	return record
}

type HeapFile struct {
	file        *disk.PageFile
	bpm         *buffer.BufferpoolManager
	recordCount int
}
