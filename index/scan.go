package index

import (
	"github.com/jobala/faharasa/buffer"
	"github.com/jobala/faharasa/heap"
	"github.com/jobala/faharasa/storage/disk"
)

// There is one scan cursor per index. The leaf under the cursor stays
// pinned from StartScan until EndScan, except while hopping to a right
// sibling.
type scanState struct {
	nextEntry      int
	currentPageNum disk.PageID
	currentFrame   *buffer.Frame
	lowVal         int32
	highVal        int32
	lowOp          Operator
	highOp         Operator
}

// StartScan positions the cursor on the first entry satisfying
// (key lowOp lowVal) AND (key highOp highVal). A scan already in
// progress is ended first.
func (t *BTreeIndex) StartScan(lowVal int32, lowOp Operator, highVal int32, highOp Operator) error {
	if (lowOp != GT && lowOp != GTE) || (highOp != LT && highOp != LTE) {
		return NewBadOperatorError()
	}
	if lowVal > highVal {
		return NewBadScanRangeError()
	}

	if t.scan != nil {
		if err := t.EndScan(); err != nil {
			return err
		}
	}

	pageNo := t.rootPageNo
	frame, err := t.bpm.ReadPage(t.file, pageNo)
	if err != nil {
		return err
	}

	for !isLeaf(frame.Data) {
		node := asInternal(frame.Data)
		child := node.child(node.lowerBound(node.keyCount(), lowVal))

		if err := t.bpm.UnpinPage(t.file, pageNo, false); err != nil {
			return err
		}

		pageNo = child
		if frame, err = t.bpm.ReadPage(t.file, pageNo); err != nil {
			return err
		}
	}

	leaf := asLeaf(frame.Data)
	length := leaf.length()

	// strict-greater reduces to >= lowVal+1 for integer keys
	probe := lowVal
	if lowOp == GT {
		probe = lowVal + 1
	}

	idx := leaf.lowerBound(length, probe)
	if idx == length {
		// nothing qualifying here, the first candidate lives on the
		// right sibling if anywhere
		sibling := leaf.rightSibling()
		if err := t.bpm.UnpinPage(t.file, pageNo, false); err != nil {
			return err
		}
		if sibling == disk.INVALID_PAGE_ID {
			return NewNoSuchKeyFoundError()
		}

		pageNo = sibling
		if frame, err = t.bpm.ReadPage(t.file, pageNo); err != nil {
			return err
		}
		leaf = asLeaf(frame.Data)
		idx = 0
	}

	t.scan = &scanState{
		nextEntry:      idx,
		currentPageNum: pageNo,
		currentFrame:   frame,
		lowVal:         lowVal,
		highVal:        highVal,
		lowOp:          lowOp,
		highOp:         highOp,
	}

	rid := leaf.rid(idx)
	key := leaf.key(idx)
	if rid.PageNo == disk.INVALID_PAGE_ID || key > highVal || (key == highVal && highOp == LT) {
		if err := t.EndScan(); err != nil {
			return err
		}
		return NewNoSuchKeyFoundError()
	}

	return nil
}

// ScanNext returns the record id under the cursor and advances it,
// hopping to the right sibling when the current leaf is used up.
func (t *BTreeIndex) ScanNext() (heap.RecordID, error) {
	if t.scan == nil {
		return heap.RecordID{}, NewScanNotInitializedError()
	}

	s := t.scan
	leaf := asLeaf(s.currentFrame.Data)

	// parked past the last leaf's entries with no sibling to move to
	if s.nextEntry == LEAF_CAP {
		return heap.RecordID{}, NewIndexScanCompletedError()
	}

	rid := leaf.rid(s.nextEntry)
	key := leaf.key(s.nextEntry)
	if rid.PageNo == disk.INVALID_PAGE_ID || key > s.highVal || (key == s.highVal && s.highOp == LT) {
		return heap.RecordID{}, NewIndexScanCompletedError()
	}

	s.nextEntry += 1
	if s.nextEntry == LEAF_CAP || leaf.rid(s.nextEntry).PageNo == disk.INVALID_PAGE_ID {
		if sibling := leaf.rightSibling(); sibling != disk.INVALID_PAGE_ID {
			if err := t.bpm.UnpinPage(t.file, s.currentPageNum, false); err != nil {
				return heap.RecordID{}, err
			}

			frame, err := t.bpm.ReadPage(t.file, sibling)
			if err != nil {
				return heap.RecordID{}, err
			}

			s.currentPageNum = sibling
			s.currentFrame = frame
			s.nextEntry = 0
		}
	}

	return rid, nil
}

// EndScan unpins the cursor's leaf and clears the scan state.
func (t *BTreeIndex) EndScan() error {
	if t.scan == nil {
		return NewScanNotInitializedError()
	}

	err := t.bpm.UnpinPage(t.file, t.scan.currentPageNum, false)
	t.scan = nil
	return err
}
