package index

import (
	"github.com/jobala/faharasa/heap"
	"github.com/jobala/faharasa/storage/disk"
	"go.uber.org/zap"
)

// InsertEntry inserts one (key, rid) pair. Duplicates are not
// suppressed; a new equal key lands at its lower-bound position. If the
// recursive insert splits the root, a new root is installed and the
// metadata page updated.
func (t *BTreeIndex) InsertEntry(key int32, rid heap.RecordID) error {
	oldRoot := t.rootPageNo

	newPageNo, midVal, err := t.insert(oldRoot, key, rid)
	if err != nil {
		return err
	}
	if newPageNo == disk.INVALID_PAGE_ID {
		return nil
	}

	// root split: the new root's two children are the old root and its
	// fresh right sibling
	oldRootFrame, err := t.bpm.ReadPage(t.file, oldRoot)
	if err != nil {
		return err
	}
	var level int32
	if isLeaf(oldRootFrame.Data) {
		level = 1
	}
	if err := t.bpm.UnpinPage(t.file, oldRoot, false); err != nil {
		return err
	}

	rootNo, rootFrame, err := t.bpm.AllocatePage(t.file)
	if err != nil {
		return err
	}

	root := initInternal(rootFrame.Data, level)
	root.setKey(0, midVal)
	root.setChild(0, oldRoot)
	root.setChild(1, newPageNo)

	if err := t.bpm.UnpinPage(t.file, rootNo, true); err != nil {
		return err
	}

	t.logger.Debug("root split",
		zap.Uint32("newRoot", uint32(rootNo)),
		zap.Int32("separator", midVal))

	return t.setRoot(rootNo)
}

// insert descends to the leaf for key and inserts there, splitting nodes
// on the way back up. It returns the page id of a newly created right
// sibling together with the separator to install in the parent, or the
// zero page id when no split happened.
func (t *BTreeIndex) insert(pageNo disk.PageID, key int32, rid heap.RecordID) (disk.PageID, int32, error) {
	frame, err := t.bpm.ReadPage(t.file, pageNo)
	if err != nil {
		return disk.INVALID_PAGE_ID, 0, err
	}

	if isLeaf(frame.Data) {
		return t.insertIntoLeaf(pageNo, frame.Data, key, rid)
	}

	node := asInternal(frame.Data)
	childIdx := node.lowerBound(node.keyCount(), key)

	newChild, midVal, err := t.insert(node.child(childIdx), key, rid)
	if err != nil {
		return disk.INVALID_PAGE_ID, 0, err
	}

	if newChild == disk.INVALID_PAGE_ID {
		return disk.INVALID_PAGE_ID, 0, t.bpm.UnpinPage(t.file, pageNo, false)
	}

	// the child split: install (midVal, newChild) here, splitting this
	// node too if it is full
	childIdx = node.lowerBound(node.keyCount(), midVal)

	if node.child(INT_CAP) == disk.INVALID_PAGE_ID {
		node.insertAt(childIdx, midVal, newChild)
		return disk.INVALID_PAGE_ID, 0, t.bpm.UnpinPage(t.file, pageNo, true)
	}

	return t.splitInternal(pageNo, node, childIdx, midVal, newChild)
}

func (t *BTreeIndex) insertIntoLeaf(pageNo disk.PageID, data []byte, key int32, rid heap.RecordID) (disk.PageID, int32, error) {
	leaf := asLeaf(data)
	length := leaf.length()
	insertIdx := leaf.lowerBound(length, key)

	if length < LEAF_CAP {
		leaf.insertAt(insertIdx, key, rid)
		return disk.INVALID_PAGE_ID, 0, t.bpm.UnpinPage(t.file, pageNo, true)
	}

	// full: split at the middle; when the new entry belongs in the left
	// half, the split point moves one slot right so the left half keeps
	// one more of the old entries
	newPageNo, newFrame, err := t.bpm.AllocatePage(t.file)
	if err != nil {
		return disk.INVALID_PAGE_ID, 0, err
	}
	newLeaf := initLeaf(newFrame.Data)

	mid := LEAF_CAP / 2
	insertToLeft := insertIdx < mid
	splitAt := mid
	if insertToLeft {
		splitAt = mid + 1
	}

	leaf.splitInto(newLeaf, splitAt)

	if insertToLeft {
		leaf.insertAt(insertIdx, key, rid)
	} else {
		newLeaf.insertAt(insertIdx-splitAt, key, rid)
	}

	newLeaf.setRightSibling(leaf.rightSibling())
	leaf.setRightSibling(newPageNo)

	promoted := newLeaf.key(0)

	if err := t.bpm.UnpinPage(t.file, newPageNo, true); err != nil {
		return disk.INVALID_PAGE_ID, 0, err
	}
	if err := t.bpm.UnpinPage(t.file, pageNo, true); err != nil {
		return disk.INVALID_PAGE_ID, 0, err
	}

	t.logger.Debug("leaf split",
		zap.Uint32("leaf", uint32(pageNo)),
		zap.Uint32("sibling", uint32(newPageNo)))

	return newPageNo, promoted, nil
}

// splitInternal splits a full internal node while installing
// (midVal, newChild). When the incoming separator is itself the natural
// median it rises straight to the grandparent and is stored in neither
// half.
func (t *BTreeIndex) splitInternal(pageNo disk.PageID, node internalNode, childIdx int, midVal int32, newChild disk.PageID) (disk.PageID, int32, error) {
	newPageNo, newFrame, err := t.bpm.AllocatePage(t.file)
	if err != nil {
		return disk.INVALID_PAGE_ID, 0, err
	}
	newNode := initInternal(newFrame.Data, node.level())

	mid := (INT_CAP - 1) / 2
	insertToLeft := childIdx < mid
	splitAt := mid
	insertLocal := childIdx
	if insertToLeft {
		splitAt = mid + 1
	} else {
		insertLocal = childIdx - mid
	}
	moveKeyUp := !insertToLeft && insertLocal == 0

	var promoted int32
	if moveKeyUp {
		// the incoming separator is the median; newChild leads the
		// right half
		promoted = midVal
		newNode.setChild(0, newChild)

		for i := splitAt; i < INT_CAP; i++ {
			newNode.setKey(i-splitAt, node.key(i))
			node.setKey(i, 0)
		}
		for i := splitAt + 1; i <= INT_CAP; i++ {
			newNode.setChild(i-splitAt, node.child(i))
			node.setChild(i, disk.INVALID_PAGE_ID)
		}
	} else {
		promoted = node.key(splitAt)

		for i := splitAt + 1; i < INT_CAP; i++ {
			newNode.setKey(i-splitAt-1, node.key(i))
		}
		for i := splitAt + 1; i <= INT_CAP; i++ {
			newNode.setChild(i-splitAt-1, node.child(i))
			node.setChild(i, disk.INVALID_PAGE_ID)
		}
		for i := splitAt; i < INT_CAP; i++ {
			node.setKey(i, 0)
		}

		if insertToLeft {
			node.insertAt(childIdx, midVal, newChild)
		} else {
			newNode.insertAt(insertLocal-1, midVal, newChild)
		}
	}

	if err := t.bpm.UnpinPage(t.file, newPageNo, true); err != nil {
		return disk.INVALID_PAGE_ID, 0, err
	}
	if err := t.bpm.UnpinPage(t.file, pageNo, true); err != nil {
		return disk.INVALID_PAGE_ID, 0, err
	}

	t.logger.Debug("internal split",
		zap.Uint32("node", uint32(pageNo)),
		zap.Uint32("sibling", uint32(newPageNo)))

	return newPageNo, promoted, nil
}
