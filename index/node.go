package index

import (
	"encoding/binary"
	"sort"

	"github.com/jobala/faharasa/heap"
	"github.com/jobala/faharasa/storage/disk"
)

// Every node page starts with a 4-byte signed tag: -1 marks a leaf, any
// value >= 0 is an internal node's level. The rest of the page is fixed
// arrays whose logical length is the index of the first sentinel entry,
// which is why fresh pages must be fully zeroed.
//
// Leaf page:     tag | keys[LEAF_CAP] | rids[LEAF_CAP] | right sibling
// Internal page: level | keys[INT_CAP] | children[INT_CAP+1]
const (
	leafTag int32 = -1

	tagSize    = 4
	keySize    = 4
	ridSize    = 8
	pageIdSize = 4

	LEAF_CAP = (disk.PAGE_SIZE - tagSize - pageIdSize) / (keySize + ridSize)
	INT_CAP  = (disk.PAGE_SIZE - tagSize - pageIdSize) / (keySize + pageIdSize)

	leafKeysOff = tagSize
	leafRidsOff = leafKeysOff + LEAF_CAP*keySize
	leafSibOff  = leafRidsOff + LEAF_CAP*ridSize

	intKeysOff     = tagSize
	intChildrenOff = intKeysOff + INT_CAP*keySize
)

func pageTag(data []byte) int32 {
	return int32(binary.LittleEndian.Uint32(data))
}

func isLeaf(data []byte) bool {
	return pageTag(data) == leafTag
}

// leafNode and internalNode are views over a pinned frame's buffer;
// writes land directly in the page.
type leafNode struct {
	data []byte
}

func asLeaf(data []byte) leafNode {
	return leafNode{data: data}
}

// initLeaf stamps the leaf tag on a zeroed page.
func initLeaf(data []byte) leafNode {
	tag := leafTag
	binary.LittleEndian.PutUint32(data, uint32(tag))
	return leafNode{data: data}
}

func (n leafNode) key(idx int) int32 {
	off := leafKeysOff + idx*keySize
	return int32(binary.LittleEndian.Uint32(n.data[off:]))
}

func (n leafNode) setKey(idx int, key int32) {
	off := leafKeysOff + idx*keySize
	binary.LittleEndian.PutUint32(n.data[off:], uint32(key))
}

func (n leafNode) rid(idx int) heap.RecordID {
	off := leafRidsOff + idx*ridSize
	return heap.RecordID{
		PageNo: disk.PageID(binary.LittleEndian.Uint32(n.data[off:])),
		SlotNo: binary.LittleEndian.Uint32(n.data[off+4:]),
	}
}

func (n leafNode) setRid(idx int, rid heap.RecordID) {
	off := leafRidsOff + idx*ridSize
	binary.LittleEndian.PutUint32(n.data[off:], uint32(rid.PageNo))
	binary.LittleEndian.PutUint32(n.data[off+4:], rid.SlotNo)
}

func (n leafNode) rightSibling() disk.PageID {
	return disk.PageID(binary.LittleEndian.Uint32(n.data[leafSibOff:]))
}

func (n leafNode) setRightSibling(pageNo disk.PageID) {
	binary.LittleEndian.PutUint32(n.data[leafSibOff:], uint32(pageNo))
}

// length is the used size of the leaf: the index of the first sentinel
// rid.
func (n leafNode) length() int {
	return sort.Search(LEAF_CAP, func(i int) bool {
		return n.rid(i).PageNo == disk.INVALID_PAGE_ID
	})
}

// lowerBound returns the first index in keys[0:length] whose key is not
// less than the probe.
func (n leafNode) lowerBound(length int, key int32) int {
	left, right := 0, length-1

	for left <= right {
		mid := left + (right-left)/2
		if n.key(mid) < key {
			left = mid + 1
		} else {
			right = mid - 1
		}
	}

	return left
}

// insertAt shifts keys and rids right by one from idx and writes the new
// pair. The caller guarantees the leaf is not full.
func (n leafNode) insertAt(idx int, key int32, rid heap.RecordID) {
	for i := n.length(); i > idx; i-- {
		n.setKey(i, n.key(i-1))
		n.setRid(i, n.rid(i-1))
	}

	n.setKey(idx, key)
	n.setRid(idx, rid)
}

// splitInto moves entries [splitAt, LEAF_CAP) into dst and zeroes them
// here. dst must be a fresh zeroed leaf.
func (n leafNode) splitInto(dst leafNode, splitAt int) {
	for i := splitAt; i < LEAF_CAP; i++ {
		dst.setKey(i-splitAt, n.key(i))
		dst.setRid(i-splitAt, n.rid(i))

		n.setKey(i, 0)
		n.setRid(i, heap.RecordID{})
	}
}

type internalNode struct {
	data []byte
}

func asInternal(data []byte) internalNode {
	return internalNode{data: data}
}

// initInternal stamps the level on a zeroed page. Level 1 means "just
// above the leaves"; the value is preserved but not interpreted.
func initInternal(data []byte, level int32) internalNode {
	binary.LittleEndian.PutUint32(data, uint32(level))
	return internalNode{data: data}
}

func (n internalNode) level() int32 {
	return pageTag(n.data)
}

func (n internalNode) key(idx int) int32 {
	off := intKeysOff + idx*keySize
	return int32(binary.LittleEndian.Uint32(n.data[off:]))
}

func (n internalNode) setKey(idx int, key int32) {
	off := intKeysOff + idx*keySize
	binary.LittleEndian.PutUint32(n.data[off:], uint32(key))
}

func (n internalNode) child(idx int) disk.PageID {
	off := intChildrenOff + idx*pageIdSize
	return disk.PageID(binary.LittleEndian.Uint32(n.data[off:]))
}

func (n internalNode) setChild(idx int, pageNo disk.PageID) {
	off := intChildrenOff + idx*pageIdSize
	binary.LittleEndian.PutUint32(n.data[off:], uint32(pageNo))
}

// childCount is the used size of the child array: the index of the first
// zero child pointer.
func (n internalNode) childCount() int {
	return sort.Search(INT_CAP+1, func(i int) bool {
		return n.child(i) == disk.INVALID_PAGE_ID
	})
}

// keyCount is always one less than the child count.
func (n internalNode) keyCount() int {
	count := n.childCount()
	if count == 0 {
		return 0
	}

	return count - 1
}

func (n internalNode) lowerBound(length int, key int32) int {
	left, right := 0, length-1

	for left <= right {
		mid := left + (right-left)/2
		if n.key(mid) < key {
			left = mid + 1
		} else {
			right = mid - 1
		}
	}

	return left
}

// insertAt shifts keys right from idx and children right from idx+1,
// then installs the separator and its right child. The caller guarantees
// the node is not full.
func (n internalNode) insertAt(idx int, key int32, child disk.PageID) {
	keyCount := n.keyCount()

	for i := keyCount; i > idx; i-- {
		n.setKey(i, n.key(i-1))
	}
	for i := keyCount + 1; i > idx+1; i-- {
		n.setChild(i, n.child(i-1))
	}

	n.setKey(idx, key)
	n.setChild(idx+1, child)
}
