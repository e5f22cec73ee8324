package index

import (
	"encoding/binary"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jobala/faharasa/buffer"
	"github.com/jobala/faharasa/heap"
	"github.com/jobala/faharasa/storage/disk"
	"go.uber.org/zap"
)

// The metadata page is always the first page of the index file.
const metaPageNo disk.PageID = 1

const relationNameLen = 20

// RelationResolver hands the builder an open heap file for a relation
// name. Resolving an unregistered relation fails with the catalog's
// FileNotFoundError.
type RelationResolver interface {
	OpenRelation(name string) (*heap.HeapFile, error)
}

// NewBTreeIndex opens the B+ tree index for (relation, attrByteOffset),
// building it from a full scan of the base relation if the index file
// does not exist yet. An existing file is validated against the
// parameters instead of being rebuilt.
func NewBTreeIndex(
	dir string,
	relation string,
	bpm *buffer.BufferpoolManager,
	relations RelationResolver,
	attrByteOffset int,
	attrType Datatype,
	logger *zap.Logger,
) (*BTreeIndex, error) {
	if attrType != INTEGER {
		return nil, fmt.Errorf("only INTEGER keys are supported, got datatype %d", attrType)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	indexName := fmt.Sprintf("%s,%d", relation, attrByteOffset)
	indexPath := filepath.Join(dir, indexName)

	t := &BTreeIndex{
		bpm:            bpm,
		relations:      relations,
		indexName:      indexName,
		relationName:   relation,
		attrByteOffset: attrByteOffset,
		attrType:       attrType,
		logger:         logger,
	}

	if disk.Exists(indexPath) {
		if err := t.openExisting(indexPath); err != nil {
			return nil, err
		}
		return t, nil
	}

	if err := t.createFresh(indexPath); err != nil {
		if t.file != nil {
			_ = t.file.Close()
			_ = disk.Remove(indexPath)
		}
		return nil, err
	}

	if err := t.build(); err != nil {
		// a failed build leaves no file behind
		_ = t.bpm.FlushFile(t.file)
		_ = t.file.Close()
		_ = disk.Remove(indexPath)
		return nil, err
	}

	t.logger.Info("built index",
		zap.String("index", indexName),
		zap.Uint32("pages", t.file.NumPages()))

	return t, nil
}

func (t *BTreeIndex) openExisting(indexPath string) error {
	file, err := disk.Open(indexPath)
	if err != nil {
		return err
	}

	frame, err := t.bpm.ReadPage(file, metaPageNo)
	if err != nil {
		_ = file.Close()
		return err
	}

	meta := readMeta(frame.Data)
	if err := t.bpm.UnpinPage(file, metaPageNo, false); err != nil {
		_ = file.Close()
		return err
	}

	wantName := t.relationName
	if len(wantName) > relationNameLen {
		wantName = wantName[:relationNameLen]
	}

	if meta.relationName != wantName ||
		meta.attrByteOffset != int32(t.attrByteOffset) ||
		meta.attrType != t.attrType {
		_ = file.Close()
		return NewIndexMetadataMismatchError(t.indexName)
	}

	t.file = file
	t.rootPageNo = meta.rootPageNo
	return nil
}

func (t *BTreeIndex) createFresh(indexPath string) error {
	file, err := disk.Create(indexPath)
	if err != nil {
		return err
	}
	t.file = file

	metaNo, metaFrame, err := t.bpm.AllocatePage(file)
	if err != nil {
		return err
	}

	rootNo, rootFrame, err := t.bpm.AllocatePage(file)
	if err != nil {
		return err
	}
	initLeaf(rootFrame.Data)
	t.rootPageNo = rootNo

	writeMeta(metaFrame.Data, indexMeta{
		relationName:   t.relationName,
		attrByteOffset: int32(t.attrByteOffset),
		attrType:       t.attrType,
		rootPageNo:     rootNo,
	})

	if err := t.bpm.UnpinPage(file, rootNo, true); err != nil {
		return err
	}
	return t.bpm.UnpinPage(file, metaNo, true)
}

// build scans the base relation and inserts an entry per record. End of
// relation is normal termination.
func (t *BTreeIndex) build() error {
	heapFile, err := t.relations.OpenRelation(t.relationName)
	if err != nil {
		return err
	}

	fscan := heap.NewFileScan(heapFile, t.bpm)
	defer fscan.Close()

	for {
		rid, record, err := fscan.Next()
		if err != nil {
			var eof *heap.EndOfRelationError
			if errors.As(err, &eof) {
				return nil
			}
			return err
		}

		if len(record) < t.attrByteOffset+keySize {
			return fmt.Errorf("record %v is too short for key at offset %d", rid, t.attrByteOffset)
		}

		key := int32(binary.LittleEndian.Uint32(record[t.attrByteOffset:]))
		if err := t.InsertEntry(key, rid); err != nil {
			return err
		}
	}
}

// setRoot points the tree at a new root page and rewrites the metadata
// page to match.
func (t *BTreeIndex) setRoot(rootNo disk.PageID) error {
	t.rootPageNo = rootNo

	frame, err := t.bpm.ReadPage(t.file, metaPageNo)
	if err != nil {
		return err
	}

	meta := readMeta(frame.Data)
	meta.rootPageNo = rootNo
	writeMeta(frame.Data, meta)

	return t.bpm.UnpinPage(t.file, metaPageNo, true)
}

func (t *BTreeIndex) IndexName() string {
	return t.indexName
}

// Close ends any scan in progress, flushes the index file and closes it.
// The file itself is left on disk; its lifetime belongs to the caller.
func (t *BTreeIndex) Close() error {
	if t.scan != nil {
		_ = t.EndScan()
	}

	if err := t.bpm.FlushFile(t.file); err != nil {
		return err
	}

	return t.file.Close()
}

type BTreeIndex struct {
	file           *disk.PageFile
	bpm            *buffer.BufferpoolManager
	relations      RelationResolver
	indexName      string
	relationName   string
	attrByteOffset int
	attrType       Datatype
	rootPageNo     disk.PageID
	scan           *scanState
	logger         *zap.Logger
}

// Metadata page layout: 20-byte space padded relation name, key byte
// offset, datatype tag, root page id.
type indexMeta struct {
	relationName   string
	attrByteOffset int32
	attrType       Datatype
	rootPageNo     disk.PageID
}

func readMeta(data []byte) indexMeta {
	return indexMeta{
		relationName:   strings.TrimRight(string(data[:relationNameLen]), " \x00"),
		attrByteOffset: int32(binary.LittleEndian.Uint32(data[relationNameLen:])),
		attrType:       Datatype(binary.LittleEndian.Uint32(data[relationNameLen+4:])),
		rootPageNo:     disk.PageID(binary.LittleEndian.Uint32(data[relationNameLen+8:])),
	}
}

func writeMeta(data []byte, meta indexMeta) {
	name := meta.relationName
	if len(name) > relationNameLen {
		name = name[:relationNameLen]
	}
	copy(data[:relationNameLen], []byte(name+strings.Repeat(" ", relationNameLen-len(name))))

	binary.LittleEndian.PutUint32(data[relationNameLen:], uint32(meta.attrByteOffset))
	binary.LittleEndian.PutUint32(data[relationNameLen+4:], uint32(meta.attrType))
	binary.LittleEndian.PutUint32(data[relationNameLen+8:], uint32(meta.rootPageNo))
}
