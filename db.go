package faharasa

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jobala/faharasa/buffer"
	"github.com/jobala/faharasa/catalog"
	"github.com/jobala/faharasa/config"
	"github.com/jobala/faharasa/heap"
	"github.com/jobala/faharasa/index"
	"github.com/jobala/faharasa/storage/disk"
	"go.uber.org/zap"
)

// DB wires the storage stack together: one disk scheduler and bufferpool
// shared by every heap file and index, plus the relation catalog.
type DB struct {
	cfg       *config.Config
	scheduler *disk.DiskScheduler
	bpm       *buffer.BufferpoolManager
	catalog   *catalog.Catalog
	logger    *zap.Logger
	relations map[string]*heap.HeapFile
	indexes   []*index.BTreeIndex
}

func Open(cfg *config.Config) (*DB, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	if err := os.MkdirAll(cfg.Storage.Dir, 0755); err != nil {
		return nil, fmt.Errorf("error creating data dir %s: %v", cfg.Storage.Dir, err)
	}

	logger := zap.NewNop()
	if cfg.System.Debug {
		var err error
		if logger, err = zap.NewDevelopment(); err != nil {
			return nil, err
		}
	}

	cat, err := catalog.Load(filepath.Join(cfg.Storage.Dir, "catalog"))
	if err != nil {
		return nil, err
	}

	scheduler := disk.NewScheduler()
	replacer := buffer.NewLrukReplacer(cfg.Buffer.PoolSize, cfg.Buffer.ReplacerK)
	bpm := buffer.NewBufferpoolManager(cfg.Buffer.PoolSize, replacer, scheduler, logger)

	logger.Info("opened database", zap.String("dir", cfg.Storage.Dir))

	return &DB{
		cfg:       cfg,
		scheduler: scheduler,
		bpm:       bpm,
		catalog:   cat,
		logger:    logger,
		relations: map[string]*heap.HeapFile{},
	}, nil
}

// CreateRelation creates a heap file for the relation and registers it
// in the catalog.
func (db *DB) CreateRelation(name string) (*heap.HeapFile, error) {
	fileName := name + ".tbl"

	file, err := disk.Create(filepath.Join(db.cfg.Storage.Dir, fileName))
	if err != nil {
		return nil, err
	}

	if err := db.catalog.Register(catalog.Relation{Name: name, FileName: fileName}); err != nil {
		return nil, err
	}

	heapFile := heap.NewHeapFile(file, db.bpm)
	db.relations[name] = heapFile
	return heapFile, nil
}

// OpenRelation returns the open heap file for a registered relation.
// This also serves the index builder as its RelationResolver.
func (db *DB) OpenRelation(name string) (*heap.HeapFile, error) {
	if heapFile, ok := db.relations[name]; ok {
		return heapFile, nil
	}

	rel, err := db.catalog.Lookup(name)
	if err != nil {
		return nil, err
	}

	file, err := disk.Open(filepath.Join(db.cfg.Storage.Dir, rel.FileName))
	if err != nil {
		return nil, err
	}

	heapFile := heap.NewHeapFile(file, db.bpm)
	db.relations[name] = heapFile
	return heapFile, nil
}

// BuildIndex opens (or builds) the B+ tree index over one integer
// attribute of a relation.
func (db *DB) BuildIndex(relation string, attrByteOffset int, attrType index.Datatype) (*index.BTreeIndex, error) {
	idx, err := index.NewBTreeIndex(
		db.cfg.Storage.Dir, relation, db.bpm, db, attrByteOffset, attrType, db.logger)
	if err != nil {
		return nil, err
	}

	db.indexes = append(db.indexes, idx)
	return idx, nil
}

func (db *DB) Bufferpool() *buffer.BufferpoolManager {
	return db.bpm
}

// Close flushes and closes every open index and heap file, then stops
// the disk scheduler.
func (db *DB) Close() error {
	var firstErr error

	for _, idx := range db.indexes {
		if err := idx.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for name, heapFile := range db.relations {
		if rel, err := db.catalog.Lookup(name); err == nil {
			rel.RecordCount = heapFile.RecordCount()
			if err := db.catalog.Register(rel); err != nil && firstErr == nil {
				firstErr = err
			}
		}

		if err := heapFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	db.scheduler.Close()
	db.logger.Info("closed database", zap.String("dir", db.cfg.Storage.Dir))
	return firstErr
}
