package buffer

import (
	"fmt"
	"sync"

	"github.com/jobala/faharasa/storage/disk"
	"github.com/jobala/faharasa/util"
	"go.uber.org/zap"
)

func NewBufferpoolManager(size int, replacer *lrukReplacer, diskScheduler *disk.DiskScheduler, logger *zap.Logger) *BufferpoolManager {
	if logger == nil {
		logger = zap.NewNop()
	}

	frames := make([]*Frame, size)
	freeFrames := make([]int, size)

	for i := range size {
		f := &Frame{
			id:   i,
			Data: make([]byte, disk.PAGE_SIZE),
		}

		frames[i] = f
		freeFrames[i] = i
	}

	return &BufferpoolManager{
		mu:            sync.Mutex{},
		frames:        frames,
		pageTable:     make(map[frameKey]int),
		replacer:      replacer,
		diskScheduler: diskScheduler,
		freeFrames:    freeFrames,
		logger:        logger,
	}
}

// AllocatePage allocates a fresh page in the file and pins it. The
// returned frame is zeroed, writable and already marked dirty.
func (b *BufferpoolManager) AllocatePage(file *disk.PageFile) (disk.PageID, *Frame, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	pageNo, err := file.AllocatePage()
	if err != nil {
		return disk.INVALID_PAGE_ID, nil, err
	}

	frame, err := b.getFrame()
	if err != nil {
		return disk.INVALID_PAGE_ID, nil, err
	}

	frame.reset()
	frame.file = file
	frame.pageNo = pageNo
	frame.pin()
	frame.dirty = true

	b.pageTable[frameKey{file.Id(), pageNo}] = frame.id
	b.replacer.recordAccess(frame.id)
	b.replacer.setEvictable(frame.id, false)

	return pageNo, frame, nil
}

// ReadPage pins the page and returns its frame, reading it from disk on
// a pool miss.
func (b *BufferpoolManager) ReadPage(file *disk.PageFile, pageNo disk.PageID) (*Frame, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := frameKey{file.Id(), pageNo}
	if id, ok := b.pageTable[key]; ok {
		frame := b.frames[id]
		frame.pin()

		b.replacer.recordAccess(id)
		b.replacer.setEvictable(id, false)
		return frame, nil
	}

	frame, err := b.getFrame()
	if err != nil {
		return nil, err
	}

	frame.reset()
	frame.file = file
	frame.pageNo = pageNo
	frame.pin()

	resp := <-b.diskScheduler.Schedule(disk.NewRequest(file, pageNo, nil, false))
	if resp.Err != nil {
		frame.reset()
		b.freeFrames = append(b.freeFrames, frame.id)
		return nil, resp.Err
	}
	copy(frame.Data, resp.Data)

	b.pageTable[key] = frame.id
	b.replacer.recordAccess(frame.id)
	b.replacer.setEvictable(frame.id, false)

	return frame, nil
}

// UnpinPage drops one pin. A page whose pin count reaches zero becomes
// an eviction candidate.
func (b *BufferpoolManager) UnpinPage(file *disk.PageFile, pageNo disk.PageID, dirty bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	id, ok := b.pageTable[frameKey{file.Id(), pageNo}]
	if !ok {
		return fmt.Errorf("unpinning page %d of %s: page not in pool", pageNo, file.Name())
	}

	frame := b.frames[id]
	if frame.pins <= 0 {
		return fmt.Errorf("unpinning page %d of %s: page is not pinned", pageNo, file.Name())
	}

	frame.dirty = frame.dirty || dirty
	if frame.unpin() == 0 {
		b.replacer.setEvictable(id, true)
	}

	return nil
}

// FlushFile writes the file's dirty frames back, clears their pins and
// fsyncs the file.
func (b *BufferpoolManager) FlushFile(file *disk.PageFile) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, frame := range b.frames {
		if frame.file == nil || frame.file.Id() != file.Id() {
			continue
		}

		if frame.dirty {
			resp := <-b.diskScheduler.Schedule(disk.NewRequest(frame.file, frame.pageNo, frame.Data, true))
			if resp.Err != nil {
				return resp.Err
			}
			frame.dirty = false
		}

		frame.pins = 0
		b.replacer.setEvictable(frame.id, true)
	}

	b.logger.Debug("flushed file", zap.String("file", file.Name()))
	return file.Sync()
}

// PinnedFrames reports how many frames currently hold at least one pin.
func (b *BufferpoolManager) PinnedFrames() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	count := 0
	for _, frame := range b.frames {
		if frame.pins > 0 {
			count += 1
		}
	}

	return count
}

// getFrame hands out a free frame, evicting a victim if none are free.
// Callers hold b.mu.
func (b *BufferpoolManager) getFrame() (*Frame, error) {
	if len(b.freeFrames) > 0 {
		id := b.freeFrames[0]
		b.freeFrames = b.freeFrames[1:]
		return b.frames[id], nil
	}

	id, err := b.replacer.evict()
	if err != nil {
		return nil, err
	}
	if id == INVALID_FRAME_ID {
		return nil, util.NewBufferpoolExhaustedError()
	}

	frame := b.frames[id]
	if frame.dirty {
		resp := <-b.diskScheduler.Schedule(disk.NewRequest(frame.file, frame.pageNo, frame.Data, true))
		if resp.Err != nil {
			return nil, resp.Err
		}
	}

	b.logger.Debug("evicted page",
		zap.String("file", frame.file.Name()),
		zap.Uint32("page", uint32(frame.pageNo)))

	delete(b.pageTable, frameKey{frame.file.Id(), frame.pageNo})
	return frame, nil
}

type BufferpoolManager struct {
	mu            sync.Mutex
	frames        []*Frame
	pageTable     map[frameKey]int
	diskScheduler *disk.DiskScheduler
	replacer      *lrukReplacer
	freeFrames    []int
	logger        *zap.Logger
}

type frameKey struct {
	fileId int64
	pageNo disk.PageID
}
