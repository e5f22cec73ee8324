package buffer

import (
	"fmt"
	"sync"
)

const INVALID_FRAME_ID = -1

func NewLrukReplacer(capacity, k int) *lrukReplacer {
	return &lrukReplacer{
		k:            k,
		mu:           sync.Mutex{},
		nodeStore:    map[int]*lrukNode{},
		replacerSize: capacity,
	}
}

func (lru *lrukReplacer) recordAccess(frameId int) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	lru.currTimestamp += 1

	node, ok := lru.nodeStore[frameId]
	if !ok {
		node = &lrukNode{frameId: frameId, k: lru.k}
		lru.nodeStore[frameId] = node
	}

	node.addTimestamp(lru.currTimestamp)
}

func (lru *lrukReplacer) setEvictable(frameId int, evictable bool) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	node, ok := lru.nodeStore[frameId]
	if !ok {
		return
	}

	if !node.isEvictable && evictable {
		lru.currSize += 1
	} else if node.isEvictable && !evictable {
		lru.currSize -= 1
	}

	node.isEvictable = evictable
}

// evict picks the victim with the largest backward k-distance. Frames
// with fewer than k recorded accesses have infinite distance and go
// first, oldest first access winning ties. Returns INVALID_FRAME_ID if
// nothing is evictable.
func (lru *lrukReplacer) evict() (int, error) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	victim := INVALID_FRAME_ID
	victimHasK := true
	victimStamp := 0

	for frameId, node := range lru.nodeStore {
		if !node.isEvictable {
			continue
		}

		stamp := node.kthAccess()
		better := false

		if node.hasKAccess() == victimHasK {
			better = victim == INVALID_FRAME_ID || stamp < victimStamp
		} else {
			better = !node.hasKAccess()
		}

		if better {
			victim = frameId
			victimHasK = node.hasKAccess()
			victimStamp = stamp
		}
	}

	if victim != INVALID_FRAME_ID {
		if err := lru.remove(victim); err != nil {
			return INVALID_FRAME_ID, err
		}
	}

	return victim, nil
}

func (lru *lrukReplacer) remove(frameId int) error {
	node, ok := lru.nodeStore[frameId]
	if !ok {
		return nil
	}

	if !node.isEvictable {
		return fmt.Errorf("evicting a non-evictable frame")
	}

	delete(lru.nodeStore, frameId)
	lru.currSize -= 1

	return nil
}

func (lru *lrukReplacer) size() int { return lru.currSize }

type lrukReplacer struct {
	mu            sync.Mutex
	nodeStore     map[int]*lrukNode
	replacerSize  int
	currSize      int
	currTimestamp int
	k             int
}

type lrukNode struct {
	frameId     int
	k           int
	history     []int
	isEvictable bool
}

func (n *lrukNode) hasKAccess() bool {
	return n.k == len(n.history)
}

// kthAccess is the timestamp of the k-th most recent access, or the
// oldest recorded one when fewer than k exist.
func (n *lrukNode) kthAccess() int {
	if len(n.history) > 0 {
		return n.history[0]
	}

	return -1
}

func (n *lrukNode) addTimestamp(timestamp int) {
	if len(n.history) < n.k {
		n.history = append(n.history, timestamp)
		return
	}

	n.history = n.history[1:]
	n.history = append(n.history, timestamp)
}
