package eventmedia

import (
	"container/list"

	"github.com/camkit/camkit/core"
)

// eventCache is an ordered mapping from event session id to its record.
// Order is recency of insertion or touch: the list front is the least
// recently used session, the back the most recently used. Touch and
// evict-oldest are O(1).
//
// Not safe for concurrent use; the Manager serializes access.
type eventCache struct {
	ll    *list.List // of core.EventRecord
	index map[string]*list.Element
}

func newEventCache() *eventCache {
	return &eventCache{ll: list.New(), index: make(map[string]*list.Element)}
}

func (c *eventCache) len() int { return len(c.index) }

// get returns the record for the session without touching it.
func (c *eventCache) get(sessionID string) (core.EventRecord, bool) {
	el, ok := c.index[sessionID]
	if !ok {
		return core.EventRecord{}, false
	}
	return el.Value.(core.EventRecord), true
}

// put inserts the record, or merges it into the existing session slot: the
// stored value is replaced in place so later sub-events supersede earlier
// ones while the session keeps a single cache entry. The slot is touched
// either way. Reports whether an existing session was merged.
func (c *eventCache) put(rec core.EventRecord) bool {
	if el, ok := c.index[rec.SessionID]; ok {
		el.Value = rec
		c.ll.MoveToBack(el)
		return true
	}
	c.index[rec.SessionID] = c.ll.PushBack(rec)
	return false
}

// touch marks the session as most recently used.
func (c *eventCache) touch(sessionID string) bool {
	el, ok := c.index[sessionID]
	if !ok {
		return false
	}
	c.ll.MoveToBack(el)
	return true
}

// evictOldest removes and returns the least recently touched session.
func (c *eventCache) evictOldest() (core.EventRecord, bool) {
	el := c.ll.Front()
	if el == nil {
		return core.EventRecord{}, false
	}
	rec := c.ll.Remove(el).(core.EventRecord)
	delete(c.index, rec.SessionID)
	return rec, true
}

// snapshot returns the cached records in LRU order (oldest first).
func (c *eventCache) snapshot() []core.EventRecord {
	out := make([]core.EventRecord, 0, c.ll.Len())
	for el := c.ll.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(core.EventRecord))
	}
	return out
}
