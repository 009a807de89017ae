package eventmedia

import (
	"testing"
	"time"

	"github.com/camkit/camkit/core"
)

func rec(session, eventID string) core.EventRecord {
	now := time.Now().UTC()
	return core.EventRecord{
		EventID:   eventID,
		SessionID: session,
		Type:      "cam.events.CameraMotion.Motion",
		Timestamp: now,
		ExpiresAt: now.Add(30 * time.Second),
	}
}

func TestEventCache_PutMergesSameSession(t *testing.T) {
	c := newEventCache()
	if merged := c.put(rec("s1", "e1")); merged {
		t.Fatal("first put should not merge")
	}
	if merged := c.put(rec("s1", "e2")); !merged {
		t.Fatal("second put for same session should merge")
	}
	if c.len() != 1 {
		t.Fatalf("expected single entry, got %d", c.len())
	}
	got, ok := c.get("s1")
	if !ok || got.EventID != "e2" {
		t.Fatalf("merge should supersede in place, got %+v", got)
	}
}

func TestEventCache_EvictOldestFollowsTouchOrder(t *testing.T) {
	c := newEventCache()
	c.put(rec("s1", "e1"))
	c.put(rec("s2", "e2"))
	c.put(rec("s3", "e3"))

	if !c.touch("s1") {
		t.Fatal("touch of present session should succeed")
	}
	if c.touch("missing") {
		t.Fatal("touch of absent session should report false")
	}

	evicted, ok := c.evictOldest()
	if !ok || evicted.SessionID != "s2" {
		t.Fatalf("expected s2 evicted after s1 touch, got %+v", evicted)
	}
	evicted, _ = c.evictOldest()
	if evicted.SessionID != "s3" {
		t.Fatalf("expected s3 next, got %+v", evicted)
	}
	evicted, _ = c.evictOldest()
	if evicted.SessionID != "s1" {
		t.Fatalf("expected s1 last, got %+v", evicted)
	}
	if _, ok := c.evictOldest(); ok {
		t.Fatal("empty cache should not evict")
	}
}

func TestEventCache_SnapshotOrder(t *testing.T) {
	c := newEventCache()
	c.put(rec("s1", "e1"))
	c.put(rec("s2", "e2"))
	c.touch("s1")

	snap := c.snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 records, got %d", len(snap))
	}
	if snap[0].SessionID != "s2" || snap[1].SessionID != "s1" {
		t.Fatalf("expected LRU order s2,s1 got %s,%s", snap[0].SessionID, snap[1].SessionID)
	}
}
