package eventmedia

import (
	"testing"

	"github.com/camkit/camkit/core"
	"github.com/camkit/camkit/store"
)

func TestCachePolicy_Defaults(t *testing.T) {
	p := NewCachePolicy()
	if p.EventCacheSize() != DefaultCacheSize {
		t.Errorf("default size: %d", p.EventCacheSize())
	}
	if p.Prefetch() {
		t.Error("prefetch should default to off")
	}
	if p.Store() != nil {
		t.Error("no store by default")
	}
	if key := p.KeyFunc()("d", core.EventRecord{SessionID: "s"}); key != "d/s" {
		t.Errorf("default key func: %q", key)
	}
}

func TestCachePolicy_SizeClamp(t *testing.T) {
	p := NewCachePolicy()
	p.SetEventCacheSize(0)
	if p.EventCacheSize() != 1 {
		t.Errorf("size below 1 should clamp, got %d", p.EventCacheSize())
	}
	p.SetEventCacheSize(-3)
	if p.EventCacheSize() != 1 {
		t.Errorf("negative size should clamp, got %d", p.EventCacheSize())
	}
}

func TestCachePolicy_SwapStoreAndKeyFunc(t *testing.T) {
	p := NewCachePolicy()
	st := store.NewInMemoryStore()
	p.SetStore(st)
	if p.Store() != core.MediaStore(st) {
		t.Error("store not swapped")
	}
	p.SetKeyFunc(func(deviceID string, e core.EventRecord) string { return "fixed" })
	if p.KeyFunc()("d", core.EventRecord{}) != "fixed" {
		t.Error("key func not swapped")
	}
	p.SetKeyFunc(nil)
	if p.KeyFunc()("d", core.EventRecord{SessionID: "s"}) != "d/s" {
		t.Error("nil key func should restore the default")
	}
}
