package eventmedia

import (
	"context"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/camkit/camkit/core"
	"github.com/camkit/camkit/internal/testutil"
)

// TestProperty_CacheNeverExceedsBound checks that for any sequence of
// ingested sessions and any configured bound, the cache size stays within the
// bound after every HandleEvents call.
func TestProperty_CacheNeverExceedsBound(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("cache size stays within the policy bound", prop.ForAll(
		func(sessions []uint8, bound uint8) bool {
			size := int(bound%8) + 1
			m := NewManager("device-p", map[string]core.EventImageGenerator{})
			m.CachePolicy().SetEventCacheSize(size)

			for _, s := range sessions {
				rec := testutil.NewEventBuilder("cam.events.CameraMotion.Motion").
					Session(fmt.Sprintf("sess-%d", s%32)).Build()
				if err := m.HandleEvents(context.Background(), map[string]core.EventRecord{rec.Type: rec}); err != nil {
					return false
				}
				if len(m.Events()) > size {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.UInt8()),
		gen.UInt8(),
	))

	properties.Property("distinct sessions never collapse below their count", prop.ForAll(
		func(count uint8) bool {
			n := int(count%16) + 1
			m := NewManager("device-p", map[string]core.EventImageGenerator{})
			m.CachePolicy().SetEventCacheSize(32)

			for i := 0; i < n; i++ {
				rec := testutil.NewEventBuilder("cam.events.CameraMotion.Motion").
					Session(fmt.Sprintf("sess-%d", i)).Build()
				if err := m.HandleEvents(context.Background(), map[string]core.EventRecord{rec.Type: rec}); err != nil {
					return false
				}
			}
			return len(m.Events()) == n
		},
		gen.UInt8(),
	))

	properties.TestingRun(t)
}

// TestProperty_TouchDefersEviction checks that touching any cached session
// makes the next eviction pick a different session.
func TestProperty_TouchDefersEviction(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("touched session survives the next eviction", prop.ForAll(
		func(pick uint8) bool {
			c := newEventCache()
			const n = 8
			for i := 0; i < n; i++ {
				c.put(rec(fmt.Sprintf("sess-%d", i), fmt.Sprintf("ev-%d", i)))
			}
			touched := fmt.Sprintf("sess-%d", int(pick)%n)
			if !c.touch(touched) {
				return false
			}
			evicted, ok := c.evictOldest()
			return ok && evicted.SessionID != touched
		},
		gen.UInt8(),
	))

	properties.TestingRun(t)
}
