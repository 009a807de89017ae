package device

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camkit/camkit/core"
	"github.com/camkit/camkit/internal/testutil"
	"github.com/camkit/camkit/trait"
)

const deviceName = "enterprises/proj-1/devices/cam-1"

type fakeExecutor struct {
	calls int
}

func (e *fakeExecutor) ExecuteCommand(_ context.Context, _ string, _ string, _ any, result any) error {
	e.calls++
	return json.Unmarshal([]byte(`{"results":{"url":"https://media.example/1","token":"tok"}}`), result)
}

func newTestDevice(t *testing.T) *Device {
	t.Helper()
	d, err := New(Data{
		Name: deviceName,
		Type: "cam.devices.CAMERA",
		Traits: map[string]json.RawMessage{
			trait.CameraEventImageName: json.RawMessage(`{}`),
			trait.CameraMotionName:     json.RawMessage(`{}`),
			trait.CameraPersonName:     json.RawMessage(`{}`),
		},
		ParentRelations: []Relation{
			{Parent: "enterprises/proj-1/structures/s/rooms/r", DisplayName: "Hallway"},
		},
	}, func(o *Options) {
		o.Executor = &fakeExecutor{}
		o.Fetcher = testutil.NewFakeFetcher()
	})
	require.NoError(t, err)
	return d
}

func motionMessage(rec core.EventRecord) *core.EventMessage {
	return &core.EventMessage{
		EventID:            "msg-" + rec.EventID,
		Timestamp:          rec.Timestamp,
		ResourceUpdateName: deviceName,
		Events:             map[string]core.EventRecord{rec.Type: rec},
	}
}

func TestNew(t *testing.T) {
	d := newTestDevice(t)

	assert.Equal(t, deviceName, d.Name())
	assert.Equal(t, "cam.devices.CAMERA", d.Type())
	assert.Contains(t, d.Traits(), trait.CameraMotionName)
	assert.Contains(t, d.Traits(), trait.CameraPersonName)
	assert.Equal(t, map[string]string{
		"enterprises/proj-1/structures/s/rooms/r": "Hallway",
	}, d.ParentRelations())
	require.NotNil(t, d.EventMediaManager())
}

func TestNew_MissingName(t *testing.T) {
	_, err := New(Data{})
	require.Error(t, err)
}

func TestDevice_HandleEventMessage(t *testing.T) {
	d := newTestDevice(t)
	rec := testutil.NewEventBuilder(trait.MotionEventName).Build()

	require.NoError(t, d.HandleEventMessage(context.Background(), motionMessage(rec)))

	events := d.EventMediaManager().Events()
	require.Len(t, events, 1)
	assert.Equal(t, rec.SessionID, events[0].SessionID)
}

func TestDevice_HandleEventMessage_WrongDevice(t *testing.T) {
	d := newTestDevice(t)
	msg := motionMessage(testutil.NewEventBuilder(trait.MotionEventName).Build())
	msg.ResourceUpdateName = "enterprises/proj-1/devices/other"

	require.Error(t, d.HandleEventMessage(context.Background(), msg))
}

func TestDevice_HandleEventMessage_NotAResourceUpdate(t *testing.T) {
	d := newTestDevice(t)

	err := d.HandleEventMessage(context.Background(), &core.EventMessage{EventID: "msg-1"})
	require.Error(t, err)
}

func TestDevice_TraitUpdates(t *testing.T) {
	d := newTestDevice(t)
	now := time.Now().UTC()

	first := &core.EventMessage{
		EventID:            "msg-1",
		Timestamp:          now,
		ResourceUpdateName: deviceName,
		Traits: map[string]json.RawMessage{
			"cam.traits.Info": json.RawMessage(`{"customName":"Porch"}`),
		},
	}
	require.NoError(t, d.HandleEventMessage(context.Background(), first))

	got, ok := d.TraitData("cam.traits.Info")
	require.True(t, ok)
	assert.JSONEq(t, `{"customName":"Porch"}`, string(got))

	// A message that was delayed in transit must not clobber newer state.
	stale := &core.EventMessage{
		EventID:            "msg-0",
		Timestamp:          now.Add(-time.Minute),
		ResourceUpdateName: deviceName,
		Traits: map[string]json.RawMessage{
			"cam.traits.Info": json.RawMessage(`{"customName":"Old"}`),
		},
	}
	require.NoError(t, d.HandleEventMessage(context.Background(), stale))

	got, ok = d.TraitData("cam.traits.Info")
	require.True(t, ok)
	assert.JSONEq(t, `{"customName":"Porch"}`, string(got))
}

func TestDevice_EventCallbacks(t *testing.T) {
	d := newTestDevice(t)

	var seen []string
	remove := d.AddEventCallback(func(msg *core.EventMessage) {
		seen = append(seen, msg.EventID)
	})

	rec := testutil.NewEventBuilder(trait.MotionEventName).Build()
	require.NoError(t, d.HandleEventMessage(context.Background(), motionMessage(rec)))
	require.Len(t, seen, 1)

	remove()
	require.NoError(t, d.HandleEventMessage(context.Background(), motionMessage(
		testutil.NewEventBuilder(trait.MotionEventName).Build())))
	assert.Len(t, seen, 1)
}

func TestManager_Routing(t *testing.T) {
	m := NewManager()
	d := newTestDevice(t)
	m.Add(d)

	got, ok := m.Get(deviceName)
	require.True(t, ok)
	assert.Same(t, d, got)
	assert.Len(t, m.Devices(), 1)

	rec := testutil.NewEventBuilder(trait.MotionEventName).Build()
	require.NoError(t, m.HandleEvent(context.Background(), motionMessage(rec)))
	assert.Len(t, d.EventMediaManager().Events(), 1)
}

func TestManager_UnknownDeviceDropped(t *testing.T) {
	m := NewManager()
	msg := motionMessage(testutil.NewEventBuilder(trait.MotionEventName).Build())

	require.NoError(t, m.HandleEvent(context.Background(), msg))
}
