package trait

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camkit/camkit/core"
)

// Interface compliance (compile-time assertions)
var (
	_ core.EventImageGenerator = (*CameraMotion)(nil)
	_ core.EventImageGenerator = (*CameraPerson)(nil)
	_ core.EventImageGenerator = (*CameraSound)(nil)
	_ core.EventImageGenerator = (*DoorbellChime)(nil)
	_ core.EventImageGenerator = (*CameraClipPreview)(nil)
)

type fakeExecutor struct {
	url      string
	token    string
	err      error
	commands []string
}

func (f *fakeExecutor) ExecuteCommand(_ context.Context, _ string, command string, _ any, result any) error {
	f.commands = append(f.commands, command)
	if f.err != nil {
		return f.err
	}
	payload := []byte(`{"results": {"url": "` + f.url + `", "token": "` + f.token + `"}}`)
	return json.Unmarshal(payload, result)
}

func freshRecord(eventType string) core.EventRecord {
	now := time.Now().UTC()
	return core.EventRecord{
		EventID:   "ev-1",
		SessionID: "sess-1",
		Type:      eventType,
		Timestamp: now,
		ExpiresAt: now.Add(30 * time.Second),
	}
}

func TestEventTrait_ActiveFollowsExpiry(t *testing.T) {
	motion := NewCameraMotion(nil)
	assert.Nil(t, motion.ActiveEvent())
	assert.Nil(t, motion.LastEvent())

	rec := freshRecord(MotionEventName)
	motion.HandleEvent(rec)
	require.NotNil(t, motion.ActiveEvent())
	assert.Equal(t, "ev-1", motion.ActiveEvent().EventID)

	expired := rec
	expired.ExpiresAt = time.Now().Add(-time.Second)
	motion.HandleEvent(expired)
	assert.Nil(t, motion.ActiveEvent(), "expired event is not active")
	require.NotNil(t, motion.LastEvent(), "last event survives expiry")
}

func TestCameraEventImage_GenerateImage(t *testing.T) {
	exec := &fakeExecutor{url: "https://media.example/still.jpg", token: "tok-1"}
	image := NewCameraEventImage("device-1", exec)
	motion := NewCameraMotion(image)

	desc, err := motion.GenerateImage(context.Background(), freshRecord(MotionEventName))
	require.NoError(t, err)
	assert.Equal(t, "https://media.example/still.jpg", desc.URL)
	assert.Equal(t, "tok-1", desc.Token)
	assert.Equal(t, core.ImageTypeJPEG, desc.Type)
	require.Len(t, exec.commands, 1)
	assert.Equal(t, GenerateImageCommand, exec.commands[0])
}

func TestCameraEventImage_EmptyURL(t *testing.T) {
	exec := &fakeExecutor{}
	image := NewCameraEventImage("device-1", exec)
	_, err := image.GenerateImage(context.Background(), "ev-1")
	assert.Error(t, err)
}

func TestImageEventTrait_UnsupportedMediaWithoutCapability(t *testing.T) {
	chime := NewDoorbellChime(nil)
	assert.False(t, chime.CanGenerateImage())
	_, err := chime.GenerateImage(context.Background(), freshRecord(ChimeEventName))
	assert.ErrorIs(t, err, core.ErrUnsupportedMedia)
}

func TestCameraClipPreview_InlineDescriptor(t *testing.T) {
	clip := NewCameraClipPreview()
	rec := freshRecord(ClipPreviewEventName)
	rec.PreviewURL = "https://media.example/clip.mp4"

	desc, err := clip.GenerateImage(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, rec.PreviewURL, desc.URL)
	assert.Empty(t, desc.Token)
	assert.Equal(t, core.ImageTypeClipPreview, desc.Type)

	rec.PreviewURL = ""
	_, err = clip.GenerateImage(context.Background(), rec)
	assert.Error(t, err)
}

func TestBuildTraits(t *testing.T) {
	raw := map[string]json.RawMessage{
		CameraEventImageName: []byte(`{}`),
		CameraMotionName:     []byte(`{}`),
		DoorbellChimeName:    []byte(`{}`),
		"cam.traits.Unknown": []byte(`{}`),
	}
	exec := &fakeExecutor{url: "https://media.example/x.jpg"}
	traits := BuildTraits("device-1", raw, exec)

	require.Len(t, traits, 3, "unknown traits are ignored")
	assert.Contains(t, traits, CameraMotionName)
	assert.Contains(t, traits, DoorbellChimeName)

	events := EventTraitMap(traits)
	require.Len(t, events, 2, "only event producing traits are indexed")
	assert.Contains(t, events, MotionEventName)
	assert.Contains(t, events, ChimeEventName)

	// the motion trait shares the device's event image capability
	desc, err := events[MotionEventName].GenerateImage(context.Background(), freshRecord(MotionEventName))
	require.NoError(t, err)
	assert.Equal(t, "https://media.example/x.jpg", desc.URL)
}

func TestBuildTraits_NoEventImageCapability(t *testing.T) {
	raw := map[string]json.RawMessage{
		CameraMotionName: []byte(`{}`),
	}
	traits := BuildTraits("device-1", raw, &fakeExecutor{})
	events := EventTraitMap(traits)
	require.Contains(t, events, MotionEventName)

	_, err := events[MotionEventName].GenerateImage(context.Background(), freshRecord(MotionEventName))
	assert.True(t, errors.Is(err, core.ErrUnsupportedMedia))
}
