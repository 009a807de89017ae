package trait

import (
	"context"
	"sync"
	"time"

	"github.com/camkit/camkit/core"
)

// Trait qualified names for the supported camera traits and their events.
const (
	CameraEventImageName  = "cam.traits.CameraEventImage"
	CameraMotionName      = "cam.traits.CameraMotion"
	CameraPersonName      = "cam.traits.CameraPerson"
	CameraSoundName       = "cam.traits.CameraSound"
	DoorbellChimeName     = "cam.traits.DoorbellChime"
	CameraClipPreviewName = "cam.traits.CameraClipPreview"

	MotionEventName      = "cam.events.CameraMotion.Motion"
	PersonEventName      = "cam.events.CameraPerson.Person"
	SoundEventName       = "cam.events.CameraSound.Sound"
	ChimeEventName       = "cam.events.DoorbellChime.Chime"
	ClipPreviewEventName = "cam.events.CameraClipPreview.ClipPreview"
)

// GenerateImageCommand is the device command producing an event image URL.
const GenerateImageCommand = "cam.commands.CameraEventImage.GenerateImage"

// Trait is implemented by every device trait.
type Trait interface {
	TraitName() string
}

// CommandExecutor executes a command against a device resource. The API
// client implements it; tests substitute fakes.
type CommandExecutor interface {
	ExecuteCommand(ctx context.Context, deviceID, command string, params any, result any) error
}

// eventTrait is the shared last/active event bookkeeping embedded by every
// event producing trait.
type eventTrait struct {
	mu   sync.Mutex
	last *core.EventRecord
}

// HandleEvent records the incoming event as the trait's most recent one.
func (t *eventTrait) HandleEvent(rec core.EventRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = &rec
}

// LastEvent returns the most recently received event regardless of expiry.
func (t *eventTrait) LastEvent() *core.EventRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

// ActiveEvent returns the last event while its media window is open.
func (t *eventTrait) ActiveEvent() *core.EventRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last == nil || t.last.IsExpired(time.Now()) {
		return nil
	}
	return t.last
}
