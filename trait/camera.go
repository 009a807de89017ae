package trait

import (
	"context"
	"fmt"

	"github.com/camkit/camkit/core"
)

// CameraEventImage is the command backed capability that turns an event id
// into a short-lived, token authorized image URL.
type CameraEventImage struct {
	deviceID string
	exec     CommandExecutor
}

// NewCameraEventImage creates the capability for the device resource.
func NewCameraEventImage(deviceID string, exec CommandExecutor) *CameraEventImage {
	return &CameraEventImage{deviceID: deviceID, exec: exec}
}

// TraitName returns the trait qualified name.
func (t *CameraEventImage) TraitName() string { return CameraEventImageName }

type generateImageResults struct {
	Results struct {
		URL   string `json:"url"`
		Token string `json:"token"`
	} `json:"results"`
}

// GenerateImage executes the GenerateImage command for the event and returns
// a descriptor for the resulting still frame.
func (t *CameraEventImage) GenerateImage(ctx context.Context, eventID string) (*core.ImageDescriptor, error) {
	var res generateImageResults
	params := map[string]string{"eventId": eventID}
	if err := t.exec.ExecuteCommand(ctx, t.deviceID, GenerateImageCommand, params, &res); err != nil {
		return nil, err
	}
	if res.Results.URL == "" {
		return nil, fmt.Errorf("generate image for event %q returned no url", eventID)
	}
	return &core.ImageDescriptor{
		URL:   res.Results.URL,
		Token: res.Results.Token,
		Type:  core.ImageTypeJPEG,
	}, nil
}

// imageEventTrait is an event trait whose media is produced through the
// device's CameraEventImage capability.
type imageEventTrait struct {
	eventTrait
	traitName string
	eventName string
	image     *CameraEventImage
}

// TraitName returns the trait qualified name.
func (t *imageEventTrait) TraitName() string { return t.traitName }

// EventName returns the trait qualified event name this trait handles.
func (t *imageEventTrait) EventName() string { return t.eventName }

// CanGenerateImage reports whether the device exposes the CameraEventImage
// capability this trait needs.
func (t *imageEventTrait) CanGenerateImage() bool { return t.image != nil }

// GenerateImage produces a descriptor for the event, or ErrUnsupportedMedia
// when the device exposes no CameraEventImage capability.
func (t *imageEventTrait) GenerateImage(ctx context.Context, rec core.EventRecord) (*core.ImageDescriptor, error) {
	if t.image == nil {
		return nil, fmt.Errorf("%s: %w", t.traitName, core.ErrUnsupportedMedia)
	}
	return t.image.GenerateImage(ctx, rec.EventID)
}

// CameraMotion reports motion events observed by the camera.
type CameraMotion struct{ imageEventTrait }

// NewCameraMotion creates the trait; image may be nil when the device cannot
// generate event images.
func NewCameraMotion(image *CameraEventImage) *CameraMotion {
	return &CameraMotion{imageEventTrait{traitName: CameraMotionName, eventName: MotionEventName, image: image}}
}

// CameraPerson reports person detection events.
type CameraPerson struct{ imageEventTrait }

// NewCameraPerson creates the trait.
func NewCameraPerson(image *CameraEventImage) *CameraPerson {
	return &CameraPerson{imageEventTrait{traitName: CameraPersonName, eventName: PersonEventName, image: image}}
}

// CameraSound reports sound detection events.
type CameraSound struct{ imageEventTrait }

// NewCameraSound creates the trait.
func NewCameraSound(image *CameraEventImage) *CameraSound {
	return &CameraSound{imageEventTrait{traitName: CameraSoundName, eventName: SoundEventName, image: image}}
}

// DoorbellChime reports doorbell press events.
type DoorbellChime struct{ imageEventTrait }

// NewDoorbellChime creates the trait.
func NewDoorbellChime(image *CameraEventImage) *DoorbellChime {
	return &DoorbellChime{imageEventTrait{traitName: DoorbellChimeName, eventName: ChimeEventName, image: image}}
}

// CameraClipPreview serves short clip previews whose URL arrives inline in
// the event payload, so no command round-trip is needed.
type CameraClipPreview struct{ eventTrait }

// NewCameraClipPreview creates the trait.
func NewCameraClipPreview() *CameraClipPreview {
	return &CameraClipPreview{}
}

// TraitName returns the trait qualified name.
func (t *CameraClipPreview) TraitName() string { return CameraClipPreviewName }

// EventName returns the trait qualified event name this trait handles.
func (t *CameraClipPreview) EventName() string { return ClipPreviewEventName }

// CanGenerateImage always reports true; the preview URL arrives inline.
func (t *CameraClipPreview) CanGenerateImage() bool { return true }

// GenerateImage returns a descriptor pointing at the inline preview URL.
func (t *CameraClipPreview) GenerateImage(_ context.Context, rec core.EventRecord) (*core.ImageDescriptor, error) {
	if rec.PreviewURL == "" {
		return nil, fmt.Errorf("clip preview event %q carries no preview url", rec.EventID)
	}
	return &core.ImageDescriptor{URL: rec.PreviewURL, Type: core.ImageTypeClipPreview}, nil
}
