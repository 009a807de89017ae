package trait

import (
	"encoding/json"

	"github.com/camkit/camkit/core"
)

// BuildTraits constructs the trait set a device declares in its raw trait
// data. Unknown trait names are ignored so new server-side traits never break
// older clients. Event traits share the device's CameraEventImage capability
// when it is declared.
func BuildTraits(deviceID string, raw map[string]json.RawMessage, exec CommandExecutor) map[string]Trait {
	traits := make(map[string]Trait, len(raw))

	var image *CameraEventImage
	if _, ok := raw[CameraEventImageName]; ok {
		image = NewCameraEventImage(deviceID, exec)
		traits[CameraEventImageName] = image
	}

	for name := range raw {
		switch name {
		case CameraMotionName:
			traits[name] = NewCameraMotion(image)
		case CameraPersonName:
			traits[name] = NewCameraPerson(image)
		case CameraSoundName:
			traits[name] = NewCameraSound(image)
		case DoorbellChimeName:
			traits[name] = NewDoorbellChime(image)
		case CameraClipPreviewName:
			traits[name] = NewCameraClipPreview()
		}
	}
	return traits
}

// EventTraitMap indexes the device's event producing traits by their trait
// qualified event name, the shape consumed by the event media manager.
func EventTraitMap(traits map[string]Trait) map[string]core.EventImageGenerator {
	m := map[string]core.EventImageGenerator{}
	for _, t := range traits {
		gen, ok := t.(core.EventImageGenerator)
		if !ok {
			continue
		}
		m[gen.EventName()] = gen
	}
	return m
}
