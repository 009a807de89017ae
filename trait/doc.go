// Package trait implements the camera trait capabilities a device exposes.
//
// Event traits (CameraMotion, CameraPerson, CameraSound, DoorbellChime,
// CameraClipPreview) track the most recent event they have seen and implement
// core.EventImageGenerator so the event media manager can resolve active
// events and produce fetchable image descriptors. Command backed traits
// delegate descriptor generation to the device's CameraEventImage capability;
// clip previews carry their media URL inline in the event payload.
package trait
