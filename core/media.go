package core

// ImageType classifies the binary contents of fetched event media.
type ImageType int

const (
	// ImageTypeJPEG is a still frame captured for the event.
	ImageTypeJPEG ImageType = iota
	// ImageTypeClipPreview is a short video clip preview of the event.
	ImageTypeClipPreview
)

// String returns the string representation of the image type.
func (t ImageType) String() string {
	switch t {
	case ImageTypeJPEG:
		return "JPEG"
	case ImageTypeClipPreview:
		return "CLIP_PREVIEW"
	default:
		return "UNKNOWN"
	}
}

// ContentType returns the MIME content type for the image type.
func (t ImageType) ContentType() string {
	switch t {
	case ImageTypeClipPreview:
		return "video/mp4"
	default:
		return "image/jpeg"
	}
}

// Media is an immutable value holding raw media bytes and their
// classification. The contents are copied on construction and on read so a
// Media can be shared freely without risk of mutation.
type Media struct {
	contents  []byte
	imageType ImageType
}

// NewMedia creates a Media copying the provided bytes.
func NewMedia(contents []byte, imageType ImageType) Media {
	cp := make([]byte, len(contents))
	copy(cp, contents)
	return Media{contents: cp, imageType: imageType}
}

// Contents returns a copy of the media bytes.
func (m Media) Contents() []byte {
	cp := make([]byte, len(m.contents))
	copy(cp, m.contents)
	return cp
}

// Type returns the media classification.
func (m Media) Type() ImageType { return m.imageType }

// ContentType returns the MIME content type of the media.
func (m Media) ContentType() string { return m.imageType.ContentType() }

// EventMedia is a read-only view joining an event record with its fetched
// media.
type EventMedia struct {
	Event EventRecord
	Media Media
}

// ImageDescriptor is a fetchable reference to event media produced by a
// trait capability. Token, when present, authorizes the download.
type ImageDescriptor struct {
	URL   string
	Token string
	Type  ImageType
}
