package enums

import "fmt"

// MediaType is the classification the pipeline assigns to an uploaded object.
type MediaType string

const (
	MediaTypeImage       MediaType = "image"
	MediaTypeVideo       MediaType = "video"
	MediaTypeAudio       MediaType = "audio"
	MediaTypeUnsupported MediaType = "unsupported"
)

var validMediaTypes = []MediaType{
	MediaTypeImage,
	MediaTypeVideo,
	MediaTypeAudio,
	MediaTypeUnsupported,
}

// String implements fmt.Stringer.
func (t MediaType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known MediaType.
func (t MediaType) IsValid() bool {
	for _, candidate := range validMediaTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseMediaType converts raw input into a MediaType.
func ParseMediaType(value string) (MediaType, error) {
	for _, candidate := range validMediaTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid media type %q", value)
}

// EventStatus is the lifecycle state of a media processing event.
type EventStatus string

const (
	EventStatusPending    EventStatus = "pending"
	EventStatusProcessing EventStatus = "processing"
	EventStatusCompleted  EventStatus = "completed"
	EventStatusFailed     EventStatus = "failed"
)

var validEventStatuses = []EventStatus{
	EventStatusPending,
	EventStatusProcessing,
	EventStatusCompleted,
	EventStatusFailed,
}

// String implements fmt.Stringer.
func (s EventStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known EventStatus.
func (s EventStatus) IsValid() bool {
	for _, candidate := range validEventStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status is an end state.
func (s EventStatus) IsTerminal() bool {
	return s == EventStatusCompleted || s == EventStatusFailed
}

// ParseEventStatus converts raw input into an EventStatus.
func ParseEventStatus(value string) (EventStatus, error) {
	for _, candidate := range validEventStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event status %q", value)
}
