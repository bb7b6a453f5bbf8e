package events

import "strings"

// EventType is assigned server-side when an event is created, so clients
// never have to guess a category from free text.
type EventType int

const (
	TYPE_GENERAL EventType = iota
	TYPE_WORKSHOP
	TYPE_CONFERENCE
	TYPE_NETWORKING
	TYPE_TRAINING
)

func (t EventType) String() string {
	switch t {
	case TYPE_WORKSHOP:
		return "workshop"
	case TYPE_CONFERENCE:
		return "conference"
	case TYPE_NETWORKING:
		return "networking"
	case TYPE_TRAINING:
		return "training"
	default:
		return "event"
	}
}

// Label is the human-facing name for the type.
func (t EventType) Label() string {
	switch t {
	case TYPE_WORKSHOP:
		return "Workshop"
	case TYPE_CONFERENCE:
		return "Conference"
	case TYPE_NETWORKING:
		return "Networking"
	case TYPE_TRAINING:
		return "Training"
	default:
		return "Event"
	}
}

// ParseEventType maps the wire name back to an EventType. The boolean is
// false for names that are not a known type.
func ParseEventType(s string) (EventType, bool) {
	switch strings.ToLower(s) {
	case "workshop":
		return TYPE_WORKSHOP, true
	case "conference":
		return TYPE_CONFERENCE, true
	case "networking":
		return TYPE_NETWORKING, true
	case "training":
		return TYPE_TRAINING, true
	case "event":
		return TYPE_GENERAL, true
	default:
		return TYPE_GENERAL, false
	}
}

var classifierOrder = []struct {
	keyword string
	t       EventType
}{
	{"workshop", TYPE_WORKSHOP},
	{"conference", TYPE_CONFERENCE},
	{"networking", TYPE_NETWORKING},
	{"training", TYPE_TRAINING},
}

// ClassifyEventType applies the keyword heuristic over title and description.
// First match wins, in the order workshop, conference, networking, training.
func ClassifyEventType(title, description string) EventType {
	title = strings.ToLower(title)
	description = strings.ToLower(description)

	for _, c := range classifierOrder {
		if strings.Contains(title, c.keyword) || strings.Contains(description, c.keyword) {
			return c.t
		}
	}

	return TYPE_GENERAL
}
