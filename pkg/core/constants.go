package core

// EventKind is the one-byte discriminant written ahead of an event's
// signature bytes when events are mixed into an entry id. The values are
// part of the wire format and must never be renumbered.
type EventKind uint8

const (
	KindTransaction EventKind = iota
	KindSignature
	KindTimestamp
)

func (k EventKind) String() string {
	switch k {
	case KindTransaction:
		return "transaction"
	case KindSignature:
		return "signature"
	case KindTimestamp:
		return "timestamp"
	default:
		return "unknown"
	}
}

// ParseEventKind is the inverse of EventKind.String.
func ParseEventKind(s string) (EventKind, bool) {
	switch s {
	case "transaction":
		return KindTransaction, true
	case "signature":
		return KindSignature, true
	case "timestamp":
		return KindTimestamp, true
	default:
		return 0, false
	}
}

const (
	DefaultHashesPerTick = 1000
	DefaultTicksPerEvent = 4
)
