package types

// Raw input families accepted by the normaliser.
const (
	FamilyTouch   = "touch"
	FamilyPointer = "pointer"
)

// RawTouch is one contact as reported by a touch-family event.
type RawTouch struct {
	Identifier int     `json:"identifier"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
}

// RawEvent is a device input event from either family.
//
// Touch family: Type is touchstart, touchmove, touchend or touchcancel,
// Touches holds every contact still down and ChangedTouches the contacts
// this event is about.
//
// Pointer family: Type is pointerdown, pointermove, pointerup or
// pointercancel and the single sample is PointerID/X/Y.
type RawEvent struct {
	Family         string     `json:"family"`
	Type           string     `json:"type"`
	Touches        []RawTouch `json:"touches,omitempty"`
	ChangedTouches []RawTouch `json:"changedTouches,omitempty"`
	PointerID      int        `json:"pointerId,omitempty"`
	X              float64    `json:"x,omitempty"`
	Y              float64    `json:"y,omitempty"`
	// Timestamp in milliseconds. Zero means "now" on the engine clock.
	Timestamp float64 `json:"timestamp,omitempty"`
	Target    string  `json:"target,omitempty"`
}
