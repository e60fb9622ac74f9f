package window

// EventKind identifies the input or window event delivered to the event handler.
type EventKind int

const (
	// EventClose is sent when the user asks to close the window.
	EventClose EventKind = iota

	// EventPointerMove carries the pointer position in window pixels in X and Y.
	EventPointerMove

	// EventScroll carries the vertical scroll offset in Delta. Positive scrolls up.
	EventScroll

	// EventResize carries the new framebuffer size in Width and Height (pixels, may be zero
	// while minimized).
	EventResize

	// EventRedraw is sent once per RequestRedraw call batch, after pending input has been handled.
	EventRedraw
)

func (k EventKind) String() string {
	switch k {
	case EventClose:
		return "close"
	case EventPointerMove:
		return "pointer-move"
	case EventScroll:
		return "scroll"
	case EventResize:
		return "resize"
	case EventRedraw:
		return "redraw"
	default:
		return "unknown"
	}
}

// Event is a single window event. Only the fields documented for its Kind are set.
type Event struct {
	Kind EventKind

	X, Y  float64
	Delta float64

	Width, Height int
}
