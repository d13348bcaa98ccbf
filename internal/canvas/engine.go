package canvas

// Mode identifies which gesture currently owns the pointer stream.
type Mode int

const (
	// ModeIdle means no gesture is in progress.
	ModeIdle Mode = iota
	// ModeDraggingTable repositions a single table under the pointer.
	ModeDraggingTable
	// ModePanningCanvas scrolls the visible window opposite to pointer travel.
	ModePanningCanvas
)

// PrimaryButton is the only mouse button that may start a canvas pan.
// Touch input has no button and callers pass PrimaryButton for it.
const PrimaryButton = 0

// DefaultMoveThreshold is the per-axis distance in pixels beyond which a
// gesture counts as a drag rather than a click.
const DefaultMoveThreshold = 3

// Point is a position or offset in canvas pixels.
type Point struct {
	X float64
	Y float64
}

// Update describes the state produced by one pointer-move event.
type Update struct {
	Mode     Mode
	TableID  string
	Position Point // table position while dragging
	Scroll   Point // scroll offset while panning
}

// GestureEnd reports the outcome of a released gesture. Commit is true only
// for a table drag that crossed the movement threshold; a plain click ends
// with Commit false and Moved false so the table stays click-eligible.
type GestureEnd struct {
	Mode     Mode
	TableID  string
	Position Point
	Moved    bool
	Commit   bool
}

// Engine interprets pointer-down/move/up events into either "move a table"
// or "pan the canvas". The three modes are mutually exclusive by
// construction: one state record, one mode field. A new gesture start while
// another is active overwrites the stale state rather than rejecting it.
type Engine struct {
	mode      Mode
	targetID  string
	start     Point
	initial   Point
	lastDelta Point
	hasMoved  bool
	threshold float64
}

// NewEngine returns an idle engine with the default movement threshold.
func NewEngine() *Engine {
	return &Engine{threshold: DefaultMoveThreshold}
}

// NewEngineWithThreshold overrides the click-suppression threshold.
func NewEngineWithThreshold(threshold float64) *Engine {
	if threshold <= 0 {
		threshold = DefaultMoveThreshold
	}
	return &Engine{threshold: threshold}
}

// Mode returns the currently active mode.
func (e *Engine) Mode() Mode {
	return e.mode
}

// Target returns the table owning the current drag, if any.
func (e *Engine) Target() string {
	if e.mode != ModeDraggingTable {
		return ""
	}
	return e.targetID
}

// HasMoved reports whether the current gesture crossed the threshold.
func (e *Engine) HasMoved() bool {
	return e.hasMoved
}

// BeginTableDrag starts dragging the given table. The caller must have
// stopped the event from reaching the canvas pan handler: a press on a
// table never also starts a pan.
func (e *Engine) BeginTableDrag(tableID string, pointer, tablePos Point) {
	e.mode = ModeDraggingTable
	e.targetID = tableID
	e.start = pointer
	e.initial = tablePos
	e.lastDelta = Point{}
	e.hasMoved = false
}

// BeginPan starts panning the canvas from a press on the background.
// Only the primary button may start a mouse pan; other buttons are ignored
// and the engine stays in its current mode.
func (e *Engine) BeginPan(pointer Point, button int, scroll Point) bool {
	if button != PrimaryButton {
		return false
	}
	e.mode = ModePanningCanvas
	e.targetID = ""
	e.start = pointer
	e.initial = scroll
	e.lastDelta = Point{}
	e.hasMoved = false
	return true
}

// Move consumes a pointer-move event and returns the resulting position or
// scroll offset. The second return is false while idle. Positions are plain
// pixel arithmetic: no rounding, snapping or grid alignment.
func (e *Engine) Move(pointer Point) (Update, bool) {
	if e.mode == ModeIdle {
		return Update{}, false
	}

	delta := Point{X: pointer.X - e.start.X, Y: pointer.Y - e.start.Y}
	e.lastDelta = delta

	// Latches for the remainder of the gesture once either axis exceeds
	// the threshold.
	if abs(delta.X) > e.threshold || abs(delta.Y) > e.threshold {
		e.hasMoved = true
	}

	switch e.mode {
	case ModeDraggingTable:
		return Update{
			Mode:     ModeDraggingTable,
			TableID:  e.targetID,
			Position: Point{X: e.initial.X + delta.X, Y: e.initial.Y + delta.Y},
		}, true
	default:
		return Update{
			Mode:   ModePanningCanvas,
			Scroll: Point{X: e.initial.X - delta.X, Y: e.initial.Y - delta.Y},
		}, true
	}
}

// End releases the current gesture unconditionally and returns what, if
// anything, should be committed. The final position uses the latest
// observed delta, so coalesced intermediate moves do not change the result.
func (e *Engine) End() GestureEnd {
	result := GestureEnd{
		Mode:    e.mode,
		TableID: e.targetID,
		Moved:   e.hasMoved,
	}
	switch e.mode {
	case ModeDraggingTable:
		result.Position = Point{X: e.initial.X + e.lastDelta.X, Y: e.initial.Y + e.lastDelta.Y}
		result.Commit = e.hasMoved
	case ModePanningCanvas:
		result.Position = Point{X: e.initial.X - e.lastDelta.X, Y: e.initial.Y - e.lastDelta.Y}
	}

	e.mode = ModeIdle
	e.targetID = ""
	e.lastDelta = Point{}
	return result
}

func abs(value float64) float64 {
	if value < 0 {
		return -value
	}
	return value
}
