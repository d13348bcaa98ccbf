package canvas

import (
	"context"
	"errors"
	"math/rand"

	"github.com/yearendparty/banquet/backend/internal/seating"
)

const (
	defaultTableName  = "新桌子"
	defaultSeatCount  = 8
	addTableBaseShift = 300
	addTableJitterMax = 50
)

var (
	// ErrMissingIDProvider indicates the editor was built without an id source.
	ErrMissingIDProvider = errors.New("canvas: id provider is required")
	// ErrTableNotFound indicates an edit referenced an unknown table.
	ErrTableNotFound = errors.New("canvas: table not found")
)

// Saver persists the whole table list in one shot. Implemented by the
// seating service; save is full-replace, last writer wins.
type Saver interface {
	ReplaceAll(ctx context.Context, tables []seating.Table) error
}

// IDProvider issues identifiers for tables and seats added by the editor.
type IDProvider interface {
	NewID() (string, error)
}

// EditorConfig wires the layout editor.
type EditorConfig struct {
	Tables     []seating.Table
	IDProvider IDProvider
	// Jitter returns a value in [0,1); defaults to math/rand. Injectable
	// so tests can pin the position of an added table.
	Jitter func() float64
	// MoveThreshold overrides the click-suppression threshold in pixels.
	MoveThreshold float64
}

// Editor holds the admin's optimistic local copy of the layout: an
// in-memory table list mutated by drags and CRUD edits, reconciled with
// storage only at explicit save.
type Editor struct {
	tables     []seating.Table
	engine     *Engine
	scroll     Point
	dirty      bool
	idProvider IDProvider
	jitter     func() float64
	lastMoved  bool
}

// NewEditor constructs an editor over a snapshot of the table list.
func NewEditor(cfg EditorConfig) (*Editor, error) {
	if cfg.IDProvider == nil {
		return nil, ErrMissingIDProvider
	}
	jitter := cfg.Jitter
	if jitter == nil {
		jitter = rand.Float64
	}
	engine := NewEngine()
	if cfg.MoveThreshold > 0 {
		engine = NewEngineWithThreshold(cfg.MoveThreshold)
	}
	return &Editor{
		tables:     append([]seating.Table(nil), cfg.Tables...),
		engine:     engine,
		idProvider: cfg.IDProvider,
		jitter:     jitter,
	}, nil
}

// Tables exposes the current in-memory layout.
func (ed *Editor) Tables() []seating.Table {
	return ed.tables
}

// Dirty reports whether unsaved changes exist.
func (ed *Editor) Dirty() bool {
	return ed.dirty
}

// Scroll returns the current canvas scroll offset.
func (ed *Editor) Scroll() Point {
	return ed.scroll
}

// PointerDownOnTable begins a table drag. Returns false for an unknown
// table, in which case the engine state is untouched.
func (ed *Editor) PointerDownOnTable(tableID string, pointer Point) bool {
	table := ed.findTable(tableID)
	if table == nil {
		return false
	}
	ed.engine.BeginTableDrag(tableID, pointer, Point{X: table.X, Y: table.Y})
	return true
}

// PointerDownOnCanvas begins a pan from a press on the background.
func (ed *Editor) PointerDownOnCanvas(pointer Point, button int) bool {
	return ed.engine.BeginPan(pointer, button, ed.scroll)
}

// PointerMove feeds one move event through the engine. While dragging, the
// target table's position tracks the pointer only after the threshold is
// crossed, so a sub-threshold gesture leaves the layout untouched. While
// panning, the scroll offset updates on every move.
func (ed *Editor) PointerMove(pointer Point) {
	update, active := ed.engine.Move(pointer)
	if !active {
		return
	}
	switch update.Mode {
	case ModeDraggingTable:
		if !ed.engine.HasMoved() {
			return
		}
		if table := ed.findTable(update.TableID); table != nil {
			table.X = update.Position.X
			table.Y = update.Position.Y
		}
	case ModePanningCanvas:
		ed.scroll = update.Scroll
	}
}

// PointerUp releases the gesture. A table drag that crossed the threshold
// commits the final position into the table list and marks the document
// dirty; a plain click commits nothing.
func (ed *Editor) PointerUp() GestureEnd {
	end := ed.engine.End()
	ed.lastMoved = end.Moved
	if end.Commit {
		if table := ed.findTable(end.TableID); table != nil {
			table.X = end.Position.X
			table.Y = end.Position.Y
			ed.dirty = true
		}
	}
	return end
}

// ClickEligible reports whether a click following the last gesture should
// open the edit dialog. A drag past the threshold suppresses the click.
func (ed *Editor) ClickEligible() bool {
	return !ed.lastMoved
}

// AddTable appends a table with a fresh id, the default name and eight
// empty seats. The position derives from the current scroll offset plus a
// small random jitter so repeated adds do not overlap exactly.
func (ed *Editor) AddTable() (seating.Table, error) {
	tableID, err := ed.idProvider.NewID()
	if err != nil {
		return seating.Table{}, err
	}
	seats := make([]seating.Seat, 0, defaultSeatCount)
	for i := 0; i < defaultSeatCount; i++ {
		seatID, err := ed.idProvider.NewID()
		if err != nil {
			return seating.Table{}, err
		}
		seats = append(seats, seating.Seat{
			ID:         seatID,
			TableID:    tableID,
			SeatNumber: i + 1,
		})
	}
	table := seating.Table{
		ID:    tableID,
		Name:  defaultTableName,
		X:     ed.scroll.X + addTableBaseShift + ed.jitter()*addTableJitterMax,
		Y:     ed.scroll.Y + addTableBaseShift + ed.jitter()*addTableJitterMax,
		Seats: seats,
	}
	ed.tables = append(ed.tables, table)
	ed.dirty = true
	return table, nil
}

// UpdateTable replaces a table's name and seats wholesale from the edit
// form. Position is preserved.
func (ed *Editor) UpdateTable(updated seating.Table) error {
	table := ed.findTable(updated.ID)
	if table == nil {
		return ErrTableNotFound
	}
	table.Name = updated.Name
	table.Seats = append([]seating.Seat(nil), updated.Seats...)
	ed.dirty = true
	return nil
}

// AddSeat appends an empty seat with the next sequential number.
func (ed *Editor) AddSeat(tableID string) (seating.Seat, error) {
	table := ed.findTable(tableID)
	if table == nil {
		return seating.Seat{}, ErrTableNotFound
	}
	seatID, err := ed.idProvider.NewID()
	if err != nil {
		return seating.Seat{}, err
	}
	seat := seating.Seat{
		ID:         seatID,
		TableID:    tableID,
		SeatNumber: len(table.Seats) + 1,
	}
	table.Seats = append(table.Seats, seat)
	ed.dirty = true
	return seat, nil
}

// RemoveSeat deletes a seat and renumbers the remaining seats to a dense
// 1..N sequence in their current order. Seat identity is preserved; only
// seat numbers are recomputed.
func (ed *Editor) RemoveSeat(tableID, seatID string) error {
	table := ed.findTable(tableID)
	if table == nil {
		return ErrTableNotFound
	}
	remaining := make([]seating.Seat, 0, len(table.Seats))
	for _, seat := range table.Seats {
		if seat.ID == seatID {
			continue
		}
		seat.SeatNumber = len(remaining) + 1
		remaining = append(remaining, seat)
	}
	table.Seats = remaining
	ed.dirty = true
	return nil
}

// DeleteTable removes the table and all its seats.
func (ed *Editor) DeleteTable(tableID string) error {
	for i := range ed.tables {
		if ed.tables[i].ID != tableID {
			continue
		}
		ed.tables = append(ed.tables[:i], ed.tables[i+1:]...)
		ed.dirty = true
		return nil
	}
	return ErrTableNotFound
}

// Save pushes the full in-memory list through the saver. The dirty flag
// clears only on success; on failure the local copy is kept so the admin
// can retry.
func (ed *Editor) Save(ctx context.Context, saver Saver) error {
	if err := saver.ReplaceAll(ctx, ed.tables); err != nil {
		return err
	}
	ed.dirty = false
	return nil
}

func (ed *Editor) findTable(tableID string) *seating.Table {
	for i := range ed.tables {
		if ed.tables[i].ID == tableID {
			return &ed.tables[i]
		}
	}
	return nil
}
