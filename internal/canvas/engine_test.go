package canvas

import "testing"

func TestDragCommitsInitialPlusTotalDelta(t *testing.T) {
	engine := NewEngine()
	engine.BeginTableDrag("t1", Point{X: 100, Y: 100}, Point{X: 300, Y: 50})

	// Many intermediate moves; only the latest delta matters at release.
	engine.Move(Point{X: 110, Y: 95})
	engine.Move(Point{X: 140, Y: 120})
	engine.Move(Point{X: 137, Y: 180})

	end := engine.End()
	if end.Mode != ModeDraggingTable || end.TableID != "t1" {
		t.Fatalf("unexpected gesture end: %+v", end)
	}
	if !end.Moved || !end.Commit {
		t.Fatalf("expected a committed drag, got %+v", end)
	}
	if end.Position.X != 337 || end.Position.Y != 130 {
		t.Fatalf("expected position (337,130), got (%v,%v)", end.Position.X, end.Position.Y)
	}
	if engine.Mode() != ModeIdle {
		t.Fatalf("expected idle after release, got %v", engine.Mode())
	}
}

func TestDragCommitIndependentOfCoalescedMoves(t *testing.T) {
	dense := NewEngine()
	dense.BeginTableDrag("t1", Point{}, Point{X: 10, Y: 10})
	for x := 1; x <= 50; x++ {
		dense.Move(Point{X: float64(x), Y: float64(x)})
	}
	denseEnd := dense.End()

	sparse := NewEngine()
	sparse.BeginTableDrag("t1", Point{}, Point{X: 10, Y: 10})
	sparse.Move(Point{X: 50, Y: 50})
	sparseEnd := sparse.End()

	if denseEnd.Position != sparseEnd.Position {
		t.Fatalf("coalescing changed the result: %+v vs %+v", denseEnd.Position, sparseEnd.Position)
	}
}

func TestSubThresholdGestureIsAClick(t *testing.T) {
	engine := NewEngine()
	engine.BeginTableDrag("t1", Point{X: 100, Y: 100}, Point{X: 300, Y: 50})

	// 3px exactly does not cross the strict > threshold.
	engine.Move(Point{X: 103, Y: 100})
	engine.Move(Point{X: 100, Y: 97})

	end := engine.End()
	if end.Moved {
		t.Fatalf("expected click classification, got moved gesture")
	}
	if end.Commit {
		t.Fatalf("expected no position commit for a click")
	}
}

func TestMovedFlagLatchesForGestureDuration(t *testing.T) {
	engine := NewEngine()
	engine.BeginTableDrag("t1", Point{X: 0, Y: 0}, Point{})

	engine.Move(Point{X: 10, Y: 0})
	if !engine.HasMoved() {
		t.Fatalf("expected hasMoved after crossing threshold")
	}

	// Returning under the threshold must not clear the latch.
	engine.Move(Point{X: 1, Y: 0})
	if !engine.HasMoved() {
		t.Fatalf("expected hasMoved to stay latched")
	}

	end := engine.End()
	if !end.Moved || !end.Commit {
		t.Fatalf("expected committed drag, got %+v", end)
	}
}

func TestThresholdChecksEachAxisIndependently(t *testing.T) {
	engine := NewEngine()
	engine.BeginTableDrag("t1", Point{}, Point{})
	engine.Move(Point{X: 0, Y: 4})
	if !engine.HasMoved() {
		t.Fatalf("expected vertical-only movement to cross threshold")
	}
}

func TestPanScrollsOppositeToPointerTravel(t *testing.T) {
	engine := NewEngine()
	if !engine.BeginPan(Point{X: 200, Y: 200}, PrimaryButton, Point{X: 500, Y: 400}) {
		t.Fatalf("expected pan to start")
	}

	engine.Move(Point{X: 260, Y: 150})
	end := engine.End()

	if end.Mode != ModePanningCanvas {
		t.Fatalf("unexpected mode: %v", end.Mode)
	}
	if end.Position.X != 440 || end.Position.Y != 450 {
		t.Fatalf("expected scroll (440,450), got (%v,%v)", end.Position.X, end.Position.Y)
	}
	if end.Commit {
		t.Fatalf("pan must not commit a table position")
	}
}

func TestNonPrimaryButtonDoesNotStartPan(t *testing.T) {
	engine := NewEngine()
	if engine.BeginPan(Point{}, 2, Point{}) {
		t.Fatalf("expected secondary button press to be ignored")
	}
	if engine.Mode() != ModeIdle {
		t.Fatalf("expected engine to stay idle")
	}
}

func TestNewGestureOverwritesStaleState(t *testing.T) {
	engine := NewEngine()
	engine.BeginTableDrag("t1", Point{X: 0, Y: 0}, Point{X: 10, Y: 10})
	engine.Move(Point{X: 40, Y: 40})

	// A second press without a release must not blend state.
	engine.BeginTableDrag("t2", Point{X: 100, Y: 100}, Point{X: 0, Y: 0})
	if engine.HasMoved() {
		t.Fatalf("expected fresh gesture to reset hasMoved")
	}

	engine.Move(Point{X: 105, Y: 100})
	end := engine.End()
	if end.TableID != "t2" {
		t.Fatalf("expected second gesture to own the drag, got %s", end.TableID)
	}
	if end.Position.X != 5 || end.Position.Y != 0 {
		t.Fatalf("unexpected position: %+v", end.Position)
	}
}

func TestMoveWhileIdleIsIgnored(t *testing.T) {
	engine := NewEngine()
	if _, active := engine.Move(Point{X: 50, Y: 50}); active {
		t.Fatalf("expected idle engine to ignore moves")
	}
}

func TestReleaseWithoutMovesEndsGesture(t *testing.T) {
	engine := NewEngine()
	engine.BeginTableDrag("t1", Point{X: 1, Y: 1}, Point{X: 2, Y: 2})
	end := engine.End()
	if end.Moved || end.Commit {
		t.Fatalf("expected plain click end, got %+v", end)
	}
	if engine.Mode() != ModeIdle {
		t.Fatalf("expected idle after release")
	}
}
