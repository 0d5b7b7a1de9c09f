package lifecycle

import (
	"errors"
	"testing"

	rescueerrors "github.com/wippyai/rescue/errors"
)

type testObserver struct {
	events []Event
}

func (o *testObserver) OnLifecycleEvent(e Event) {
	o.events = append(o.events, e)
}

type dropCounter struct {
	drops int
}

func (d *dropCounter) Drop() { d.drops++ }

func TestTable_Basic(t *testing.T) {
	table := NewTable()

	// Insert
	h := table.Insert("session")
	if h == 0 {
		t.Fatal("Expected non-zero handle")
	}

	// Get
	val, ok := table.Get(h)
	if !ok {
		t.Fatal("Get failed")
	}
	if val != "session" {
		t.Fatalf("Expected 'session', got %v", val)
	}

	// State starts live
	s, ok := table.State(h)
	if !ok || s != StateLive {
		t.Fatalf("State = %v, want live", s)
	}

	// Begin: live -> cleaning
	val, err := table.Begin(h)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if val != "session" {
		t.Fatalf("Begin returned %v", val)
	}
	s, _ = table.State(h)
	if s != StateCleaning {
		t.Fatalf("State = %v, want cleaning", s)
	}

	// Finish: cleaning -> rescued
	val, err = table.Finish(h, true)
	if err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	if val != "session" {
		t.Fatalf("Finish returned %v", val)
	}

	// Terminal instances are gone
	if _, ok := table.Get(h); ok {
		t.Fatal("Get should fail after Finish")
	}
	if table.Len() != 0 {
		t.Fatal("Expected Len() == 0 after Finish")
	}
}

func TestTable_TransitionOrder(t *testing.T) {
	table := NewTable()
	h := table.Insert("x")

	// Finish before Begin must fail
	if _, err := table.Finish(h, true); err == nil {
		t.Fatal("Finish on live handle should fail")
	}

	if _, err := table.Begin(h); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	// Double Begin must fail
	if _, err := table.Begin(h); err == nil {
		t.Fatal("second Begin should fail")
	}

	if _, err := table.Finish(h, true); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	// Double Finish must fail: rescue happens at most once
	if _, err := table.Finish(h, true); err == nil {
		t.Fatal("second Finish should fail")
	}
}

func TestTable_StateErrorKind(t *testing.T) {
	table := NewTable()
	h := table.Insert("x")

	_, err := table.Finish(h, false)
	var re *rescueerrors.Error
	if !errors.As(err, &re) {
		t.Fatalf("expected structured error, got %T", err)
	}
	if re.Kind != rescueerrors.KindState {
		t.Errorf("Kind = %v, want state", re.Kind)
	}
	if re.GotType != "live" || re.WantType != "cleaning" {
		t.Errorf("got/want = %v/%v", re.GotType, re.WantType)
	}
}

func TestTable_Observer(t *testing.T) {
	table := NewTable()
	obs := &testObserver{}
	table.Subscribe(obs)

	h := table.Insert("a")
	if len(obs.events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(obs.events))
	}
	if obs.events[0].Type != EventCreated {
		t.Fatal("Expected EventCreated")
	}
	if obs.events[0].Handle != h {
		t.Fatal("Wrong handle in event")
	}

	table.Begin(h)
	table.Finish(h, true)
	if len(obs.events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(obs.events))
	}
	if obs.events[1].Type != EventCleaning {
		t.Fatal("Expected EventCleaning")
	}
	if obs.events[2].Type != EventRescued {
		t.Fatal("Expected EventRescued")
	}

	// Dropped path
	h2 := table.Insert("b")
	table.Begin(h2)
	table.Finish(h2, false)
	if obs.events[len(obs.events)-1].Type != EventDropped {
		t.Fatal("Expected EventDropped")
	}

	// Unsubscribe stops notifications
	table.Unsubscribe(obs)
	table.Insert("c")
	if len(obs.events) != 6 {
		t.Fatalf("Expected 6 events after unsubscribe, got %d", len(obs.events))
	}
}

func TestTable_HandleReuse(t *testing.T) {
	table := NewTable()

	h1 := table.Insert("a")
	table.Begin(h1)
	table.Finish(h1, false)

	h2 := table.Insert("b")
	if h2 != h1 {
		t.Errorf("Expected handle reuse, got %d then %d", h1, h2)
	}

	val, ok := table.Get(h2)
	if !ok || val != "b" {
		t.Fatalf("Get after reuse = %v, %v", val, ok)
	}
}

func TestTable_InvalidHandle(t *testing.T) {
	table := NewTable()

	if _, ok := table.Get(0); ok {
		t.Error("Get(0) should fail")
	}
	if _, ok := table.Get(99); ok {
		t.Error("Get of unknown handle should fail")
	}
	if _, err := table.Begin(0); err == nil {
		t.Error("Begin(0) should fail")
	}
	if _, err := table.Finish(42, true); err == nil {
		t.Error("Finish of unknown handle should fail")
	}
}

func TestTable_Clear(t *testing.T) {
	table := NewTable()
	d := &dropCounter{}

	table.Insert(d)
	table.Insert("plain")

	table.Clear()
	if table.Len() != 0 {
		t.Fatalf("Len = %d after Clear, want 0", table.Len())
	}
	if d.drops != 1 {
		t.Errorf("drops = %d, want 1", d.drops)
	}
}

func TestTable_Close(t *testing.T) {
	table := NewTable()
	d := &dropCounter{}
	table.Insert(d)

	if err := table.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if d.drops != 1 {
		t.Errorf("drops = %d, want 1", d.drops)
	}

	// No operations after close
	if h := table.Insert("x"); h != 0 {
		t.Error("Insert after Close should return 0")
	}
	if _, err := table.Begin(1); !errors.Is(err, rescueerrors.Closed()) {
		t.Errorf("Begin after Close = %v, want closed error", err)
	}

	// Close is idempotent
	if err := table.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
}

func TestTable_Each(t *testing.T) {
	table := NewTable()
	table.Insert("a")
	h := table.Insert("b")
	table.Begin(h)

	seen := map[Handle]State{}
	table.Each(func(h Handle, s State, _ any) bool {
		seen[h] = s
		return true
	})
	if len(seen) != 2 {
		t.Fatalf("Each visited %d entries, want 2", len(seen))
	}
	if seen[h] != StateCleaning {
		t.Errorf("State of %d = %v, want cleaning", h, seen[h])
	}
}
