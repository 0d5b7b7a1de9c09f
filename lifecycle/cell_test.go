package lifecycle

import (
	"errors"
	"testing"

	rescueerrors "github.com/wippyai/rescue/errors"
)

func TestCell_TakeOnce(t *testing.T) {
	cell := NewCell("payload")

	if cell.Taken() {
		t.Fatal("new cell should not be taken")
	}

	v, err := cell.Take()
	if err != nil {
		t.Fatalf("Take failed: %v", err)
	}
	if v != "payload" {
		t.Fatalf("Take = %v, want 'payload'", v)
	}
	if !cell.Taken() {
		t.Fatal("cell should be taken after Take")
	}
}

func TestCell_SecondTakeFails(t *testing.T) {
	cell := NewCell(42)
	cell.Take()

	v, err := cell.Take()
	if err == nil {
		t.Fatal("second Take should fail")
	}
	if v != 0 {
		t.Fatalf("second Take = %v, want zero value", v)
	}

	var re *rescueerrors.Error
	if !errors.As(err, &re) || re.Kind != rescueerrors.KindTaken {
		t.Errorf("expected taken error, got %v", err)
	}
}

func TestCell_DropReleasesUntaken(t *testing.T) {
	d := &dropCounter{}
	cell := NewCell(d)

	cell.Drop()
	if d.drops != 1 {
		t.Errorf("drops = %d, want 1", d.drops)
	}

	// Drop after Drop is a no-op
	cell.Drop()
	if d.drops != 1 {
		t.Errorf("drops = %d after second Drop, want 1", d.drops)
	}
}

func TestCell_DropAfterTakeIsNoop(t *testing.T) {
	d := &dropCounter{}
	cell := NewCell(d)

	cell.Take()
	cell.Drop()
	if d.drops != 0 {
		t.Errorf("drops = %d, want 0: taken value must not be dropped", d.drops)
	}
}

type closeCounter struct {
	closes int
}

func (c *closeCounter) Close() error {
	c.closes++
	return nil
}

func TestRelease(t *testing.T) {
	d := &dropCounter{}
	Release(d)
	if d.drops != 1 {
		t.Errorf("Dropper drops = %d, want 1", d.drops)
	}

	c := &closeCounter{}
	Release(c)
	if c.closes != 1 {
		t.Errorf("Closer closes = %d, want 1", c.closes)
	}

	// Plain values are left alone
	Release("nothing to do")
	Release(nil)
}
