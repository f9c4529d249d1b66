package pool

import "testing"

func TestLocatorBuilder(t *testing.T) {
	b := AcquireLocatorBuilder()
	defer b.Release()

	got := b.Segment("PID").Field(5).Component(1).Subcomponent(2).String()
	if got != "PID-5.1.2" {
		t.Errorf("locator = %q; want %q", got, "PID-5.1.2")
	}
}

func TestLocatorBuilderTruncate(t *testing.T) {
	b := AcquireLocatorBuilder()
	defer b.Release()

	b.Segment("OBX").Field(3)
	mark := b.Len()

	b.Component(1)
	if b.String() != "OBX-3.1" {
		t.Fatalf("locator = %q", b.String())
	}

	b.Truncate(mark)
	b.Component(2)
	if b.String() != "OBX-3.2" {
		t.Errorf("after Truncate, locator = %q; want %q", b.String(), "OBX-3.2")
	}
}

func TestLocatorBuilderReuse(t *testing.T) {
	b := AcquireLocatorBuilder()
	b.Segment("MSH").Field(9)
	s := b.String()
	b.Release()

	b2 := AcquireLocatorBuilder()
	defer b2.Release()

	if b2.Len() != 0 {
		t.Error("pooled builder was not reset")
	}
	// Earlier String results must stay valid after Release.
	if s != "MSH-9" {
		t.Errorf("detached string = %q; want %q", s, "MSH-9")
	}
}
