package introspection

import "testing"

type point struct {
	X, Y int64
}

func (p point) Sum() int64 { return p.X + p.Y }

func (p *point) SetX(v int64) { p.X = v }

func TestGetPropertyGetReadsStructField(t *testing.T) {
	d := New()
	v, ok, err := d.GetPropertyGet(point{X: 3, Y: 4}, "x")
	if err != nil {
		t.Fatalf("GetPropertyGet: %v", err)
	}
	if !ok || v != int64(3) {
		t.Fatalf("got (%v, %v), want (3, true)", v, ok)
	}
}

func TestGetPropertyGetFallsBackToZeroArgMethod(t *testing.T) {
	d := New()
	v, ok, err := d.GetPropertyGet(point{X: 3, Y: 4}, "sum")
	if err != nil {
		t.Fatalf("GetPropertyGet: %v", err)
	}
	if !ok || v != int64(7) {
		t.Fatalf("got (%v, %v), want (7, true)", v, ok)
	}
}

func TestGetPropertySetThroughPointerSetter(t *testing.T) {
	d := New()
	p := &point{X: 1, Y: 2}
	ok, err := d.GetPropertySet(p, "x", int64(99))
	if err != nil {
		t.Fatalf("GetPropertySet: %v", err)
	}
	if !ok || p.X != 99 {
		t.Fatalf("got (ok=%v, p.X=%d), want (true, 99)", ok, p.X)
	}
}

func TestGetPropertySetOnMap(t *testing.T) {
	d := New()
	m := map[interface{}]interface{}{}
	ok, err := d.GetPropertySet(m, "key", "value")
	if err != nil {
		t.Fatalf("GetPropertySet: %v", err)
	}
	if !ok || m["key"] != "value" {
		t.Fatalf("got (ok=%v, m=%v)", ok, m)
	}
}

func TestGetMethodFindsCapitalizedMethod(t *testing.T) {
	d := New()
	m, ok := d.GetMethod(point{X: 1, Y: 2}, "sum", nil)
	if !ok {
		t.Fatalf("expected to resolve method \"sum\" to Sum")
	}
	v, err := d.Invoke(m, nil)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if v != int64(3) {
		t.Fatalf("got %#v, want 3", v)
	}
}

func TestGetIteratorOverSlice(t *testing.T) {
	d := New()
	next, err := d.GetIterator([]interface{}{int64(1), int64(2), int64(3)})
	if err != nil {
		t.Fatalf("GetIterator: %v", err)
	}
	var got []interface{}
	for {
		v, ok := next()
		if !ok {
			break
		}
		got = append(got, v)
	}
	if len(got) != 3 || got[0] != int64(1) || got[2] != int64(3) {
		t.Fatalf("got %v", got)
	}
}

func TestGetIteratorOverMap(t *testing.T) {
	d := New()
	next, err := d.GetIterator(map[string]int{"a": 1})
	if err != nil {
		t.Fatalf("GetIterator: %v", err)
	}
	v, ok := next()
	if !ok || v != "a" {
		t.Fatalf("got (%v, %v), want (\"a\", true)", v, ok)
	}
	_, ok = next()
	if ok {
		t.Fatalf("expected exhausted iterator after the single key")
	}
}

func TestGetIteratorRejectsNonIterable(t *testing.T) {
	d := New()
	if _, err := d.GetIterator(int64(5)); err == nil {
		t.Fatalf("expected an error iterating a non-iterable value")
	}
}
