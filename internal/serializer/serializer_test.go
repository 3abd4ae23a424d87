package serializer

import (
	"encoding/gob"
	"path/filepath"
	"testing"
)

func TestJSONSaverLoader_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "value.json")
	want := map[string]any{"a": float64(1), "b": "two"}

	if err := (JSONSaver{}).Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := (JSONLoader{}).Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	gotMap, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("Load returned %T, want map[string]any", got)
	}
	if gotMap["a"] != want["a"] || gotMap["b"] != want["b"] {
		t.Errorf("Load = %v, want %v", gotMap, want)
	}
}

type gobPayload struct {
	Name  string
	Count int
}

func TestGobSaverLoader_RoundTrip(t *testing.T) {
	gob.Register(gobPayload{})
	path := filepath.Join(t.TempDir(), "value.gob")
	want := gobPayload{Name: "n", Count: 3}

	if err := (GobSaver{}).Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := (GobLoader{}).Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	gotPayload, ok := got.(gobPayload)
	if !ok {
		t.Fatalf("Load returned %T, want gobPayload", got)
	}
	if gotPayload != want {
		t.Errorf("Load = %+v, want %+v", gotPayload, want)
	}
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	r.Register("json", JSONSaver{}, JSONLoader{})

	if _, ok := r.Saver("json"); !ok {
		t.Errorf("Saver(json) not found after Register")
	}
	if _, ok := r.Loader("json"); !ok {
		t.Errorf("Loader(json) not found after Register")
	}
	if _, ok := r.Saver("missing"); ok {
		t.Errorf("Saver(missing) found, want not found")
	}
}

func TestDefaultRegistry_HasBuiltinFormats(t *testing.T) {
	if _, ok := Default.Saver("json"); !ok {
		t.Errorf("default registry missing json saver")
	}
	if _, ok := Default.Saver("gob"); !ok {
		t.Errorf("default registry missing gob saver")
	}
}
