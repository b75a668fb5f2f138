package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestJSONStore_WriteReadRoundTrip(t *testing.T) {
	st := NewJSONStore(t.TempDir())

	if st.Exists("nested/a.json") {
		t.Fatal("Exists before write = true")
	}
	if err := st.WriteRaw("nested/a.json", []byte(`{"b":1}`), false); err != nil {
		t.Fatal(err)
	}
	if !st.Exists("nested/a.json") {
		t.Fatal("Exists after write = false")
	}
	got, err := st.ReadRaw("nested/a.json")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `{"b":1}` {
		t.Errorf("ReadRaw = %s", got)
	}
}

func TestJSONStore_PrettyIndents(t *testing.T) {
	st := NewJSONStore(t.TempDir())
	if err := st.WriteRaw("p.json", []byte(`{"b":1}`), true); err != nil {
		t.Fatal(err)
	}
	got, _ := st.ReadRaw("p.json")
	if !strings.Contains(string(got), "\n  \"b\": 1") {
		t.Errorf("pretty output not indented: %q", got)
	}
}

func TestJSONStore_PrettyKeepsInvalidJSON(t *testing.T) {
	st := NewJSONStore(t.TempDir())
	if err := st.WriteRaw("bad.json", []byte(`not json`), true); err != nil {
		t.Fatal(err)
	}
	got, _ := st.ReadRaw("bad.json")
	if string(got) != "not json" {
		t.Errorf("ReadRaw = %q, want body unchanged", got)
	}
}

func TestJSONStore_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	st := NewJSONStore(dir)
	if err := st.WriteRaw("x.json", []byte(`{}`), false); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "x.json" {
		t.Errorf("dir entries = %v, want only x.json", entries)
	}
}

func TestJSONStore_ReadMissing(t *testing.T) {
	st := NewJSONStore(t.TempDir())
	if _, err := st.ReadRaw("missing.json"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want os.ErrNotExist", err)
	}
}

func TestJSONStore_WriteJSON(t *testing.T) {
	dir := t.TempDir()
	st := NewJSONStore(dir)
	in := map[string]int{"total": 3}
	if err := st.WriteJSON("out/r.json", in); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(filepath.Join(dir, "out", "r.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(raw), "\n") {
		t.Error("WriteJSON output missing trailing newline")
	}
	var out map[string]int
	if err := st.ReadJSON("out/r.json", &out); err != nil {
		t.Fatal(err)
	}
	if out["total"] != 3 {
		t.Errorf("total = %d, want 3", out["total"])
	}
}
