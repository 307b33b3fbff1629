package format

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestWrite_JSONEnvelope(t *testing.T) {
	var b bytes.Buffer
	err := Write(&b, Envelope{Data: map[string]any{"id": "t1"}, Hints: []string{"roster tasks show t1"}}, "", false)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := b.String(); got != `{"data":{"id":"t1"},"_hints":["roster tasks show t1"]}`+"\n" {
		t.Fatalf("unexpected json %q", got)
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, 1, "yaml", false); err == nil {
		t.Fatalf("expected an error for an unknown format")
	}
}

func TestWriteEDN(t *testing.T) {
	v := map[string]any{
		"data": map[string]any{
			"start": time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
			"ids":   []string{"t1", "t2"},
			"n":     2,
			"ratio": 0.5,
			"none":  nil,
			"ok":    true,
		},
		"_hints": []string{},
	}
	var b bytes.Buffer
	if err := WriteEDN(&b, v, false); err != nil {
		t.Fatalf("WriteEDN: %v", err)
	}
	want := `{:_hints [] :data {:ids ["t1" "t2"] :n 2 :none nil :ok true :ratio 0.5 :start #inst "2024-01-01T09:00:00Z"}}` + "\n"
	if b.String() != want {
		t.Fatalf("unexpected edn:\n%s\nwant:\n%s", b.String(), want)
	}
}

func TestWriteEDN_Pretty(t *testing.T) {
	var b bytes.Buffer
	if err := WriteEDN(&b, map[string]any{"a": []int{1}}, true); err != nil {
		t.Fatalf("WriteEDN: %v", err)
	}
	if got := b.String(); got != "{\n  :a [\n    1\n  ]\n}\n" {
		t.Fatalf("unexpected pretty edn %q", got)
	}
	if !strings.HasPrefix(keyword("a b"), "a-") {
		t.Fatalf("expected spaces to be replaced in keywords")
	}
}
