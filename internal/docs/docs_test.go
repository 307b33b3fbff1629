package docs

import "testing"

func TestTopicsAndGet(t *testing.T) {
	topics := Topics()
	want := map[string]bool{"scheduling": false, "tui": false, "web": false}
	for _, tp := range topics {
		if _, ok := want[tp]; ok {
			want[tp] = true
		}
	}
	for tp, seen := range want {
		if !seen {
			t.Fatalf("expected topic %q in %v", tp, topics)
		}
	}
	if md, ok := Get(" TUI "); !ok || md == "" {
		t.Fatalf("expected tui topic to be case-insensitive")
	}
	if _, ok := Get("../docs"); ok {
		t.Fatalf("expected path-like topics to be rejected")
	}
	if got := Title("scheduling"); got != "Scheduling rules" {
		t.Fatalf("unexpected title %q", got)
	}
}
