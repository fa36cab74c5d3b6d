package format

import (
	"bytes"
	"strings"
	"testing"
)

func TestWrite_JSONEnvelope(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, Wrap(map[string]any{"courseId": "c1", "url": "a&b"}), "json", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got := strings.TrimSpace(buf.String())
	if got != `{"data":{"courseId":"c1","url":"a&b"}}` {
		t.Fatalf("unexpected json: %s", got)
	}
}

func TestWrite_EDN(t *testing.T) {
	var buf bytes.Buffer
	v := Wrap(map[string]any{
		"courseName":       "Fractions",
		"duration_minutes": 20,
		"isPublic":         false,
		"sections":         []any{},
		"thumbnail":        nil,
	})
	if err := Write(&buf, v, "edn", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got := strings.TrimSpace(buf.String())
	want := `{:data {:course-name "Fractions" :duration-minutes 20 :is-public false :sections [] :thumbnail nil}}`
	if got != want {
		t.Fatalf("unexpected edn:\n got %s\nwant %s", got, want)
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, 1, "yaml", false); err == nil {
		t.Fatalf("expected error for unknown format")
	}
	if Valid("yaml") || !Valid("EDN") {
		t.Fatalf("unexpected Valid results")
	}
}

func TestKeyword(t *testing.T) {
	cases := map[string]string{
		"topicBoxes":  ":topic-boxes",
		"pla_pillars": ":pla-pillars",
		"courseId":    ":course-id",
		"data":        ":data",
		"URL":         ":url",
	}
	for in, want := range cases {
		if got := Keyword(in); got != want {
			t.Fatalf("Keyword(%q) = %q, want %q", in, got, want)
		}
	}
}
