package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

// testEnv isolates config and store for one test.
func testEnv(t *testing.T) (dir string, mustRun func(args ...string) map[string]any) {
	t.Helper()
	t.Setenv("COURSEKIT_CONFIG_DIR", t.TempDir())
	t.Setenv("COURSEKIT_COURSE", "")
	dir = t.TempDir()

	mustRun = func(args ...string) map[string]any {
		t.Helper()
		full := append([]string{"--dir", dir}, args...)
		stdout, stderr, err := runCLI(t, full)
		if err != nil {
			t.Fatalf("command failed: coursekit %v\nerr: %v\nstderr:\n%s\nstdout:\n%s", args, err, stderr, stdout)
		}
		var env map[string]any
		if err := json.Unmarshal(stdout, &env); err != nil {
			t.Fatalf("unmarshal stdout as json envelope: %v\nstdout:\n%s\nargs: %v", err, stdout, args)
		}
		if _, ok := env["data"]; !ok {
			t.Fatalf("expected JSON envelope to contain data key; got: %v", env)
		}
		return env
	}
	return dir, mustRun
}

func dataMap(t *testing.T, env map[string]any) map[string]any {
	t.Helper()
	m, ok := env["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected object data; got %#v", env["data"])
	}
	return m
}

func TestCLI_EditOutline(t *testing.T) {
	_, mustRun := testEnv(t)

	created := dataMap(t, mustRun("courses", "create", "--name", "Fractions", "--class", "5", "--use"))
	courseID, _ := created["courseId"].(string)
	if courseID == "" {
		t.Fatalf("expected course id; got %#v", created)
	}

	sec := dataMap(t, mustRun("sections", "add"))
	secID, _ := sec["id"].(string)
	if sec["title"] != "Section 1" {
		t.Fatalf("expected positional title; got %#v", sec)
	}
	sub1 := dataMap(t, mustRun("subsections", "add", "--section", secID))["id"].(string)
	sub2 := dataMap(t, mustRun("subsections", "add", "--section", secID, "--title", "Second"))["id"].(string)
	topic := dataMap(t, mustRun("topics", "add", "--subsection", sub1, "--title", "Halves"))["id"].(string)
	mustRun("topics", "set", topic, "--duration", "25", "--objective", "Name one half")
	mustRun("resources", "attach", "--topic", topic, "--type", "video", "--title", "Intro", "--url", "https://v/1")

	moved := dataMap(t, mustRun("move", "--kind", "topic", "--from", sub1, "--from-index", "0", "--to", sub2, "--to-index", "0"))
	if moved["moved"] != true {
		t.Fatalf("expected topic move; got %#v", moved)
	}

	show := dataMap(t, mustRun("courses", "show", courseID))
	sections := show["sections"].([]any)
	subs := sections[0].(map[string]any)["subsections"].([]any)
	if got := len(subs[0].(map[string]any)["topicBoxes"].([]any)); got != 0 {
		t.Fatalf("expected source subsection to be empty; got %d topics", got)
	}
	moved0 := subs[1].(map[string]any)["topicBoxes"].([]any)[0].(map[string]any)
	if moved0["id"] != topic || moved0["duration_minutes"] != float64(25) {
		t.Fatalf("unexpected moved topic: %#v", moved0)
	}
	if vids := moved0["video_resources"].([]any); len(vids) != 1 {
		t.Fatalf("expected attached video; got %#v", vids)
	}

	stats := dataMap(t, mustRun("courses", "stats"))
	if stats["totalMinutes"] != float64(25) {
		t.Fatalf("unexpected stats: %#v", stats)
	}

	mustRun("sections", "delete", secID)
	show = dataMap(t, mustRun("courses", "show"))
	if got := len(show["sections"].([]any)); got != 0 {
		t.Fatalf("expected no sections after delete; got %d", got)
	}
}

func TestCLI_UnknownIDsFail(t *testing.T) {
	dir, mustRun := testEnv(t)
	mustRun("courses", "create", "--name", "C", "--use")

	_, stderr, err := runCLI(t, []string{"--dir", dir, "subsections", "add", "--section", "section-nope"})
	if err == nil || !strings.Contains(string(stderr), "section not found: section-nope") {
		t.Fatalf("expected not found error; err=%v stderr=%s", err, stderr)
	}
	_, _, err = runCLI(t, []string{"--dir", dir, "courses", "show", "missing"})
	if err == nil {
		t.Fatalf("expected error for missing course")
	}
}

func TestCLI_GenerateTopics(t *testing.T) {
	var gotLevel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotLevel, _ = req["level"].(string)
		_, _ = w.Write([]byte(`{"success":true,"items":[{"id":"gen-1","title":"Quarters","duration_minutes":15},{"title":"Eighths"}]}`))
	}))
	defer srv.Close()
	t.Setenv("COURSEKIT_GENERATION_URL", srv.URL)

	_, mustRun := testEnv(t)
	mustRun("courses", "create", "--name", "C", "--use")
	secID := dataMap(t, mustRun("sections", "add"))["id"].(string)
	subID := dataMap(t, mustRun("subsections", "add", "--section", secID))["id"].(string)

	out := dataMap(t, mustRun("generate", "topics", "--subsection", subID, "--count", "2"))
	if gotLevel != "topics" {
		t.Fatalf("expected topics request; got %q", gotLevel)
	}
	ids := out["ids"].([]any)
	if len(ids) != 2 || ids[0] != "gen-1" {
		t.Fatalf("unexpected ids: %#v", ids)
	}

	show := dataMap(t, mustRun("courses", "show"))
	sub := show["sections"].([]any)[0].(map[string]any)["subsections"].([]any)[0].(map[string]any)
	if got := len(sub["topicBoxes"].([]any)); got != 2 {
		t.Fatalf("expected 2 generated topics; got %d", got)
	}
}

func TestCLI_MigrateImportPublish(t *testing.T) {
	_, mustRun := testEnv(t)

	legacy := `{"courseName":"Old","sections":[{"id":"s1","title":"S","subsections":[
		{"id":"u1","title":"U","video_resources":[{"title":"V","url":"https://v"}]}]}]}`
	path := filepath.Join(t.TempDir(), "old.json")
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}

	dry := dataMap(t, mustRun("migrate", path))
	if dry["migrated"] != true {
		t.Fatalf("expected migration; got %#v", dry)
	}
	if caches := dry["caches"].(map[string]any); caches["videos"] != float64(1) {
		t.Fatalf("unexpected caches: %#v", caches)
	}

	imp := dataMap(t, mustRun("courses", "import", path, "--use"))
	id, _ := imp["id"].(string)
	if id == "" {
		t.Fatalf("expected import id; got %#v", imp)
	}
	show := dataMap(t, mustRun("courses", "show", id))
	tb := show["sections"].([]any)[0].(map[string]any)["subsections"].([]any)[0].(map[string]any)["topicBoxes"].([]any)[0].(map[string]any)
	if tb["id"] != "u1-migrated" {
		t.Fatalf("expected synthesized topic; got %#v", tb)
	}

	to := t.TempDir()
	res := dataMap(t, mustRun("publish", "--to", to))
	if w := res["written"].([]any); len(w) != 1 {
		t.Fatalf("unexpected written: %#v", w)
	}
	b, err := os.ReadFile(filepath.Join(to, "courses", id+".md"))
	if err != nil {
		t.Fatalf("read published: %v", err)
	}
	if !strings.Contains(string(b), "# Old") {
		t.Fatalf("unexpected markdown:\n%s", b)
	}
}

func TestCLI_EDNOutput(t *testing.T) {
	dir, _ := testEnv(t)
	stdout, stderr, err := runCLI(t, []string{"--dir", dir, "--format", "edn", "courses", "list"})
	if err != nil {
		t.Fatalf("courses list: %v\n%s", err, stderr)
	}
	if !strings.HasPrefix(strings.TrimSpace(string(stdout)), "{:data []") {
		t.Fatalf("unexpected edn: %s", stdout)
	}
}
