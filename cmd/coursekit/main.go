package main

import (
	"os"
	"strings"

	"coursekit/internal/cli"
)

const courseShortcutPrefix = "c-"

func isCourseShortcut(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, courseShortcutPrefix) && len(s) > len(courseShortcutPrefix)
}

// rewriteCourseShortcutArgs turns `coursekit c-<id>` into `coursekit courses show <id>`.
//
// Cobra treats the first non-flag token as a subcommand, so argv is rewritten before parsing.
// Persistent flags may come first (`coursekit --dir ... c-<id>`), so the first positional
// token is located rather than assuming argv[1].
func rewriteCourseShortcutArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	// Unknown flags are skipped without consuming a value so the shortcut is never swallowed.
	valueFlags := map[string]bool{
		"--dir":    true,
		"--course": true,
		"--format": true,
		"--log":    true,
	}

	rewrite := func(i int) []string {
		out := make([]string, 0, len(argv)+1)
		out = append(out, argv[:i]...)
		out = append(out, "courses", "show", strings.TrimPrefix(strings.TrimSpace(argv[i]), courseShortcutPrefix))
		out = append(out, argv[i+1:]...)
		return out
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && isCourseShortcut(argv[i+1]) {
				return rewrite(i + 1)
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		}
		if isCourseShortcut(a) {
			return rewrite(i)
		}
		return argv
	}
	return argv
}

func main() {
	os.Args = rewriteCourseShortcutArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
