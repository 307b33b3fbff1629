package main

import (
	"os"
	"strings"

	"roster-cli/internal/cli"
)

// persistent flags that take a separate value token
var valueFlags = map[string]bool{
	"--dir":       true,
	"--actor":     true,
	"--format":    true,
	"--debug-log": true,
}

// isTaskID matches generated task ids: "t" followed by digits.
func isTaskID(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != 't' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func insertShow(argv []string, at int) []string {
	out := make([]string, 0, len(argv)+2)
	out = append(out, argv[:at]...)
	out = append(out, "tasks", "show")
	return append(out, argv[at:]...)
}

// rewriteTaskLookupArgs turns `roster [flags] t12` into `roster [flags] tasks show t12`.
// Cobra would treat t12 as an unknown subcommand, so argv is rewritten before
// parsing. Only the first positional token is considered.
func rewriteTaskLookupArgs(argv []string) []string {
	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		switch {
		case a == "":
			continue
		case a == "--":
			if i+1 < len(argv) && isTaskID(argv[i+1]) {
				return insertShow(argv, i+1)
			}
			return argv
		case strings.HasPrefix(a, "-"):
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		case isTaskID(a):
			return insertShow(argv, i)
		default:
			return argv
		}
	}
	return argv
}

func main() {
	os.Args = rewriteTaskLookupArgs(os.Args)

	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
