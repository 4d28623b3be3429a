package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"leadconsole/internal/cli"
	"leadconsole/internal/store"
)

func isLeadID(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// directLookup returns the show command for a bare record id, or nil.
func directLookup(s string) []string {
	switch {
	case isLeadID(s):
		return []string{"leads", "show"}
	case store.LooksLikeOpportunityID(s):
		return []string{"opportunities", "show"}
	default:
		return nil
	}
}

func rewriteDirectLookupArgs(argv []string) []string {
	// `leadconsole 7` works like `leadconsole leads show 7`, and `leadconsole opp-1` like
	// `leadconsole opportunities show opp-1`.
	//
	// Cobra treats the first non-flag token as a subcommand, so argv is rewritten before parsing.
	// Persistent flags may come first, so look for the first positional token.
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--dir":       true,
		"--backend":   true,
		"--redis-url": true,
		"--config":    true,
		"--format":    true,
	}
	boolFlags := map[string]bool{
		"--pretty": true,
		"--debug":  true,
	}

	insert := func(i int, cmd []string) []string {
		out := make([]string, 0, len(argv)+len(cmd))
		out = append(out, argv[:i]...)
		out = append(out, cmd...)
		return append(out, argv[i:]...)
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) {
				if cmd := directLookup(argv[i+1]); cmd != nil {
					return insert(i+1, cmd)
				}
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if strings.Contains(a, "=") || boolFlags[a] {
				continue
			}
			if valueFlags[a] {
				i++
			}
			continue
		}

		if cmd := directLookup(a); cmd != nil {
			return insert(i, cmd)
		}
		return argv
	}
	return argv
}

func main() {
	args := rewriteDirectLookupArgs(os.Args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx, args[1:])
	stop()
	if err != nil {
		os.Exit(1)
	}
}
