package process

import (
	"os"
	"runtime"
	"sort"
	"strings"
)

const (
	darwinShell  = "/bin/zsh"
	defaultShell = "/bin/sh"
)

// LoginShell returns the user's shell from $SHELL, or the platform default.
func LoginShell() string {
	if shell := os.Getenv("SHELL"); shell != "" {
		return shell
	}
	if runtime.GOOS == "darwin" {
		return darwinShell
	}
	return defaultShell
}

func isShellSafe(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("@%+=:,./_-", r)
}

// Quote returns s as a single shell word. Words made only of safe characters
// are returned unchanged.
func Quote(s string) string {
	if s != "" && strings.IndexFunc(s, func(r rune) bool { return !isShellSafe(r) }) < 0 {
		return s
	}
	return quoteAlways(s)
}

func quoteAlways(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// ShellCommand renders cfg as the script passed to "<shell> -l -c". The
// environment is exported first, in key order, then the command runs with its
// arguments. The command token itself is not quoted so that the login shell
// still expands it.
func ShellCommand(cfg ServerConfig) string {
	var b strings.Builder
	keys := make([]string, 0, len(cfg.Env))
	for k := range cfg.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString("export ")
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(quoteAlways(cfg.Env[k]))
		b.WriteString("; ")
	}
	b.WriteString(cfg.Command)
	for _, arg := range cfg.Args {
		b.WriteByte(' ')
		b.WriteString(Quote(arg))
	}
	return b.String()
}

func loginShellArgs(script string) []string {
	return []string{"-l", "-c", script}
}
