package process

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuote(t *testing.T) {
	cases := map[string]string{
		"":               "''",
		"plain":          "plain",
		"--port=8080":    "--port=8080",
		"/usr/local/bin": "/usr/local/bin",
		"two words":      "'two words'",
		"it's":           `'it'\''s'`,
		"$HOME":          "'$HOME'",
	}
	for in, want := range cases {
		assert.Equal(t, want, Quote(in), "quoting %q", in)
	}
}

func TestShellCommand(t *testing.T) {
	cmd := ShellCommand(ServerConfig{
		ID:      "fs",
		Command: "npx",
		Args:    []string{"-y", "@modelcontextprotocol/server-filesystem", "/tmp/my dir"},
		Env:     map[string]string{"ZED": "last", "API_KEY": "a'b c"},
	})
	assert.Equal(t,
		`export API_KEY='a'\''b c'; export ZED='last'; npx -y @modelcontextprotocol/server-filesystem '/tmp/my dir'`,
		cmd)
}

func TestShellCommandWithoutEnv(t *testing.T) {
	assert.Equal(t, "echo $FOO", ShellCommand(ServerConfig{ID: "x", Command: "echo $FOO"}))
}

func TestLoginShell(t *testing.T) {
	t.Setenv("SHELL", "/usr/bin/fish")
	assert.Equal(t, "/usr/bin/fish", LoginShell())

	t.Setenv("SHELL", "")
	assert.NotEmpty(t, LoginShell())
}

func TestServerConfigValidate(t *testing.T) {
	require.NoError(t, ServerConfig{ID: "a", Command: "cat", Env: map[string]string{"_OK1": "v"}}.Validate())

	for _, cfg := range []ServerConfig{
		{Command: "cat"},
		{ID: "a"},
		{ID: "a", Command: "cat", Env: map[string]string{"1BAD": "v"}},
		{ID: "a", Command: "cat", Env: map[string]string{"A;rm -rf /": "v"}},
	} {
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig, "%+v", cfg)
	}
}
