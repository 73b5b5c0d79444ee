package process

import (
	"regexp"

	"emperror.dev/errors"
)

// ServerConfig describes one worker process to spawn.
type ServerConfig struct {
	ID      string            `yaml:"id" json:"id"`
	Command string            `yaml:"command" json:"command"`
	Args    []string          `yaml:"args,omitempty" json:"args,omitempty"`
	Env     map[string]string `yaml:"env,omitempty" json:"env,omitempty"`
	// Dir is the working directory of the login shell, empty means the host's.
	Dir string `yaml:"dir,omitempty" json:"dir,omitempty"`
}

var envKeyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func (c ServerConfig) Validate() error {
	if c.ID == "" {
		return newKindError(ErrInvalidConfig, errors.NewPlain("id is required"))
	}
	if c.Command == "" {
		return newKindError(ErrInvalidConfig, errors.NewPlain("command is required"), "server", c.ID)
	}
	for k := range c.Env {
		if !envKeyPattern.MatchString(k) {
			return newKindError(ErrInvalidConfig,
				errors.Errorf("invalid environment variable name %q", k), "server", c.ID)
		}
	}
	return nil
}
