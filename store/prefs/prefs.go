package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"

	"emperror.dev/errors"
	"github.com/sirupsen/logrus"

	"github.com/reyoung/mcphost/store/atomicfile"
)

const (
	FileName = "preferences.json"

	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"

	ErrInvalidTheme = errors.Sentinel("invalid theme: must be 'light', 'dark', or 'system'")
)

// Preferences holds the settings persisted across application restarts.
type Preferences struct {
	Theme string `json:"theme"`
}

func Default() Preferences {
	return Preferences{Theme: ThemeSystem}
}

func (p Preferences) Validate() error {
	switch p.Theme {
	case ThemeLight, ThemeDark, ThemeSystem:
		return nil
	}
	return errors.WithDetails(errors.WithStack(ErrInvalidTheme), "theme", p.Theme)
}

type Store struct {
	path string
	log  *logrus.Entry
}

func NewStore(dir string) *Store {
	return &Store{
		path: filepath.Join(dir, FileName),
		log:  logrus.WithField("component", "prefs"),
	}
}

// Load returns the saved preferences, or the defaults when none were saved.
func (s *Store) Load() (Preferences, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Info("Preferences file not found, using defaults")
			return Default(), nil
		}
		return Preferences{}, errors.Wrap(err, "failed to read preferences file")
	}
	p := Default()
	if err := json.Unmarshal(data, &p); err != nil {
		return Preferences{}, errors.Wrap(err, "failed to parse preferences")
	}
	return p, nil
}

func (s *Store) Save(p Preferences) error {
	if err := p.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to serialize preferences")
	}
	if err := atomicfile.WriteFile(s.path, data, 0600); err != nil {
		return err
	}
	s.log.Debugf("Saved preferences to %s", s.path)
	return nil
}
