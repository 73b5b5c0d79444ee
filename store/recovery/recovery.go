// Package recovery keeps emergency snapshots of application state as JSON
// files, one per validated name, and sweeps old ones.
package recovery

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"emperror.dev/errors"
	"github.com/sirupsen/logrus"

	"github.com/reyoung/mcphost/store/atomicfile"
)

const (
	MaxFilenameLength = 100
	MaxDataSize       = 10 * 1024 * 1024
	DefaultRetention  = 7 * 24 * time.Hour

	ErrInvalidFilename = errors.Sentinel("invalid filename")
	ErrTooLarge        = errors.Sentinel("data too large (max 10MB)")
	ErrNotFound        = errors.Sentinel("recovery file not found")
)

const fileExt = ".json"

var filenamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+(\.[a-zA-Z0-9]+)?$`)

// ValidateFilename accepts letters, digits, dashes and underscores, with one
// optional extension.
func ValidateFilename(name string) error {
	switch {
	case name == "":
		return errors.WithMessage(ErrInvalidFilename, "filename cannot be empty")
	case len(name) > MaxFilenameLength:
		return errors.WithMessagef(ErrInvalidFilename, "filename too long (max %d characters)", MaxFilenameLength)
	case !filenamePattern.MatchString(name):
		return errors.WithDetails(
			errors.WithMessage(ErrInvalidFilename,
				"only alphanumeric characters, dashes, underscores, and dots allowed"),
			"filename", name)
	}
	return nil
}

type Store struct {
	dir       string
	retention time.Duration
	log       *logrus.Entry
}

type Option func(s *Store)

func WithRetention(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.retention = d
		}
	}
}

func WithLogger(log *logrus.Entry) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

func NewStore(dir string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.Wrapf(err, "failed to create recovery dir %s", dir)
	}
	s := &Store{
		dir:       dir,
		retention: DefaultRetention,
		log:       logrus.WithField("component", "recovery"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+fileExt)
}

// Save writes data as pretty JSON under name.
func (s *Store) Save(name string, data interface{}) error {
	if err := ValidateFilename(name); err != nil {
		return err
	}
	compact, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(err, "failed to serialize data")
	}
	if len(compact) > MaxDataSize {
		return errors.WithDetails(errors.WithStack(ErrTooLarge), "filename", name, "size", len(compact))
	}
	pretty, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to serialize data")
	}

	path := s.path(name)
	if err := atomicfile.WriteFile(path, pretty, 0600); err != nil {
		s.log.WithError(err).Error("Failed to write emergency data file")
		return err
	}
	s.log.Infof("Saved emergency data to %s", path)
	return nil
}

// Load returns the JSON document saved under name.
func (s *Store) Load(name string) (json.RawMessage, error) {
	if err := ValidateFilename(name); err != nil {
		return nil, err
	}
	path := s.path(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Infof("Recovery file not found: %s", path)
			return nil, errors.WithDetails(errors.WithStack(ErrNotFound), "filename", name)
		}
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	if !json.Valid(data) {
		return nil, errors.Errorf("failed to parse %s: invalid JSON", path)
	}
	return json.RawMessage(data), nil
}

// Cleanup removes snapshots last modified before now minus the retention. It
// returns how many were removed; unreadable entries are skipped.
func (s *Store) Cleanup(now time.Time) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to read %s", s.dir)
	}
	cutoff := now.Add(-s.retention)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != fileExt {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			s.log.WithError(err).Warnf("Failed to stat %s", entry.Name())
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		if err := os.Remove(path); err != nil {
			s.log.WithError(err).Warnf("Failed to remove old recovery file %s", path)
			continue
		}
		if err := os.Remove(atomicfile.LockPath(path)); err != nil && !os.IsNotExist(err) {
			s.log.WithError(err).Warnf("Failed to remove lock file of %s", path)
		}
		s.log.Infof("Removed old recovery file %s", path)
		removed++
	}
	s.log.Infof("Cleanup complete, removed %d old recovery files", removed)
	return removed, nil
}
