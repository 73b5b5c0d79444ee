package process

import (
	"bufio"
	"io"
	"iter"
	"strings"

	"emperror.dev/errors"
)

const readBufSize = 4096

// LineReader splits a stream into newline-delimited lines. Lines has no length
// limit, unlike bufio.Scanner, since a single JSON message may be large.
type LineReader struct {
	r   *bufio.Reader
	err error
}

func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: bufio.NewReaderSize(r, readBufSize)}
}

// Lines yields lines without their trailing "\n" or "\r\n". Breaking out of a
// range loop leaves the reader positioned after the last yielded line, so a
// later call resumes from there. The sequence ends at EOF or on the first read
// error; a final unterminated line is still yielded at EOF.
func (l *LineReader) Lines() iter.Seq[string] {
	return func(yield func(string) bool) {
		for l.err == nil {
			line, err := l.r.ReadString('\n')
			if err != nil {
				l.err = err
				if !errors.Is(err, io.EOF) || line == "" {
					return
				}
			}
			if !yield(trimEOL(line)) {
				return
			}
		}
	}
}

// Err returns the error that ended the sequence, nil for a clean EOF.
func (l *LineReader) Err() error {
	if errors.Is(l.err, io.EOF) {
		return nil
	}
	return l.err
}

func trimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}
