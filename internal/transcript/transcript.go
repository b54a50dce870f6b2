// Package transcript buffers the human-readable log of one pipeline run.
package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/amaumene/gosubfetch/pkg/logger"
)

// Transcript collects lines for a single run. Each run owns its own value.
type Transcript struct {
	mu     sync.Mutex
	lines  []string
	logger logger.Logger
}

// New returns an empty transcript whose lines are mirrored to log at info level.
func New(log logger.Logger) *Transcript {
	if log == nil {
		log = logger.Discard()
	}
	return &Transcript{logger: log}
}

// Add appends one line built from parts joined by spaces. Structs, maps and
// slices are written as JSON.
func (t *Transcript) Add(parts ...interface{}) {
	words := make([]string, len(parts))
	for i, p := range parts {
		words[i] = format(p)
	}
	line := strings.Join(words, " ")

	t.mu.Lock()
	t.lines = append(t.lines, line)
	t.mu.Unlock()

	t.logger.Info(line)
}

// Lines returns a copy of the buffered lines.
func (t *Transcript) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.lines...)
}

func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.lines)
}

// Flush writes the buffered lines to path and empties the buffer. The buffer
// is emptied even when the write fails.
func (t *Transcript) Flush(path string) error {
	t.mu.Lock()
	data := strings.Join(t.lines, "\n")
	t.lines = nil
	t.mu.Unlock()

	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return fmt.Errorf("write transcript %s: %w", path, err)
	}
	return nil
}

func format(p interface{}) string {
	switch v := p.(type) {
	case nil:
		return "null"
	case string:
		return v
	case error:
		return v.Error()
	case fmt.Stringer:
		return v.String()
	}

	t := reflect.TypeOf(p)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Struct, reflect.Map, reflect.Slice, reflect.Array:
		if b, err := json.Marshal(p); err == nil {
			return string(b)
		}
	}
	return fmt.Sprint(p)
}
