package logging

// #region imports
import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// #endregion imports

// TraceFile is the append-only audit log name inside the log directory.
const TraceFile = "output.jsonl"

// #region jsonl

// JSONL appends one JSON object per trace. Writes are serialized so one
// log can be shared by concurrent battles.
type JSONL struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
}

// NewJSONL writes traces to w.
func NewJSONL(w io.Writer) *JSONL {
	return &JSONL{w: w}
}

// OpenJSONL creates dir if needed and appends to dir/output.jsonl.
func OpenJSONL(dir string) (*JSONL, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, TraceFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open trace log: %w", err)
	}
	return &JSONL{w: f, closer: f}, nil
}

// Record appends tr as one line.
func (j *JSONL) Record(tr DecisionTrace) error {
	b, err := json.Marshal(tr)
	if err != nil {
		return fmt.Errorf("encode trace: %w", err)
	}
	b = append(b, '\n')
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, err := j.w.Write(b); err != nil {
		return fmt.Errorf("append trace: %w", err)
	}
	return nil
}

// Close closes the underlying file, if any.
func (j *JSONL) Close() error {
	if j.closer == nil {
		return nil
	}
	return j.closer.Close()
}

// #endregion jsonl

// #region multi

// Multi fans a trace out to every sink and returns the first error.
// Every sink is attempted.
func Multi(sinks ...Sink) Sink {
	return multiSink(sinks)
}

type multiSink []Sink

func (m multiSink) Record(tr DecisionTrace) error {
	var first error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Record(tr); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// #endregion multi
