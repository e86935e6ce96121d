package diagnostic

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

// Sink accepts failure records. Implementations must not panic and must
// not stop the caller; a Sink shared between goroutines must be safe for
// concurrent use.
type Sink interface {
	Report(r Record)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(r Record)

func (f SinkFunc) Report(r Record) {
	f(r)
}

// Discard drops every record.
var Discard Sink = SinkFunc(func(Record) {})

// Collector accumulates records in report order.
type Collector struct {
	mu      sync.Mutex
	records []Record
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Report(r Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, r)
}

// Records returns a copy of the collected records.
func (c *Collector) Records() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}

// Failed reports whether any record has been collected.
func (c *Collector) Failed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records) > 0
}

// Reset discards all collected records.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = nil
}

// Multi fans a record out to every sink in order.
func Multi(sinks ...Sink) Sink {
	return SinkFunc(func(r Record) {
		for _, s := range sinks {
			s.Report(r)
		}
	})
}

// TestingSink reports records as non-fatal test failures through testify,
// so a test keeps running after the first failed assertion.
func TestingSink(t assert.TestingT) Sink {
	return SinkFunc(func(r Record) {
		if h, ok := t.(interface{ Helper() }); ok {
			h.Helper()
		}
		assert.Fail(t, Summary(r), Render(r))
	})
}

// LogSink writes one warn level log line per record.
func LogSink(logger zerolog.Logger) Sink {
	return SinkFunc(func(r Record) {
		kinds := make([]string, len(r.Kinds))
		for i, k := range r.Kinds {
			kinds[i] = string(k)
		}
		evt := logger.Warn().
			Str("operation", r.Operation).
			Strs("kinds", kinds).
			Str("container", r.ContainerLabel())
		if r.Subject != "" {
			evt = evt.Str("subject", r.Subject)
		}
		if len(r.Missing) > 0 {
			evt = evt.Strs("missing", r.Missing)
		}
		if len(r.Unexpected) > 0 {
			evt = evt.Interface("unexpected", r.Unexpected)
		}
		if len(r.Found) > 0 {
			evt = evt.Interface("found", r.Found)
		}
		if len(r.OutOfOrder) > 0 {
			evt = evt.Interface("outOfOrder", r.OutOfOrder)
		}
		evt.Msg(Summary(r))
	})
}
