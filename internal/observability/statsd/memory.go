package statsd

import (
	"strconv"
	"sync"
	"time"
)

// Memory is an in-process Sink that keeps rendered lines.
// It backs tests and the terminal client's debug output.
type Memory struct {
	mu    sync.Mutex
	lines []string
}

var _ Sink = (*Memory)(nil)

// Count records a counter line.
func (m *Memory) Count(name string, value int64, tags map[string]string) {
	m.add(Line("", name, strconv.FormatInt(value, 10)+"|c", nil, tags))
}

// Gauge records a gauge line.
func (m *Memory) Gauge(name string, value float64, tags map[string]string) {
	m.add(Line("", name, formatFloat(value)+"|g", nil, tags))
}

// Timing records a timing line.
func (m *Memory) Timing(name string, value time.Duration, tags map[string]string) {
	m.add(Line("", name, formatFloat(float64(value)/float64(time.Millisecond))+"|ms", nil, tags))
}

// Lines returns a copy of everything recorded so far.
func (m *Memory) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lines...)
}

func (m *Memory) add(line string) {
	if line == "" {
		return
	}
	m.mu.Lock()
	m.lines = append(m.lines, line)
	m.mu.Unlock()
}
