package terminal

import (
	"bufio"
	"io"
	"strings"
	"sync"

	"github.com/apex/log"
)

// lineQueue is an unbounded multi-producer, single-consumer queue of
// console lines. Pushes never block, no matter how slowly the consumer
// drains; the terminal's output must never stall on a busy host loop.
type lineQueue struct {
	mu    sync.Mutex
	lines []string
}

func (q *lineQueue) push(line string) {
	q.mu.Lock()
	q.lines = append(q.lines, line)
	q.mu.Unlock()
}

// drain takes everything currently queued, returning immediately when
// the queue is empty.
func (q *lineQueue) drain() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.lines) == 0 {
		return nil
	}

	out := q.lines
	q.lines = nil
	return out
}

// readStream forwards each line read from r into the queue. It runs until
// the stream closes, which happens when the process exits or is killed.
// A mid-stream read error ends the reader the same way a clean EOF does.
func readStream(name string, r io.Reader, q *lineQueue) {
	s := bufio.NewScanner(r)
	for s.Scan() {
		q.push(s.Text())
	}

	if err := s.Err(); err != nil {
		log.WithField("stream", name).WithError(err).Debug("read interrupted")
	}
}

// logSink accumulates every line drained from the queue, in drain order.
// A max byte count may be set to cap retention; whole lines are dropped
// from the front once the cap is exceeded.
type logSink struct {
	mu    sync.RWMutex
	lines []string
	size  int
	max   int
}

func (s *logSink) append(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = append(s.lines, line)
	s.size += len(line) + 1
	s.trim()
}

// setMax retunes the retention cap, dropping lines that no longer fit.
// Safe to call while other goroutines are appending.
func (s *logSink) setMax(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.max = n
	s.trim()
}

// trim must be called with the sink's lock held.
func (s *logSink) trim() {
	if s.max <= 0 {
		return
	}
	for s.size > s.max && len(s.lines) > 1 {
		s.size -= len(s.lines[0]) + 1
		s.lines = s.lines[1:]
	}
}

func (s *logSink) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.lines) == 0 {
		return ""
	}
	return strings.Join(s.lines, "\n") + "\n"
}
