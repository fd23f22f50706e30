// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package stats collects frame timings and streams them
// to websocket clients.
package stats

import (
	"sort"
	"sync"
	"time"

	"github.com/loov/hrtime"
)

// Window is the number of samples over which span
// means are computed.
const Window = 64

// Span is the accumulated timing of a named span.
type Span struct {
	Name  string        `json:"name"`
	Count uint64        `json:"count"`
	Last  time.Duration `json:"last"`
	Mean  time.Duration `json:"mean"`
	Max   time.Duration `json:"max"`
}

// Report is a snapshot of every span.
type Report struct {
	Frame uint64 `json:"frame"`
	Spans []Span `json:"spans"`
}

type series struct {
	count   uint64
	samples [Window]time.Duration
	max     time.Duration
}

func (s *series) add(d time.Duration) {
	s.samples[s.count%Window] = d
	s.count++
	s.max = max(s.max, d)
}

func (s *series) mean() time.Duration {
	n := min(s.count, Window)
	if n == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range s.samples[:n] {
		sum += d
	}
	return sum / time.Duration(n)
}

func (s *series) last() time.Duration {
	if s.count == 0 {
		return 0
	}
	return s.samples[(s.count-1)%Window]
}

// Tracer records named spans using a high resolution
// clock. It is safe for concurrent use.
type Tracer struct {
	mu     sync.Mutex
	series map[string]*series
	frame  uint64
	now    func() time.Duration
}

// NewTracer creates a new Tracer.
func NewTracer() *Tracer {
	return &Tracer{
		series: make(map[string]*series),
		now:    hrtime.Now,
	}
}

// Span starts a named span. The returned function ends it.
// Spans named "frame" also advance the frame counter.
func (t *Tracer) Span(name string) (end func()) {
	start := t.now()
	return func() {
		t.Record(name, t.now()-start)
	}
}

// Record adds a sample to the named span.
func (t *Tracer) Record(name string, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.series[name]
	if !ok {
		s = new(series)
		t.series[name] = s
	}
	s.add(d)
	if name == "frame" {
		t.frame++
	}
}

// Report returns a snapshot of every span, sorted by name.
func (t *Tracer) Report() Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := Report{
		Frame: t.frame,
		Spans: make([]Span, 0, len(t.series)),
	}
	for name, s := range t.series {
		r.Spans = append(r.Spans, Span{
			Name:  name,
			Count: s.count,
			Last:  s.last(),
			Mean:  s.mean(),
			Max:   s.max,
		})
	}
	sort.Slice(r.Spans, func(i, j int) bool { return r.Spans[i].Name < r.Spans[j].Name })
	return r
}

// Reset discards every span.
func (t *Tracer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.series)
	t.frame = 0
}
