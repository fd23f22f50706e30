// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

// Tracer is the interface that receives timing spans
// from the engine.
// Span is called when a named piece of work starts and
// the returned function is called when it ends. Spans
// may nest.
type Tracer interface {
	Span(name string) (end func())
}

type nopTracer struct{}

func (nopTracer) Span(string) func() { return func() {} }
