package main

import (
	"sort"

	"github.com/phanxgames/cadence"
)

// stubHandlers binds every handler the file names to a recorder, so files
// can be inspected without the application that normally supplies them.
type stubHandlers struct {
	frames map[string]int
	fired  []string
}

func newStubHandlers(f *cadence.SequenceFile) (*stubHandlers, cadence.Handlers) {
	stub := &stubHandlers{frames: make(map[string]int)}
	h := cadence.Handlers{
		Callbacks: make(map[string]func(float64, string)),
		Events:    make(map[string]func(string)),
	}
	for _, name := range f.HandlerNames() {
		h.Callbacks[name] = func(_ float64, _ string) { stub.frames[name]++ }
		h.Events[name] = func(string) { stub.fired = append(stub.fired, name) }
	}
	return stub, h
}

func (s *stubHandlers) callbackNames() []string {
	names := make([]string, 0, len(s.frames))
	for n := range s.frames {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
