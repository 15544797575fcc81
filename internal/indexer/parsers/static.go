package parsers

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"sync"
)

// StaticFrontend serves pre-recorded events per path. It lets the pipeline run
// without a grammar, e.g. in tests of the stages downstream of parsing.
type StaticFrontend struct {
	mu     sync.Mutex
	units  map[string][]Event
	errors map[string]error
	parsed []string
}

// NewStaticFrontend creates an empty static frontend.
func NewStaticFrontend() *StaticFrontend {
	return &StaticFrontend{
		units:  make(map[string][]Event),
		errors: make(map[string]error),
	}
}

// Add registers the events returned for path. File is filled in when empty.
func (f *StaticFrontend) Add(path string, events ...Event) *StaticFrontend {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range events {
		if events[i].File == "" {
			events[i].File = path
		}
	}
	f.units[path] = append(f.units[path], events...)
	return f
}

// Fail makes parsing path return err wrapped in ErrParseFailure.
func (f *StaticFrontend) Fail(path string, err error) *StaticFrontend {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors[path] = err
	return f
}

// Parsed returns the paths parsed so far, in call order.
func (f *StaticFrontend) Parsed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.parsed)
}

func (f *StaticFrontend) Parse(ctx context.Context, path string) (Unit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.parsed = append(f.parsed, path)
	if err, ok := f.errors[path]; ok {
		return nil, fmt.Errorf("%w: %s: %w", ErrParseFailure, path, err)
	}
	return EventList(slices.Clone(f.units[path])), nil
}

// EventList is a Unit over a fixed slice of events.
type EventList []Event

func (l EventList) Events() iter.Seq[Event] {
	return slices.Values(l)
}

func (l EventList) Close() {}
