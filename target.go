package cadence

import (
	"errors"
	"fmt"
)

// StyleTarget is anything a style or stagger stage can write to.
type StyleTarget interface {
	SetStyle(property, value string)
}

// StyleMap is a plain style-property map usable as a target.
type StyleMap map[string]string

// SetStyle implements StyleTarget.
func (m StyleMap) SetStyle(property, value string) { m[property] = value }

// SelectorSource resolves selector strings to targets. Scene implements it
// over its node tree.
type SelectorSource interface {
	Select(selector string) []StyleTarget
}

// TargetResolver produces the targets of a stage. Resolvers run once per
// timeline build and the result is cached on the stage runtime.
type TargetResolver interface {
	Resolve(src SelectorSource) ([]StyleTarget, error)
}

// ErrNoSelectorSource is returned when a selector is resolved without a source.
var ErrNoSelectorSource = errors.New("no selector source")

type selectorResolver string

// Selector resolves through the sequence's SelectorSource. Comma-separated
// lists are supported by Scene.
func Selector(sel string) TargetResolver { return selectorResolver(sel) }

func (r selectorResolver) Resolve(src SelectorSource) ([]StyleTarget, error) {
	if src == nil {
		return nil, fmt.Errorf("resolve %q: %w", string(r), ErrNoSelectorSource)
	}
	return src.Select(string(r)), nil
}

type handleResolver struct{ target StyleTarget }

// Handle targets a single, already known element.
func Handle(t StyleTarget) TargetResolver { return handleResolver{target: t} }

func (r handleResolver) Resolve(SelectorSource) ([]StyleTarget, error) {
	if r.target == nil {
		return nil, nil
	}
	return []StyleTarget{r.target}, nil
}

type handlesResolver []StyleTarget

// Handles targets a fixed list of elements.
func Handles(ts ...StyleTarget) TargetResolver { return handlesResolver(ts) }

func (r handlesResolver) Resolve(SelectorSource) ([]StyleTarget, error) {
	out := make([]StyleTarget, 0, len(r))
	for _, t := range r {
		if t != nil {
			out = append(out, t)
		}
	}
	return out, nil
}

type lazyResolver func() []StyleTarget

// Lazy defers target lookup to build time.
func Lazy(fn func() []StyleTarget) TargetResolver { return lazyResolver(fn) }

func (r lazyResolver) Resolve(SelectorSource) ([]StyleTarget, error) {
	if r == nil {
		return nil, nil
	}
	return r(), nil
}

// resolveTargets runs a resolver, converting panics into errors.
func resolveTargets(r TargetResolver, src SelectorSource) (targets []StyleTarget, err error) {
	if r == nil {
		return nil, nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			targets = nil
			err = fmt.Errorf("target resolver panicked: %v", rec)
		}
	}()
	return r.Resolve(src)
}
