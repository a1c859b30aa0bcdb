package cadence

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/tanema/gween/ease"
)

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestLookupEasingAliases(t *testing.T) {
	for _, name := range []string{"outCubic", "out-cubic", "OUT_CUBIC", "easeOutCubic", "ease-out-cubic", "easeout"} {
		fn, ok := LookupEasing(name)
		if !ok {
			t.Errorf("LookupEasing(%q) not found", name)
			continue
		}
		want := float64(ease.OutCubic(0.5, 0, 1, 1))
		if !near(fn(0.5), want, 1e-6) {
			t.Errorf("LookupEasing(%q)(0.5) = %v, want %v", name, fn(0.5), want)
		}
	}
}

func TestLookupEasingUnknown(t *testing.T) {
	if _, ok := LookupEasing("wobble"); ok {
		t.Error("unknown easing should not resolve")
	}
	if _, ok := LookupEasing("ease"); !ok {
		t.Error(`"ease" keyword should resolve`)
	}
}

func TestNamedEasingsHitEndpoints(t *testing.T) {
	for _, name := range EasingNames() {
		fn, _ := LookupEasing(name)
		if !near(fn(0), 0, 1e-4) || !near(fn(1), 1, 1e-4) {
			t.Errorf("%s: f(0)=%v f(1)=%v, want 0 and 1", name, fn(0), fn(1))
		}
	}
}

func TestExpoEasingsReachExactEndpoints(t *testing.T) {
	for _, name := range []string{"inExpo", "outInExpo", "inOutExpo"} {
		fn, ok := LookupEasing(name)
		if !ok {
			t.Fatalf("%s not registered", name)
		}
		if fn(0) != 0 || fn(1) != 1 {
			t.Errorf("%s: f(0)=%v f(1)=%v, want exactly 0 and 1", name, fn(0), fn(1))
		}
	}
	fn := ResolveEasing(EaseTween(ease.InExpo), zerolog.Nop())
	if fn(1) != 1 || fn(1.5) != 1 || fn(-0.5) != 0 {
		t.Errorf("wrapped tween endpoints: f(1)=%v f(1.5)=%v f(-0.5)=%v", fn(1), fn(1.5), fn(-0.5))
	}
}

func TestResolveEasingPrecedence(t *testing.T) {
	log := zerolog.Nop()
	double := func(p float64) float64 { return p * 2 }

	fn := ResolveEasing(Easing{Name: "inQuad", Func: double, Tween: ease.OutQuad}, log)
	if fn(0.25) != 0.5 {
		t.Errorf("Func should win, got %v", fn(0.25))
	}

	fn = ResolveEasing(Easing{Name: "inQuad", Tween: ease.Linear}, log)
	if !near(fn(0.25), 0.25, 1e-6) {
		t.Errorf("Tween should win over Name, got %v", fn(0.25))
	}

	fn = ResolveEasing(Easing{Name: "inQuad"}, log)
	if !near(fn(0.5), 0.25, 1e-6) {
		t.Errorf("inQuad(0.5) = %v, want 0.25", fn(0.5))
	}
}

func TestResolveEasingFallsBackToLinear(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	fn := ResolveEasing(EaseNamed("nope"), log)
	if fn(0.3) != 0.3 {
		t.Errorf("unknown easing should be linear, got %v", fn(0.3))
	}
	if !strings.Contains(buf.String(), "unknown easing") {
		t.Errorf("expected a warning, log = %q", buf.String())
	}

	buf.Reset()
	fn = ResolveEasing(EaseSpring(SpringParams{Mass: 0, Stiffness: 100}), log)
	if fn(0.7) != 0.7 {
		t.Errorf("invalid spring should be linear, got %v", fn(0.7))
	}
	if !strings.Contains(buf.String(), "spring") {
		t.Errorf("expected a spring warning, log = %q", buf.String())
	}

	fn = ResolveEasing(Easing{}, log)
	if fn(0.4) != 0.4 {
		t.Errorf("empty definition should be linear, got %v", fn(0.4))
	}
}

func TestResolveEasingRecoversPanics(t *testing.T) {
	var buf bytes.Buffer
	fn := ResolveEasing(EaseFunc(func(p float64) float64 {
		if p > 0.5 {
			panic("boom")
		}
		return p / 2
	}), zerolog.New(&buf))

	if got := fn(0.4); got != 0.2 {
		t.Errorf("fn(0.4) = %v, want 0.2", got)
	}
	if got := fn(0.8); got != 0.8 {
		t.Errorf("panicking easing should return linear progress, got %v", got)
	}
	fn(0.9)
	if n := strings.Count(buf.String(), "easing function panicked"); n != 1 {
		t.Errorf("panic warning logged %d times, want 1", n)
	}
}

func TestEasingIsZero(t *testing.T) {
	if !(Easing{}).IsZero() {
		t.Error("zero Easing should report IsZero")
	}
	if EaseNamed("linear").IsZero() {
		t.Error("named Easing should not report IsZero")
	}
}
