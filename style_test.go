package cadence

import "testing"

func TestStyleInterpolatorNumeric(t *testing.T) {
	si := newStyleInterpolator(
		StyleProps{"opacity": 0, "translateX": 0.0, "width": 10},
		StyleProps{"opacity": 1, "translateX": 100.0, "width": 20},
	)
	f := si.at(0.25)
	if got := f.Applied["opacity"]; got != "0.25" {
		t.Errorf("opacity = %q, want 0.25", got)
	}
	if got := f.Applied["transform"]; got != "translateX(25px)" {
		t.Errorf("transform = %q, want translateX(25px)", got)
	}
	if _, ok := f.Applied["width"]; ok {
		t.Error("width has no application rule and should not be applied")
	}
	if got := f.Computed["width"]; !near(got, 12.5, 1e-9) {
		t.Errorf("computed width = %v, want 12.5", got)
	}
}

func TestStyleInterpolatorOpacityClampsOnOvershoot(t *testing.T) {
	si := newStyleInterpolator(StyleProps{"opacity": 0}, StyleProps{"opacity": 1})
	f := si.at(1.2)
	if got := f.Applied["opacity"]; got != "1" {
		t.Errorf("opacity = %q, want 1", got)
	}
	if got := f.Computed["opacity"]; !near(got, 1.2, 1e-9) {
		t.Errorf("computed opacity = %v, want 1.2", got)
	}
}

func TestStyleInterpolatorNeutralValues(t *testing.T) {
	si := newStyleInterpolator(nil, StyleProps{"scale": 2, "rotate": 90})
	if got := si.at(0.5).Applied["transform"]; got != "scale(1.5) rotate(45deg)" {
		t.Errorf("transform = %q, want scale(1.5) rotate(45deg)", got)
	}
}

func TestStyleInterpolatorStrings(t *testing.T) {
	si := newStyleInterpolator(
		StyleProps{"display": "none"},
		StyleProps{"display": "block", "color": "red"},
	)
	start := si.at(0)
	if start.Applied["display"] != "none" || start.Applied["color"] != "red" {
		t.Errorf("at 0: %v", start.Applied)
	}
	moving := si.at(0.1)
	if moving.Applied["display"] != "block" {
		t.Errorf("at 0.1: display = %q, want block", moving.Applied["display"])
	}
}

func TestStyleFrameApply(t *testing.T) {
	a, b := StyleMap{}, StyleMap{}
	si := newStyleInterpolator(StyleProps{"opacity": 1}, StyleProps{"opacity": 0})
	si.at(0.5).apply([]StyleTarget{a, b})
	for _, m := range []StyleMap{a, b} {
		if m["opacity"] != "0.5" {
			t.Errorf("target opacity = %q, want 0.5", m["opacity"])
		}
	}
}

func TestStyleInterpolatorNodeTarget(t *testing.T) {
	n := NewNode("box")
	n.X = 40
	si := newStyleInterpolator(
		StyleProps{"opacity": 0, "translateY": -20},
		StyleProps{"opacity": 1, "translateY": 0},
	)
	si.at(0.5).apply([]StyleTarget{n})
	if !near(n.Alpha, 0.5, 1e-9) {
		t.Errorf("Alpha = %v, want 0.5", n.Alpha)
	}
	if !near(n.TranslateY, -10, 1e-9) {
		t.Errorf("TranslateY = %v, want -10", n.TranslateY)
	}
	if n.X != 40 {
		t.Errorf("X = %v, layout position should be untouched", n.X)
	}
}
