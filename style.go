package cadence

import "sort"

// StyleFrame is one interpolated snapshot of a style tween.
type StyleFrame struct {
	// Applied holds the values written to targets, including the composed
	// "transform" string.
	Applied map[string]string
	// Computed holds every interpolated numeric value, including properties
	// that have no application rule and therefore are not written.
	Computed map[string]float64
}

type numericProp struct {
	name     string
	from, to float64
}

// styleInterpolator is built once per stage from its From/To maps.
type styleInterpolator struct {
	numeric     []numericProp
	fromStrings map[string]string
	toStrings   map[string]string
}

func newStyleInterpolator(from, to StyleProps) styleInterpolator {
	si := styleInterpolator{
		fromStrings: make(map[string]string),
		toStrings:   make(map[string]string),
	}

	names := make(map[string]struct{}, len(from)+len(to))
	for k := range from {
		names[k] = struct{}{}
	}
	for k := range to {
		names[k] = struct{}{}
	}
	sorted := make([]string, 0, len(names))
	for k := range names {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	for _, name := range sorted {
		fv, fok := from[name]
		tv, tok := to[name]
		fn, fnum := toFloat(fv)
		tn, tnum := toFloat(tv)

		switch {
		case (fnum || !fok) && (tnum || !tok):
			if !fok {
				fn = neutralValue(name)
			}
			if !tok {
				tn = neutralValue(name)
			}
			si.numeric = append(si.numeric, numericProp{name: name, from: fn, to: tn})
		default:
			if s, ok := fv.(string); ok {
				si.fromStrings[name] = s
			}
			if s, ok := tv.(string); ok {
				si.toStrings[name] = s
			}
		}
	}
	return si
}

// at interpolates every property at progress p. p may overshoot [0, 1] for
// elastic curves; numeric values follow it.
func (si styleInterpolator) at(p float64) StyleFrame {
	frame := StyleFrame{
		Applied:  make(map[string]string, len(si.numeric)+len(si.toStrings)),
		Computed: make(map[string]float64, len(si.numeric)),
	}

	var transform map[string]float64
	for _, np := range si.numeric {
		v := np.from + (np.to-np.from)*p
		frame.Computed[np.name] = v
		if np.name == "opacity" {
			frame.Applied["opacity"] = formatNumber(clamp01(v))
			continue
		}
		if isTransformComponent(np.name) {
			if transform == nil {
				transform = make(map[string]float64)
			}
			transform[np.name] = v
		}
	}
	if transform != nil {
		frame.Applied["transform"] = composeTransform(transform)
	}

	// String values pass through; the from value holds until the tween moves.
	for name, v := range si.fromStrings {
		if _, ok := si.toStrings[name]; !ok || p <= 0 {
			frame.Applied[name] = v
		}
	}
	if p > 0 {
		for name, v := range si.toStrings {
			frame.Applied[name] = v
		}
	} else {
		for name, v := range si.toStrings {
			if _, ok := si.fromStrings[name]; !ok {
				frame.Applied[name] = v
			}
		}
	}
	return frame
}

// apply writes the frame to every target.
func (f StyleFrame) apply(targets []StyleTarget) {
	for _, t := range targets {
		for name, v := range f.Applied {
			t.SetStyle(name, v)
		}
	}
}

func isTransformComponent(name string) bool {
	for _, n := range transformOrder {
		if n == name {
			return true
		}
	}
	return false
}

// neutralValue is the implicit value of a property missing on one side.
func neutralValue(name string) float64 {
	switch name {
	case "opacity", "scale", "scaleX", "scaleY":
		return 1
	}
	return 0
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
