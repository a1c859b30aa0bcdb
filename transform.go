package cadence

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// transformOrder is the fixed order in which numeric transform properties are
// composed into a single transform string.
var transformOrder = []string{
	"translateX", "translateY", "translateZ",
	"scale", "scaleX", "scaleY",
	"rotate", "rotateX", "rotateY", "rotateZ",
}

// transformUnit reports the CSS unit of a transform component property.
func transformUnit(name string) (unit string, ok bool) {
	switch {
	case strings.HasPrefix(name, "translate"):
		return "px", true
	case strings.HasPrefix(name, "scale"):
		return "", true
	case strings.HasPrefix(name, "rotate"):
		return "deg", true
	}
	return "", false
}

// composeTransform joins transform components into "translateX(10px) scale(2)".
func composeTransform(values map[string]float64) string {
	var b strings.Builder
	for _, name := range transformOrder {
		v, ok := values[name]
		if !ok {
			continue
		}
		unit, _ := transformUnit(name)
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(name)
		b.WriteByte('(')
		b.WriteString(formatNumber(v))
		b.WriteString(unit)
		b.WriteByte(')')
	}
	return b.String()
}

// parseTransform reads a transform string produced by composeTransform (or
// written by hand in the same function(value unit) form).
func parseTransform(s string) (map[string]float64, error) {
	out := make(map[string]float64)
	rest := strings.TrimSpace(s)
	for rest != "" {
		open := strings.IndexByte(rest, '(')
		closing := strings.IndexByte(rest, ')')
		if open <= 0 || closing < open {
			return nil, fmt.Errorf("parse transform %q: malformed component", s)
		}
		name := strings.TrimSpace(rest[:open])
		raw := strings.TrimSpace(rest[open+1 : closing])
		raw = strings.TrimSuffix(strings.TrimSuffix(raw, "px"), "deg")
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("parse transform %q: %w", s, err)
		}
		out[name] = v
		rest = strings.TrimSpace(rest[closing+1:])
	}
	return out, nil
}

// formatNumber prints v rounded to four decimals without trailing zeros.
func formatNumber(v float64) string {
	v = math.Round(v*1e4) / 1e4
	if v == 0 {
		v = 0 // normalize -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// --- Node affine transforms ---

// identityTransform is the identity affine matrix.
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// computeLocalTransform computes the local affine matrix from the node's
// transform properties. Returns [a, b, c, d, tx, ty].
//
// Composition order:
//
//	Translate(-PivotX, -PivotY) -> Scale -> Rotate -> Translate(X+TranslateX, Y+TranslateY)
func computeLocalTransform(n *Node) [6]float64 {
	sx, sy := n.ScaleX, n.ScaleY
	sin, cos := math.Sincos(n.Rotation)

	preTx := -n.PivotX * sx
	preTy := -n.PivotY * sy

	return [6]float64{
		cos * sx,
		sin * sx,
		-sin * sy,
		cos * sy,
		cos*preTx - sin*preTy + n.X + n.TranslateX,
		sin*preTx + cos*preTy + n.Y + n.TranslateY,
	}
}

// multiplyAffine multiplies two 2D affine matrices: result = parent * child.
//
//	Matrix layout: [a, b, c, d, tx, ty]
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// updateWorldTransform recomputes a node's worldTransform and worldAlpha.
// parentRecomputed forces recomputation of clean children of a dirty parent.
func updateWorldTransform(n *Node, parentTransform [6]float64, parentAlpha float64, parentRecomputed bool) {
	recompute := n.transformDirty || parentRecomputed
	if recompute {
		n.worldTransform = multiplyAffine(parentTransform, computeLocalTransform(n))
		n.worldAlpha = parentAlpha * n.Alpha
		n.transformDirty = false
	}
	for _, child := range n.children {
		updateWorldTransform(child, n.worldTransform, n.worldAlpha, recompute)
	}
}
