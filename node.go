package cadence

import (
	"math"
	"strconv"
	"strings"
)

// Node is an animatable element in a Scene's tree. Style writes are mirrored
// onto the numeric transform fields so nodes can be drawn directly, and kept
// verbatim in Style for anything without a numeric mapping.
type Node struct {
	Name    string
	Classes []string

	// Hierarchy
	Parent   *Node
	children []*Node

	// Transform (local). TranslateX/Y are written by the "transform" style
	// and offset the layout position X, Y.
	X, Y       float64
	TranslateX float64
	TranslateY float64
	ScaleX     float64
	ScaleY     float64
	Rotation   float64 // radians
	PivotX     float64
	PivotY     float64

	// Appearance
	Width, Height float64
	Alpha         float64
	Color         Color
	Visible       bool

	// Style holds the last value written for every property.
	Style map[string]string

	// Computed (unexported, updated by updateWorldTransform)
	worldTransform [6]float64
	worldAlpha     float64
	transformDirty bool

	disposed bool
}

// NewNode creates a node with identity transform and full opacity.
func NewNode(name string, classes ...string) *Node {
	return &Node{
		Name:           name,
		Classes:        classes,
		ScaleX:         1,
		ScaleY:         1,
		Alpha:          1,
		Color:          ColorWhite,
		Visible:        true,
		Style:          make(map[string]string),
		transformDirty: true,
	}
}

// SetStyle implements StyleTarget. "opacity" and "transform" update the
// numeric fields; every property is recorded in Style.
func (n *Node) SetStyle(property, value string) {
	if n.disposed {
		return
	}
	if n.Style == nil {
		n.Style = make(map[string]string)
	}
	n.Style[property] = value

	switch property {
	case "opacity":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			n.Alpha = clamp01(v)
			n.transformDirty = true
		}
	case "transform":
		parts, err := parseTransform(value)
		if err != nil {
			return
		}
		n.applyTransformParts(parts)
	}
}

func (n *Node) applyTransformParts(parts map[string]float64) {
	n.TranslateX, n.TranslateY = parts["translateX"], parts["translateY"]
	n.ScaleX, n.ScaleY = 1, 1
	if s, ok := parts["scale"]; ok {
		n.ScaleX, n.ScaleY = s, s
	}
	if s, ok := parts["scaleX"]; ok {
		n.ScaleX = s
	}
	if s, ok := parts["scaleY"]; ok {
		n.ScaleY = s
	}
	n.Rotation = (parts["rotate"] + parts["rotateZ"]) * math.Pi / 180
	n.transformDirty = true
}

// HasClass reports whether the node carries class c.
func (n *Node) HasClass(c string) bool {
	for _, cl := range n.Classes {
		if cl == c {
			return true
		}
	}
	return false
}

// AddClass adds class c if not already present.
func (n *Node) AddClass(c string) {
	if !n.HasClass(c) {
		n.Classes = append(n.Classes, c)
	}
}

// --- Transform property setters ---

// SetPosition sets the node's local X and Y and marks it dirty.
func (n *Node) SetPosition(x, y float64) {
	n.X = x
	n.Y = y
	n.transformDirty = true
}

// SetScale sets the node's ScaleX and ScaleY and marks it dirty.
func (n *Node) SetScale(sx, sy float64) {
	n.ScaleX = sx
	n.ScaleY = sy
	n.transformDirty = true
}

// SetRotation sets the node's rotation (in radians) and marks it dirty.
func (n *Node) SetRotation(r float64) {
	n.Rotation = r
	n.transformDirty = true
}

// MarkDirty forces world transform recomputation on the next update.
func (n *Node) MarkDirty() {
	n.transformDirty = true
}

// WorldAlpha returns the alpha accumulated from the root at the last update.
func (n *Node) WorldAlpha() float64 { return n.worldAlpha }

// WorldTransform returns the affine matrix computed at the last update.
func (n *Node) WorldTransform() [6]float64 { return n.worldTransform }

// --- Tree manipulation ---

// AddChild appends child to this node's children, reparenting it if needed.
// Panics if child is nil or the operation would create a cycle.
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("cadence: cannot add nil child")
	}
	if isAncestor(child, n) {
		panic("cadence: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
	markSubtreeDirty(child)
}

// RemoveChild detaches child from this node. Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if child.Parent != n {
		panic("cadence: child's parent is not this node")
	}
	n.removeChildByPtr(child)
	child.Parent = nil
	markSubtreeDirty(child)
}

// RemoveFromParent detaches this node from its parent. No-op without parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// Children returns the child list. The returned slice MUST NOT be mutated.
func (n *Node) Children() []*Node {
	return n.children
}

// Dispose detaches the node and its subtree. Disposed nodes ignore style
// writes, so stages targeting them become harmless.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	n.Parent = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Selection ---

// Find returns the nodes in this subtree (including n) matching selector.
// Supported forms: "#name", ".class", "*", a bare name, and comma-separated
// lists of those. Results are in depth-first order without duplicates.
func (n *Node) Find(selector string) []*Node {
	var out []*Node
	seen := make(map[*Node]bool)
	for _, part := range strings.Split(selector, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n.walk(func(c *Node) {
			if !seen[c] && c.matches(part) {
				seen[c] = true
				out = append(out, c)
			}
		})
	}
	return out
}

func (n *Node) matches(sel string) bool {
	switch {
	case sel == "*":
		return true
	case strings.HasPrefix(sel, "#"):
		return n.Name == sel[1:]
	case strings.HasPrefix(sel, "."):
		return n.HasClass(sel[1:])
	default:
		return n.Name == sel
	}
}

func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.walk(fn)
	}
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.Parent.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}

// markSubtreeDirty sets transformDirty on node and all its descendants.
func markSubtreeDirty(node *Node) {
	node.transformDirty = true
	for _, child := range node.children {
		markSubtreeDirty(child)
	}
}
