package cadence

import (
	"math"
	"testing"
)

// --- Constructor defaults ---

func TestNewNodeDefaults(t *testing.T) {
	n := NewNode("test", "a", "b")
	if n.Name != "test" {
		t.Errorf("Name = %q, want %q", n.Name, "test")
	}
	if n.ScaleX != 1 || n.ScaleY != 1 {
		t.Errorf("Scale = (%v, %v), want (1, 1)", n.ScaleX, n.ScaleY)
	}
	if n.Alpha != 1 {
		t.Errorf("Alpha = %v, want 1", n.Alpha)
	}
	if n.Color != (Color{1, 1, 1, 1}) {
		t.Errorf("Color = %v, want white", n.Color)
	}
	if !n.Visible {
		t.Error("Visible should be true")
	}
	if !n.transformDirty {
		t.Error("transformDirty should be true")
	}
	if !n.HasClass("a") || !n.HasClass("b") || n.HasClass("c") {
		t.Errorf("Classes = %v", n.Classes)
	}
}

func TestAddClassNoDuplicates(t *testing.T) {
	n := NewNode("n")
	n.AddClass("x")
	n.AddClass("x")
	if len(n.Classes) != 1 {
		t.Errorf("Classes = %v, want [x]", n.Classes)
	}
}

// --- SetStyle ---

func TestSetStyleOpacity(t *testing.T) {
	n := NewNode("n")
	n.SetStyle("opacity", "0.25")
	assertNear(t, "Alpha", n.Alpha, 0.25)
	if n.Style["opacity"] != "0.25" {
		t.Errorf("Style[opacity] = %q", n.Style["opacity"])
	}

	n.SetStyle("opacity", "3")
	assertNear(t, "Alpha clamped", n.Alpha, 1)
}

func TestSetStyleTransform(t *testing.T) {
	n := NewNode("n")
	n.SetPosition(5, 5)
	n.SetStyle("transform", "translateX(10px) translateY(-4px) scale(2) rotate(90deg)")

	assertNear(t, "X", n.X, 5)
	assertNear(t, "TranslateX", n.TranslateX, 10)
	assertNear(t, "TranslateY", n.TranslateY, -4)
	assertNear(t, "ScaleX", n.ScaleX, 2)
	assertNear(t, "ScaleY", n.ScaleY, 2)
	assertNear(t, "Rotation", n.Rotation, math.Pi/2)
}

func TestSetStyleTransformAxisScale(t *testing.T) {
	n := NewNode("n")
	n.SetStyle("transform", "scale(2) scaleY(3)")
	assertNear(t, "ScaleX", n.ScaleX, 2)
	assertNear(t, "ScaleY", n.ScaleY, 3)

	// Components missing from a later write return to identity.
	n.SetStyle("transform", "translateX(1px)")
	assertNear(t, "ScaleX reset", n.ScaleX, 1)
	assertNear(t, "ScaleY reset", n.ScaleY, 1)
}

func TestSetStyleMalformedTransformKeepsFields(t *testing.T) {
	n := NewNode("n")
	n.SetStyle("transform", "scale(2)")
	n.SetStyle("transform", "scale(")
	assertNear(t, "ScaleX", n.ScaleX, 2)
	if n.Style["transform"] != "scale(" {
		t.Errorf("Style[transform] = %q, want raw value recorded", n.Style["transform"])
	}
}

func TestSetStyleOtherProperty(t *testing.T) {
	n := NewNode("n")
	n.SetStyle("background", "red")
	if n.Style["background"] != "red" {
		t.Errorf("Style[background] = %q", n.Style["background"])
	}
}

func TestSetStyleDisposedIgnored(t *testing.T) {
	n := NewNode("n")
	n.Dispose()
	n.SetStyle("opacity", "0")
	if n.Alpha != 1 {
		t.Errorf("Alpha = %v, disposed node should ignore writes", n.Alpha)
	}
}

// --- AddChild ---

func TestAddChildBasic(t *testing.T) {
	parent := NewNode("parent")
	child := NewNode("child")
	parent.AddChild(child)

	if child.Parent != parent {
		t.Error("child.Parent should be parent")
	}
	if len(parent.Children()) != 1 || parent.Children()[0] != child {
		t.Error("Children() should be [child]")
	}
}

func TestAddChildReparent(t *testing.T) {
	p1 := NewNode("p1")
	p2 := NewNode("p2")
	child := NewNode("child")

	p1.AddChild(child)
	p2.AddChild(child)
	if len(p1.Children()) != 0 {
		t.Error("p1 should have 0 children after reparent")
	}
	if len(p2.Children()) != 1 {
		t.Error("p2 should have 1 child")
	}
	if child.Parent != p2 {
		t.Error("child.Parent should be p2")
	}
}

func TestAddChildCyclePanic(t *testing.T) {
	parent := NewNode("parent")
	child := NewNode("child")
	grandchild := NewNode("grandchild")
	parent.AddChild(child)
	child.AddChild(grandchild)

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for cycle, got none")
		}
	}()
	grandchild.AddChild(parent)
}

func TestAddChildSelfPanic(t *testing.T) {
	n := NewNode("self")
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for self-add, got none")
		}
	}()
	n.AddChild(n)
}

func TestAddChildNilPanic(t *testing.T) {
	n := NewNode("n")
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for nil child, got none")
		}
	}()
	n.AddChild(nil)
}

// --- RemoveChild ---

func TestRemoveChild(t *testing.T) {
	parent := NewNode("parent")
	child := NewNode("child")
	parent.AddChild(child)
	parent.RemoveChild(child)

	if len(parent.Children()) != 0 {
		t.Error("parent should have 0 children")
	}
	if child.Parent != nil {
		t.Error("child.Parent should be nil")
	}
}

func TestRemoveChildWrongParentPanic(t *testing.T) {
	p1 := NewNode("p1")
	p2 := NewNode("p2")
	child := NewNode("child")
	p1.AddChild(child)

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for wrong parent, got none")
		}
	}()
	p2.RemoveChild(child)
}

func TestRemoveFromParentNoOp(t *testing.T) {
	n := NewNode("orphan")
	n.RemoveFromParent()
	if n.Parent != nil {
		t.Error("Parent should remain nil")
	}
}

// --- Dispose ---

func TestDispose(t *testing.T) {
	root := NewNode("root")
	parent := NewNode("parent")
	child := NewNode("child")
	root.AddChild(parent)
	parent.AddChild(child)

	parent.Dispose()

	if !parent.IsDisposed() || !child.IsDisposed() {
		t.Error("subtree should be disposed")
	}
	if len(root.Children()) != 0 {
		t.Error("root should have 0 children after dispose")
	}
}

func TestDisposeIdempotent(t *testing.T) {
	n := NewNode("n")
	n.Dispose()
	n.Dispose()
	if !n.IsDisposed() {
		t.Error("should still be disposed")
	}
}

// --- Dirty propagation ---

func TestDirtyPropagationOnAddChild(t *testing.T) {
	parent := NewNode("parent")
	child := NewNode("child")
	grandchild := NewNode("grandchild")
	child.AddChild(grandchild)

	child.transformDirty = false
	grandchild.transformDirty = false

	parent.AddChild(child)

	if !child.transformDirty {
		t.Error("child should be dirty after AddChild")
	}
	if !grandchild.transformDirty {
		t.Error("grandchild should be dirty after AddChild")
	}
}

// --- Find ---

func buildFindTree() *Node {
	root := NewNode("root")
	list := NewNode("list", "panel")
	root.AddChild(list)
	for _, name := range []string{"a", "b", "c"} {
		list.AddChild(NewNode(name, "item"))
	}
	root.AddChild(NewNode("footer", "panel"))
	return root
}

func findNames(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func assertNames(t *testing.T, got []*Node, want ...string) {
	t.Helper()
	names := findNames(got)
	if len(names) != len(want) {
		t.Fatalf("found %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("found %v, want %v", names, want)
			return
		}
	}
}

func TestFindByID(t *testing.T) {
	root := buildFindTree()
	assertNames(t, root.Find("#b"), "b")
}

func TestFindByClass(t *testing.T) {
	root := buildFindTree()
	assertNames(t, root.Find(".item"), "a", "b", "c")
	assertNames(t, root.Find(".panel"), "list", "footer")
}

func TestFindBareName(t *testing.T) {
	root := buildFindTree()
	assertNames(t, root.Find("footer"), "footer")
}

func TestFindListDeduplicates(t *testing.T) {
	root := buildFindTree()
	assertNames(t, root.Find("#a, .item, #footer"), "a", "b", "c", "footer")
}

func TestFindWildcard(t *testing.T) {
	root := buildFindTree()
	if got := len(root.Find("*")); got != 6 {
		t.Errorf("Find(*) = %d nodes, want 6", got)
	}
}

func TestFindNoMatch(t *testing.T) {
	root := buildFindTree()
	if got := root.Find(".missing"); len(got) != 0 {
		t.Errorf("Find(.missing) = %v, want none", findNames(got))
	}
}
