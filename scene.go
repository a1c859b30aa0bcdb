package cadence

import (
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
)

// Scene is the top-level object that owns the node tree, the frame pump and
// the sequences animating it.
type Scene struct {
	root   *Node
	frames *ManualFrames
	store  EventStore
	motion MotionPreference
	log    zerolog.Logger
	debug  bool

	sequences []*Sequence
	updateFn  func() error
}

// NewScene creates a new scene with a pre-created root node.
func NewScene() *Scene {
	return &Scene{
		root:   NewNode("root"),
		frames: NewManualFrames(),
		motion: FullMotion,
		log:    zerolog.Nop(),
	}
}

// Root returns the scene's root node.
func (s *Scene) Root() *Node {
	return s.root
}

// Frames returns the scene's frame pump.
func (s *Scene) Frames() *ManualFrames {
	return s.frames
}

// Select implements SelectorSource over the scene tree.
func (s *Scene) Select(selector string) []StyleTarget {
	nodes := s.root.Find(selector)
	if len(nodes) == 0 {
		return nil
	}
	out := make([]StyleTarget, len(nodes))
	for i, n := range nodes {
		out[i] = n
	}
	return out
}

// NewSequence creates a sequence driven by this scene's frames, resolving
// selectors against the scene tree. opts are applied after the scene's
// defaults and may override them.
func (s *Scene) NewSequence(cfg SequenceConfig, opts ...Option) *Sequence {
	base := []Option{
		WithFrames(s.frames),
		WithSelectorSource(s),
		WithMotionPreference(s.motion),
		WithLogger(s.log.With().Str("component", "cadence").Logger()),
	}
	if s.store != nil {
		base = append(base, WithEventStore(s.store))
	}
	seq := NewSequence(cfg, append(base, opts...)...)
	seq.debug = s.debug
	s.sequences = append(s.sequences, seq)
	return seq
}

// RemoveSequence stops seq and detaches it from the scene.
func (s *Scene) RemoveSequence(seq *Sequence) {
	for i, q := range s.sequences {
		if q == seq {
			seq.Stop()
			s.sequences = append(s.sequences[:i], s.sequences[i+1:]...)
			return
		}
	}
}

// Sequences returns the scene's sequences. The returned slice MUST NOT be mutated.
func (s *Scene) Sequences() []*Sequence {
	return s.sequences
}

// Update advances the frame pump by one tick, runs the update callback and
// refreshes world transforms.
func (s *Scene) Update() error {
	return s.UpdateBy(time.Second / time.Duration(ebiten.TPS()))
}

// UpdateBy advances the frame pump by dt. Headless callers use it instead
// of Update.
func (s *Scene) UpdateBy(dt time.Duration) error {
	if s.updateFn != nil {
		if err := s.updateFn(); err != nil {
			return err
		}
	}
	s.frames.Step(dt)
	updateWorldTransform(s.root, identityTransform, 1.0, false)
	return nil
}

// SetUpdateFunc sets a callback run at the start of every Update.
func (s *Scene) SetUpdateFunc(fn func() error) {
	s.updateFn = fn
}

// Draw renders every visible node with a size as a tinted rectangle.
func (s *Scene) Draw(screen *ebiten.Image) {
	s.drawNode(screen, s.root)
}

func (s *Scene) drawNode(screen *ebiten.Image, n *Node) {
	if !n.Visible {
		return
	}
	if n.Width > 0 && n.Height > 0 && n.worldAlpha > 0 {
		var op ebiten.DrawImageOptions
		op.GeoM.Scale(n.Width, n.Height)
		wt := n.worldTransform
		var m ebiten.GeoM
		m.SetElement(0, 0, wt[0])
		m.SetElement(1, 0, wt[1])
		m.SetElement(0, 1, wt[2])
		m.SetElement(1, 1, wt[3])
		m.SetElement(0, 2, wt[4])
		m.SetElement(1, 2, wt[5])
		op.GeoM.Concat(m)
		a := float32(n.worldAlpha)
		op.ColorScale.Scale(float32(n.Color.R)*a, float32(n.Color.G)*a, float32(n.Color.B)*a, float32(n.Color.A)*a)
		screen.DrawImage(whitePixel(), &op)
	}
	for _, c := range n.children {
		s.drawNode(screen, c)
	}
}

var whitePixelImage *ebiten.Image

// whitePixel returns a lazily-initialized 1x1 white pixel image.
func whitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	return whitePixelImage
}

// SetEventStore sets the optional lifecycle event bridge for sequences
// created afterwards.
func (s *Scene) SetEventStore(store EventStore) {
	s.store = store
}

// SetMotionPreference sets the motion preference and applies it to every
// existing sequence.
func (s *Scene) SetMotionPreference(p MotionPreference) {
	s.motion = p
	for _, seq := range s.sequences {
		seq.SetMotionPreference(p)
	}
}

// SetLogger sets the logger handed to sequences created afterwards.
func (s *Scene) SetLogger(l zerolog.Logger) {
	s.log = l
}

// SetDebugMode enables or disables debug mode. When enabled, per-tick timing
// stats are logged at debug level.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
	for _, seq := range s.sequences {
		seq.debug = enabled
	}
}
