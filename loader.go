package cadence

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrUnknownHandler is returned when a sequence file names a callback or
// event handler that was not supplied.
var ErrUnknownHandler = errors.New("unknown handler")

// SequenceFile is the YAML form of a sequence.
type SequenceFile struct {
	ID                  string                  `yaml:"id"`
	Duration            FileDuration            `yaml:"duration"`
	Autoplay            bool                    `yaml:"autoplay"`
	Loop                bool                    `yaml:"loop"`
	Repeat              int                     `yaml:"repeat"`
	Yoyo                bool                    `yaml:"yoyo"`
	Direction           string                  `yaml:"direction"`
	Category            string                  `yaml:"category"`
	Rate                float64                 `yaml:"rate"`
	Pattern             string                  `yaml:"pattern"`
	StaggerDelay        FileDuration            `yaml:"staggerDelay"`
	ProximityThreshold  float64                 `yaml:"proximityThreshold"`
	Seed                uint64                  `yaml:"seed"`
	ResolveDependencies bool                    `yaml:"resolveDependencies"`
	Labels              map[string]FileDuration `yaml:"labels"`
	Stages              []StageFile             `yaml:"stages"`

	// Source is the path the file was loaded from, if any.
	Source string `yaml:"-"`
}

// StageFile is the YAML form of a stage.
type StageFile struct {
	ID                string         `yaml:"id"`
	Type              string         `yaml:"type"`
	Duration          FileDuration   `yaml:"duration"`
	Delay             FileDuration   `yaml:"delay"`
	Easing            FileEasing     `yaml:"easing"`
	DependsOn         []string       `yaml:"dependsOn"`
	Repeat            int            `yaml:"repeat"`
	RepeatDelay       FileDuration   `yaml:"repeatDelay"`
	Yoyo              bool           `yaml:"yoyo"`
	Category          string         `yaml:"category"`
	Targets           []string       `yaml:"targets"`
	From              map[string]any `yaml:"from"`
	To                map[string]any `yaml:"to"`
	Stagger           *StaggerFile   `yaml:"stagger"`
	Handler           string         `yaml:"handler"`
	Children          []StageFile    `yaml:"children"`
	Relationship      string         `yaml:"relationship"`
	RelationshipValue FileDuration   `yaml:"relationshipValue"`
	ReducedMotion     *StageFile     `yaml:"reducedMotion"`

	Position     []float64 `yaml:"position"`
	Tag          string    `yaml:"tag"`
	PathPosition *float64  `yaml:"pathPosition"`
	Group        string    `yaml:"group"`
	ZOrder       *int      `yaml:"zOrder"`
}

// StaggerFile is the YAML form of a stagger block.
type StaggerFile struct {
	Each    FileDuration `yaml:"each"`
	Pattern string       `yaml:"pattern"`
}

// FileDuration accepts a Go duration string ("250ms", "1.5s") or a bare
// number of milliseconds.
type FileDuration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *FileDuration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", value.Line)
	}
	raw := strings.TrimSpace(value.Value)
	if raw == "" {
		*d = 0
		return nil
	}
	if ms, err := strconv.ParseFloat(raw, 64); err == nil {
		*d = FileDuration(ms * float64(time.Millisecond))
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("line %d: invalid duration %q: %w", value.Line, raw, err)
	}
	*d = FileDuration(parsed)
	return nil
}

// FileEasing is either a named easing or a spring block:
//
//	easing: outCubic
//	easing: {spring: {stiffness: 170, damping: 26}}
type FileEasing struct {
	Name   string
	Spring *SpringParams
}

type springFile struct {
	Mass      float64 `yaml:"mass"`
	Stiffness float64 `yaml:"stiffness"`
	Damping   float64 `yaml:"damping"`
	Velocity  float64 `yaml:"velocity"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *FileEasing) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		e.Name = strings.TrimSpace(value.Value)
		return nil
	case yaml.MappingNode:
		var block struct {
			Name   string      `yaml:"name"`
			Spring *springFile `yaml:"spring"`
		}
		if err := value.Decode(&block); err != nil {
			return err
		}
		e.Name = strings.TrimSpace(block.Name)
		if block.Spring != nil {
			p := DefaultSpring()
			if block.Spring.Mass != 0 {
				p.Mass = block.Spring.Mass
			}
			if block.Spring.Stiffness != 0 {
				p.Stiffness = block.Spring.Stiffness
			}
			if block.Spring.Damping != 0 {
				p.Damping = block.Spring.Damping
			}
			p.InitialVelocity = block.Spring.Velocity
			e.Spring = &p
		}
		return nil
	default:
		return fmt.Errorf("line %d: easing must be a name or a mapping", value.Line)
	}
}

func (e FileEasing) easing() Easing {
	if e.Spring != nil {
		return EaseSpring(*e.Spring)
	}
	if e.Name != "" {
		return EaseNamed(e.Name)
	}
	return Easing{}
}

// LoadSequenceFile reads a sequence file from disk.
func LoadSequenceFile(path string) (*SequenceFile, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sequence path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sequence %s: %w", path, err)
	}
	f, err := ParseSequence(data)
	if err != nil {
		return nil, fmt.Errorf("parse sequence %s: %w", path, err)
	}
	f.Source = path
	return f, nil
}

// ParseSequence parses and validates a YAML sequence document.
func ParseSequence(data []byte) (*SequenceFile, error) {
	var f SequenceFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	f.ID = strings.TrimSpace(f.ID)
	if len(f.Stages) == 0 {
		return nil, fmt.Errorf("sequence stages are required")
	}
	if f.Direction != "" {
		if _, ok := ParseDirection(f.Direction); !ok {
			return nil, fmt.Errorf("unknown direction %q", f.Direction)
		}
	}
	if f.Pattern != "" {
		if _, ok := ParsePattern(f.Pattern); !ok {
			return nil, fmt.Errorf("unknown pattern %q", f.Pattern)
		}
	}
	for i := range f.Stages {
		if err := normalizeStageFile(&f.Stages[i]); err != nil {
			return nil, fmt.Errorf("stage %d: %w", i+1, err)
		}
	}
	return &f, nil
}

func normalizeStageFile(st *StageFile) error {
	st.ID = strings.TrimSpace(st.ID)
	if st.ID == "" {
		return ErrMissingStageID
	}
	st.Type = strings.TrimSpace(st.Type)
	if st.Type != "" {
		if _, ok := ParseStageType(st.Type); !ok {
			return fmt.Errorf("%s: unknown type %q", st.ID, st.Type)
		}
	}
	if st.Stagger != nil && st.Stagger.Pattern != "" {
		if _, ok := ParseStaggerPattern(st.Stagger.Pattern); !ok {
			return fmt.Errorf("%s: unknown stagger pattern %q", st.ID, st.Stagger.Pattern)
		}
	}
	if st.Relationship != "" {
		if _, ok := parseRelationship(st.Relationship); !ok {
			return fmt.Errorf("%s: unknown relationship %q", st.ID, st.Relationship)
		}
	}
	if len(st.Position) != 0 && len(st.Position) != 2 {
		return fmt.Errorf("%s: position needs two coordinates", st.ID)
	}
	for i := range st.Children {
		if err := normalizeStageFile(&st.Children[i]); err != nil {
			return fmt.Errorf("%s: %w", st.ID, err)
		}
	}
	if st.ReducedMotion != nil {
		if st.ReducedMotion.ID == "" {
			st.ReducedMotion.ID = st.ID
		}
		if err := normalizeStageFile(st.ReducedMotion); err != nil {
			return fmt.Errorf("%s reduced motion: %w", st.ID, err)
		}
	}
	return nil
}

// bindHandler attaches a named handler. Untyped stages take a callback
// handler first, then an event handler.
func bindHandler(st *Stage, name string, h Handlers) error {
	cb, isCallback := h.Callbacks[name]
	ev, isEvent := h.Events[name]
	switch {
	case st.Type == StageEvent && isEvent:
		st.Event = ev
	case st.Type == StageCallback && isCallback:
		st.Callback = cb
	case st.Type == StageAuto && isCallback:
		st.Callback = cb
	case st.Type == StageAuto && isEvent:
		st.Event = ev
	default:
		return fmt.Errorf("%w: %s (stage %s)", ErrUnknownHandler, name, st.ID)
	}
	return nil
}

func parseRelationship(name string) (GroupRelationship, bool) {
	switch normalizeEasingName(name) {
	case "parallel":
		return GroupParallel, true
	case "sequential":
		return GroupSequential, true
	case "staggered", "stagger":
		return GroupStaggered, true
	}
	return GroupParallel, false
}

// Handlers binds the handler names used by callback and event stages.
type Handlers struct {
	Callbacks map[string]func(progress float64, stageID string)
	Events    map[string]func(stageID string)
}

// HandlerNames lists every handler referenced by the file, sorted.
func (f *SequenceFile) HandlerNames() []string {
	seen := make(map[string]bool)
	var walk func([]StageFile)
	walk = func(stages []StageFile) {
		for i := range stages {
			if h := stages[i].Handler; h != "" {
				seen[h] = true
			}
			walk(stages[i].Children)
			if rm := stages[i].ReducedMotion; rm != nil {
				walk([]StageFile{*rm})
			}
		}
	}
	walk(f.Stages)
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Config converts the file into a SequenceConfig, binding handler names.
func (f *SequenceFile) Config(h Handlers) (SequenceConfig, error) {
	cfg := SequenceConfig{
		ID:                  f.ID,
		Duration:            time.Duration(f.Duration),
		Autoplay:            f.Autoplay,
		Loop:                f.Loop,
		RepeatCount:         f.Repeat,
		Yoyo:                f.Yoyo,
		Category:            Category(strings.ToLower(f.Category)),
		PlaybackRate:        f.Rate,
		ResolveDependencies: f.ResolveDependencies,
		PatternParams: PatternParams{
			StaggerDelay:       time.Duration(f.StaggerDelay),
			ProximityThreshold: f.ProximityThreshold,
			Seed:               f.Seed,
		},
	}
	cfg.Direction, _ = ParseDirection(f.Direction)
	cfg.Pattern, _ = ParsePattern(f.Pattern)
	if len(f.Labels) > 0 {
		cfg.Labels = make(map[string]time.Duration, len(f.Labels))
		for name, d := range f.Labels {
			cfg.Labels[name] = time.Duration(d)
		}
	}

	stages, err := convertStages(f.Stages, h)
	if err != nil {
		return SequenceConfig{}, err
	}
	cfg.Stages = stages
	return cfg, nil
}

func convertStages(files []StageFile, h Handlers) ([]Stage, error) {
	out := make([]Stage, 0, len(files))
	for i := range files {
		st, err := convertStage(&files[i], h)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

func convertStage(sf *StageFile, h Handlers) (Stage, error) {
	st := Stage{
		ID:                sf.ID,
		Duration:          time.Duration(sf.Duration),
		Delay:             time.Duration(sf.Delay),
		Easing:            sf.Easing.easing(),
		DependsOn:         append([]string(nil), sf.DependsOn...),
		RepeatCount:       sf.Repeat,
		RepeatDelay:       time.Duration(sf.RepeatDelay),
		Yoyo:              sf.Yoyo,
		Category:          Category(strings.ToLower(sf.Category)),
		RelationshipValue: time.Duration(sf.RelationshipValue),
		Meta: StageMeta{
			Tag:          sf.Tag,
			PathPosition: sf.PathPosition,
			Group:        sf.Group,
			ZOrder:       sf.ZOrder,
		},
	}
	st.Type, _ = ParseStageType(sf.Type)
	st.Relationship, _ = parseRelationship(sf.Relationship)
	if len(sf.Position) == 2 {
		st.Meta.Position = &Vec2{X: sf.Position[0], Y: sf.Position[1]}
	}
	if len(sf.Targets) > 0 {
		st.Targets = Selector(strings.Join(sf.Targets, ", "))
	}
	if sf.From != nil {
		st.From = StyleProps(sf.From)
	}
	if sf.To != nil {
		st.To = StyleProps(sf.To)
	}
	if sf.Stagger != nil {
		st.Stagger.Each = time.Duration(sf.Stagger.Each)
		st.Stagger.Pattern, _ = ParseStaggerPattern(sf.Stagger.Pattern)
	}

	if sf.Handler != "" {
		if err := bindHandler(&st, sf.Handler, h); err != nil {
			return Stage{}, err
		}
	}

	if len(sf.Children) > 0 {
		children, err := convertStages(sf.Children, h)
		if err != nil {
			return Stage{}, err
		}
		st.Children = children
	}
	if sf.ReducedMotion != nil {
		alt, err := convertStage(sf.ReducedMotion, h)
		if err != nil {
			return Stage{}, err
		}
		st.ReducedMotion = &alt
	}
	return st, nil
}
