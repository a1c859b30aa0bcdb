package cadence

// MotionPreference reports the environment's motion preferences.
type MotionPreference interface {
	PrefersReducedMotion() bool
	IsAnimationAllowed(category Category) bool
}

// StaticMotionPreference is a fixed MotionPreference.
type StaticMotionPreference struct {
	ReducedMotion bool
	Disallowed    []Category
}

// PrefersReducedMotion implements MotionPreference.
func (p StaticMotionPreference) PrefersReducedMotion() bool { return p.ReducedMotion }

// IsAnimationAllowed implements MotionPreference.
func (p StaticMotionPreference) IsAnimationAllowed(c Category) bool {
	for _, d := range p.Disallowed {
		if d == c {
			return false
		}
	}
	return true
}

// FullMotion allows every animation.
var FullMotion MotionPreference = StaticMotionPreference{}

// substituteReducedMotion returns the effective stage list and the ids that
// were substituted. A stage is substituted when reduced motion is preferred
// and it declares an alternative, or when its category is disallowed. A
// disallowed stage without an alternative collapses to zero duration so it
// jumps straight to its end state. Group children are processed recursively.
func substituteReducedMotion(stages []Stage, pref MotionPreference, fallback Category) ([]Stage, map[string]bool) {
	reduced := make(map[string]bool)
	if pref == nil {
		return stages, reduced
	}
	return substituteInto(stages, pref, fallback, "", reduced), reduced
}

func substituteInto(stages []Stage, pref MotionPreference, fallback Category, prefix string, reduced map[string]bool) []Stage {
	out := make([]Stage, len(stages))
	for i, s := range stages {
		category := s.Category
		if category == "" {
			category = fallback
		}
		allowed := category == "" || pref.IsAnimationAllowed(category)

		switch {
		case s.ReducedMotion != nil && (pref.PrefersReducedMotion() || !allowed):
			s = mergeAlternative(s, *s.ReducedMotion)
			reduced[prefix+s.ID] = true
		case !allowed:
			s.Duration = 0
			s.RepeatCount = 0
			reduced[prefix+s.ID] = true
		}

		if len(s.Children) > 0 {
			s.Children = substituteInto(s.Children, pref, category, prefix+s.ID+"/", reduced)
		}
		out[i] = s
	}
	return out
}

// mergeAlternative substitutes alt for orig wholesale, keeping the original
// id and inheriting payload fields alt leaves unset.
func mergeAlternative(orig, alt Stage) Stage {
	out := alt
	out.ID = orig.ID
	out.ReducedMotion = nil
	if out.Type == StageAuto {
		out.Type = orig.kind()
	}
	if out.Easing.IsZero() {
		out.Easing = orig.Easing
	}
	if out.DependsOn == nil {
		out.DependsOn = orig.DependsOn
	}
	if out.Category == "" {
		out.Category = orig.Category
	}
	if out.Targets == nil {
		out.Targets = orig.Targets
	}
	if out.From == nil {
		out.From = orig.From
	}
	if out.To == nil {
		out.To = orig.To
	}
	if out.Stagger == (StaggerConfig{}) {
		out.Stagger = orig.Stagger
	}
	if out.Callback == nil {
		out.Callback = orig.Callback
	}
	if out.Event == nil {
		out.Event = orig.Event
	}
	if out.Children == nil {
		out.Children = orig.Children
		out.Relationship = orig.Relationship
		out.RelationshipValue = orig.RelationshipValue
	}
	if out.Meta == (StageMeta{}) {
		out.Meta = orig.Meta
	}
	if out.OnStart == nil {
		out.OnStart = orig.OnStart
	}
	if out.OnComplete == nil {
		out.OnComplete = orig.OnComplete
	}
	return out
}
