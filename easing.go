package cadence

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/tanema/gween/ease"
)

// EasingFunc maps linear progress in [0, 1] to eased progress. Overshooting
// curves (back, elastic, spring) may leave [0, 1] in between.
type EasingFunc func(p float64) float64

// Linear is the identity easing and the fallback for every resolution failure.
func Linear(p float64) float64 { return p }

// Easing is an easing definition. At most one field is expected to be set;
// when several are, Func wins over Tween, Tween over Spring, Spring over Name.
type Easing struct {
	Name   string
	Func   EasingFunc
	Tween  ease.TweenFunc
	Spring *SpringParams
}

// EaseNamed returns a definition resolved through the named easing table.
func EaseNamed(name string) Easing { return Easing{Name: name} }

// EaseFunc wraps a bare easing function.
func EaseFunc(fn EasingFunc) Easing { return Easing{Func: fn} }

// EaseTween wraps a gween easing function.
func EaseTween(fn ease.TweenFunc) Easing { return Easing{Tween: fn} }

// EaseSpring returns a spring-curve definition.
func EaseSpring(p SpringParams) Easing { return Easing{Spring: &p} }

// IsZero reports whether no easing was declared.
func (e Easing) IsZero() bool {
	return e.Name == "" && e.Func == nil && e.Tween == nil && e.Spring == nil
}

// namedEasings is keyed by normalized name (lowercase, no separators).
var namedEasings = map[string]ease.TweenFunc{
	"linear": ease.Linear,

	"inquad": ease.InQuad, "outquad": ease.OutQuad, "inoutquad": ease.InOutQuad, "outinquad": ease.OutInQuad,
	"incubic": ease.InCubic, "outcubic": ease.OutCubic, "inoutcubic": ease.InOutCubic, "outincubic": ease.OutInCubic,
	"inquart": ease.InQuart, "outquart": ease.OutQuart, "inoutquart": ease.InOutQuart, "outinquart": ease.OutInQuart,
	"inquint": ease.InQuint, "outquint": ease.OutQuint, "inoutquint": ease.InOutQuint, "outinquint": ease.OutInQuint,
	"insine": ease.InSine, "outsine": ease.OutSine, "inoutsine": ease.InOutSine, "outinsine": ease.OutInSine,
	"inexpo": ease.InExpo, "outexpo": ease.OutExpo, "inoutexpo": ease.InOutExpo, "outinexpo": ease.OutInExpo,
	"incirc": ease.InCirc, "outcirc": ease.OutCirc, "inoutcirc": ease.InOutCirc, "outincirc": ease.OutInCirc,
	"inback": ease.InBack, "outback": ease.OutBack, "inoutback": ease.InOutBack, "outinback": ease.OutInBack,
	"inbounce": ease.InBounce, "outbounce": ease.OutBounce, "inoutbounce": ease.InOutBounce, "outinbounce": ease.OutInBounce,
	"inelastic": ease.InElastic, "outelastic": ease.OutElastic, "inoutelastic": ease.InOutElastic, "outinelastic": ease.OutInElastic,

	// CSS keywords
	"ease":      ease.InOutSine,
	"easein":    ease.InCubic,
	"easeout":   ease.OutCubic,
	"easeinout": ease.InOutCubic,
}

func normalizeEasingName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(name)
}

// LookupEasing returns the named easing, accepting "outCubic", "out-cubic",
// "easeOutCubic" and the CSS keywords.
func LookupEasing(name string) (EasingFunc, bool) {
	key := normalizeEasingName(name)
	if fn, ok := namedEasings[key]; ok {
		return fromTween(fn), true
	}
	if trimmed := strings.TrimPrefix(key, "ease"); trimmed != key && trimmed != "" {
		if fn, ok := namedEasings[trimmed]; ok {
			return fromTween(fn), true
		}
	}
	return nil, false
}

// EasingNames lists the normalized keys of the named easing table.
func EasingNames() []string {
	names := make([]string, 0, len(namedEasings))
	for k := range namedEasings {
		names = append(names, k)
	}
	return names
}

// fromTween adapts a gween easing (t, begin, change, duration) to unit
// progress. The endpoints are pinned: some gween curves (the expo family)
// stop just short of 1.
func fromTween(fn ease.TweenFunc) EasingFunc {
	return func(p float64) float64 {
		switch {
		case p <= 0:
			return 0
		case p >= 1:
			return 1
		}
		return float64(fn(float32(p), 0, 1, 1))
	}
}

// ResolveEasing turns a definition into a callable easing. It never fails:
// unknown names, broken spring parameters and empty definitions resolve to
// Linear, and a warning is logged for the first two.
func ResolveEasing(def Easing, log zerolog.Logger) EasingFunc {
	switch {
	case def.Func != nil:
		return guardEasing(def.Func, log)
	case def.Tween != nil:
		return guardEasing(fromTween(def.Tween), log)
	case def.Spring != nil:
		curve, err := NewSpringCurve(*def.Spring)
		if err != nil {
			log.Warn().Err(err).Msg("spring easing unavailable, using linear")
			return Linear
		}
		return curve
	case def.Name != "":
		fn, ok := LookupEasing(def.Name)
		if !ok {
			log.Warn().Str("easing", def.Name).Msg("unknown easing, using linear")
			return Linear
		}
		return fn
	}
	return Linear
}

// guardEasing recovers panics from user-supplied curves and falls back to the
// linear value for that call.
func guardEasing(fn EasingFunc, log zerolog.Logger) EasingFunc {
	warned := false
	return func(p float64) (out float64) {
		defer func() {
			if r := recover(); r != nil {
				if !warned {
					warned = true
					log.Warn().Interface("panic", r).Msg("easing function panicked, using linear")
				}
				out = p
			}
		}()
		return fn(p)
	}
}
