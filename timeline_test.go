package cadence

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"
)

const ms = time.Millisecond

func assertTiming(t *testing.T, tl Timeline, id string, start, end time.Duration) {
	t.Helper()
	tm, ok := tl.Timing(id)
	if !ok {
		t.Fatalf("no timing for %q (order %v)", id, tl.Order)
	}
	if tm.StartTime != start || tm.EndTime != end {
		t.Errorf("%s = [%v, %v], want [%v, %v]", id, tm.StartTime, tm.EndTime, start, end)
	}
}

func delaysOf(tl Timeline) []time.Duration {
	out := make([]time.Duration, len(tl.Timings))
	for i, tm := range tl.Timings {
		out[i] = tm.StartTime
	}
	return out
}

func assertDelays(t *testing.T, got []time.Duration, want ...time.Duration) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("delays = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("delays = %v, want %v", got, want)
			return
		}
	}
}

func assertDelaysNear(t *testing.T, got []time.Duration, want ...time.Duration) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("delays = %v, want %v", got, want)
	}
	for i := range want {
		diff := got[i] - want[i]
		if diff < -time.Microsecond || diff > time.Microsecond {
			t.Errorf("delays = %v, want ≈ %v", got, want)
			return
		}
	}
}

func TestBuildTimelineSequential(t *testing.T) {
	tl, err := BuildTimeline([]Stage{
		{ID: "a", Delay: 0, Duration: 200 * ms},
		{ID: "b", Delay: 200 * ms, Duration: 200 * ms},
	}, BuildOptions{Pattern: PatternSequential})
	if err != nil {
		t.Fatalf("BuildTimeline: %v", err)
	}
	assertTiming(t, tl, "a", 0, 200*ms)
	assertTiming(t, tl, "b", 200*ms, 400*ms)
	if tl.TotalDuration != 400*ms {
		t.Errorf("TotalDuration = %v, want 400ms", tl.TotalDuration)
	}
}

func TestBuildTimelineStaggeredIgnoresDuration(t *testing.T) {
	tl, err := BuildTimeline([]Stage{
		{ID: "a", Duration: 500 * ms},
		{ID: "b", Duration: 10 * ms},
		{ID: "c", Duration: 1000 * ms},
	}, BuildOptions{Pattern: PatternStaggered, Params: PatternParams{StaggerDelay: 100 * ms}})
	if err != nil {
		t.Fatalf("BuildTimeline: %v", err)
	}
	assertDelays(t, delaysOf(tl), 0, 100*ms, 200*ms)
	if tl.TotalDuration != 1200*ms {
		t.Errorf("TotalDuration = %v, want 1.2s", tl.TotalDuration)
	}
}

func TestBuildTimelineNoPatternKeepsDelays(t *testing.T) {
	tl, err := BuildTimeline([]Stage{
		{ID: "a", Delay: 50 * ms, Duration: 100 * ms},
		{ID: "b", Delay: 10 * ms, Duration: 20 * ms},
	}, BuildOptions{})
	if err != nil {
		t.Fatalf("BuildTimeline: %v", err)
	}
	assertTiming(t, tl, "a", 50*ms, 150*ms)
	assertTiming(t, tl, "b", 10*ms, 30*ms)
}

func TestBuildTimelineParallel(t *testing.T) {
	tl, err := BuildTimeline([]Stage{
		{ID: "a", Delay: 50 * ms, Duration: 100 * ms},
		{ID: "b", Delay: 70 * ms, Duration: 300 * ms},
	}, BuildOptions{Pattern: PatternParallel})
	if err != nil {
		t.Fatalf("BuildTimeline: %v", err)
	}
	assertDelays(t, delaysOf(tl), 0, 0)
	if tl.TotalDuration != 300*ms {
		t.Errorf("TotalDuration = %v, want 300ms", tl.TotalDuration)
	}
}

func TestBuildTimelineCascade(t *testing.T) {
	tl, err := BuildTimeline([]Stage{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		BuildOptions{Pattern: PatternCascade, Params: PatternParams{StaggerDelay: 100 * ms}})
	if err != nil {
		t.Fatalf("BuildTimeline: %v", err)
	}
	assertDelaysNear(t, delaysOf(tl), 100*ms, 120*ms, 144*ms)
}

func TestBuildTimelineWave(t *testing.T) {
	tl, err := BuildTimeline([]Stage{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}, {ID: "e"}},
		BuildOptions{Pattern: PatternWave, Params: PatternParams{StaggerDelay: 100 * ms}})
	if err != nil {
		t.Fatalf("BuildTimeline: %v", err)
	}
	// Phases 0, π/2, π, 3π/2, 2π over n=5 stages.
	assertDelaysNear(t, delaysOf(tl), 250*ms, 500*ms, 250*ms, 0, 250*ms)
}

func TestBuildTimelineRandomBounded(t *testing.T) {
	stages := []Stage{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	tl, err := BuildTimeline(stages, BuildOptions{
		Pattern: PatternRandom,
		Params:  PatternParams{StaggerDelay: 100 * ms, Rand: rand.New(rand.NewPCG(1, 2))},
	})
	if err != nil {
		t.Fatalf("BuildTimeline: %v", err)
	}
	for _, d := range delaysOf(tl) {
		if d < 0 || d >= 400*ms {
			t.Errorf("random delay %v outside [0, 400ms)", d)
		}
	}

	again, _ := BuildTimeline(stages, BuildOptions{
		Pattern: PatternRandom,
		Params:  PatternParams{StaggerDelay: 100 * ms, Rand: rand.New(rand.NewPCG(1, 2))},
	})
	assertDelays(t, delaysOf(again), delaysOf(tl)...)
}

func TestBuildTimelineCustomPattern(t *testing.T) {
	tl, err := BuildTimeline([]Stage{{ID: "a"}, {ID: "b"}}, BuildOptions{
		Pattern: PatternCustom,
		Params: PatternParams{Custom: func(i int, _ Stage, all []Stage) time.Duration {
			return time.Duration(len(all)-i) * 10 * ms
		}},
	})
	if err != nil {
		t.Fatalf("BuildTimeline: %v", err)
	}
	assertDelays(t, delaysOf(tl), 20*ms, 10*ms)
}

func TestBuildTimelineDurationOverride(t *testing.T) {
	tl, err := BuildTimeline([]Stage{{ID: "a", Duration: 100 * ms}}, BuildOptions{Duration: 50 * ms})
	if err != nil {
		t.Fatalf("BuildTimeline: %v", err)
	}
	if tl.TotalDuration != 50*ms {
		t.Errorf("TotalDuration = %v, want 50ms", tl.TotalDuration)
	}
}

func TestBuildTimelineRepeatSpan(t *testing.T) {
	tl, err := BuildTimeline([]Stage{
		{ID: "a", Duration: 100 * ms, RepeatCount: 2, RepeatDelay: 50 * ms},
	}, BuildOptions{})
	if err != nil {
		t.Fatalf("BuildTimeline: %v", err)
	}
	// 3 iterations of 100ms with two 50ms gaps.
	assertTiming(t, tl, "a", 0, 400*ms)
}

func TestBuildTimelineErrors(t *testing.T) {
	tests := []struct {
		name   string
		stages []Stage
		want   error
	}{
		{"missing id", []Stage{{Duration: ms}}, ErrMissingStageID},
		{"duplicate", []Stage{{ID: "a"}, {ID: "a"}}, ErrDuplicateStage},
		{"negative duration", []Stage{{ID: "a", Duration: -ms}}, ErrNegativeDuration},
		{"negative delay", []Stage{{ID: "a", Delay: -ms}}, ErrNegativeDuration},
		{"bad repeat", []Stage{{ID: "a", RepeatCount: -2}}, ErrInvalidRepeat},
		{"duplicate child", []Stage{{ID: "g", Children: []Stage{{ID: "x"}, {ID: "x"}}}}, ErrDuplicateStage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildTimeline(tt.stages, BuildOptions{})
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBuildTimelineDoesNotMutateInput(t *testing.T) {
	stages := []Stage{{ID: "a", Duration: 100 * ms}, {ID: "b", Duration: 100 * ms}}
	if _, err := BuildTimeline(stages, BuildOptions{Pattern: PatternSequential}); err != nil {
		t.Fatalf("BuildTimeline: %v", err)
	}
	if stages[1].Delay != 0 {
		t.Errorf("input stage delay mutated to %v", stages[1].Delay)
	}
}

// --- Groups ---

func TestBuildTimelineGroupSequential(t *testing.T) {
	tl, err := BuildTimeline([]Stage{
		{ID: "intro", Duration: 100 * ms},
		{
			ID:           "cards",
			Relationship: GroupSequential,
			Children: []Stage{
				{ID: "one", Duration: 50 * ms},
				{ID: "two", Duration: 70 * ms},
			},
		},
	}, BuildOptions{Pattern: PatternSequential})
	if err != nil {
		t.Fatalf("BuildTimeline: %v", err)
	}

	wantOrder := []string{"intro", "cards", "cards/one", "cards/two"}
	if len(tl.Order) != len(wantOrder) {
		t.Fatalf("Order = %v, want %v", tl.Order, wantOrder)
	}
	for i := range wantOrder {
		if tl.Order[i] != wantOrder[i] {
			t.Fatalf("Order = %v, want %v", tl.Order, wantOrder)
		}
	}
	assertTiming(t, tl, "cards", 100*ms, 220*ms)
	assertTiming(t, tl, "cards/one", 100*ms, 150*ms)
	assertTiming(t, tl, "cards/two", 150*ms, 220*ms)
	if tl.Stages[1].Type != StageGroup {
		t.Errorf("group type = %v, want group", tl.Stages[1].Type)
	}
	if tl.TotalDuration != 220*ms {
		t.Errorf("TotalDuration = %v, want 220ms", tl.TotalDuration)
	}
}

func TestBuildTimelineGroupStaggeredAndParallel(t *testing.T) {
	tl, err := BuildTimeline([]Stage{
		{
			ID:                "s",
			Relationship:      GroupStaggered,
			RelationshipValue: 30 * ms,
			Children:          []Stage{{ID: "a", Duration: 10 * ms}, {ID: "b", Duration: 10 * ms}, {ID: "c", Duration: 10 * ms}},
		},
		{
			ID:       "p",
			Delay:    500 * ms,
			Children: []Stage{{ID: "a", Duration: 40 * ms}, {ID: "b", Delay: 5 * ms, Duration: 10 * ms}},
		},
	}, BuildOptions{})
	if err != nil {
		t.Fatalf("BuildTimeline: %v", err)
	}
	assertTiming(t, tl, "s/a", 0, 10*ms)
	assertTiming(t, tl, "s/b", 30*ms, 40*ms)
	assertTiming(t, tl, "s/c", 60*ms, 70*ms)
	assertTiming(t, tl, "s", 0, 70*ms)
	assertTiming(t, tl, "p/a", 500*ms, 540*ms)
	assertTiming(t, tl, "p/b", 505*ms, 515*ms)
}

func TestBuildTimelineNestedGroups(t *testing.T) {
	tl, err := BuildTimeline([]Stage{
		{ID: "outer", Relationship: GroupSequential, Children: []Stage{
			{ID: "inner", Children: []Stage{{ID: "x", Duration: 20 * ms}}},
			{ID: "y", Duration: 10 * ms},
		}},
	}, BuildOptions{})
	if err != nil {
		t.Fatalf("BuildTimeline: %v", err)
	}
	assertTiming(t, tl, "outer/inner/x", 0, 20*ms)
	assertTiming(t, tl, "outer/y", 20*ms, 30*ms)
}

// --- Dependencies ---

func TestBuildTimelineDependenciesInformationalByDefault(t *testing.T) {
	tl, err := BuildTimeline([]Stage{
		{ID: "a", Duration: 100 * ms},
		{ID: "b", Duration: 100 * ms, DependsOn: []string{"a"}},
	}, BuildOptions{})
	if err != nil {
		t.Fatalf("BuildTimeline: %v", err)
	}
	assertTiming(t, tl, "b", 0, 100*ms)
}

func TestBuildTimelineResolveDependencies(t *testing.T) {
	tl, err := BuildTimeline([]Stage{
		{ID: "c", Duration: 50 * ms, DependsOn: []string{"a", "b"}},
		{ID: "a", Duration: 100 * ms},
		{ID: "b", Delay: 20 * ms, Duration: 200 * ms, DependsOn: []string{"a"}},
		{ID: "free", Duration: 10 * ms},
	}, BuildOptions{ResolveDependencies: true})
	if err != nil {
		t.Fatalf("BuildTimeline: %v", err)
	}
	assertTiming(t, tl, "a", 0, 100*ms)
	assertTiming(t, tl, "b", 100*ms, 300*ms)
	assertTiming(t, tl, "c", 300*ms, 350*ms)
	assertTiming(t, tl, "free", 0, 10*ms)
	if tl.TotalDuration != 350*ms {
		t.Errorf("TotalDuration = %v, want 350ms", tl.TotalDuration)
	}
}

func TestBuildTimelineDependencyShiftsGroupChildren(t *testing.T) {
	tl, err := BuildTimeline([]Stage{
		{ID: "a", Duration: 100 * ms},
		{ID: "g", DependsOn: []string{"a"}, Relationship: GroupSequential, Children: []Stage{
			{ID: "x", Duration: 10 * ms},
			{ID: "y", Duration: 10 * ms, DependsOn: []string{"x"}},
		}},
	}, BuildOptions{ResolveDependencies: true})
	if err != nil {
		t.Fatalf("BuildTimeline: %v", err)
	}
	assertTiming(t, tl, "g", 100*ms, 120*ms)
	assertTiming(t, tl, "g/x", 100*ms, 110*ms)
	assertTiming(t, tl, "g/y", 110*ms, 120*ms)
}

func TestBuildTimelineDependencyCycle(t *testing.T) {
	_, err := BuildTimeline([]Stage{
		{ID: "a", DependsOn: []string{"b"}},
		{ID: "b", DependsOn: []string{"a"}},
	}, BuildOptions{ResolveDependencies: true})
	if !errors.Is(err, ErrDependencyCycle) {
		t.Errorf("err = %v, want ErrDependencyCycle", err)
	}
}

func TestBuildTimelineUnknownDependencyIgnored(t *testing.T) {
	tl, err := BuildTimeline([]Stage{
		{ID: "a", Duration: 10 * ms, DependsOn: []string{"ghost"}},
	}, BuildOptions{ResolveDependencies: true})
	if err != nil {
		t.Fatalf("BuildTimeline: %v", err)
	}
	assertTiming(t, tl, "a", 0, 10*ms)
}

// --- Gestalt patterns ---

func pos(x, y float64) *Vec2 { return &Vec2{X: x, Y: y} }

func TestGestaltProximity(t *testing.T) {
	tl, err := BuildTimeline([]Stage{
		{ID: "a", Meta: StageMeta{Position: pos(0, 0)}},
		{ID: "b", Meta: StageMeta{Position: pos(500, 0)}},
		{ID: "c", Meta: StageMeta{Position: pos(30, 40)}},
	}, BuildOptions{Pattern: PatternProximity, Params: PatternParams{StaggerDelay: 100 * ms}})
	if err != nil {
		t.Fatalf("BuildTimeline: %v", err)
	}
	assertDelays(t, delaysOf(tl), 0, 100*ms, 0)
}

func TestGestaltSimilarity(t *testing.T) {
	tl, err := BuildTimeline([]Stage{
		{ID: "a", Meta: StageMeta{Tag: "icon"}},
		{ID: "b", Meta: StageMeta{Tag: "label"}},
		{ID: "c", Meta: StageMeta{Tag: "icon"}},
	}, BuildOptions{Pattern: PatternSimilarity, Params: PatternParams{StaggerDelay: 50 * ms}})
	if err != nil {
		t.Fatalf("BuildTimeline: %v", err)
	}
	assertDelays(t, delaysOf(tl), 0, 50*ms, 0)
}

func TestGestaltFigureGround(t *testing.T) {
	z := func(v int) *int { return &v }
	tl, err := BuildTimeline([]Stage{
		{ID: "bg", Meta: StageMeta{ZOrder: z(0)}},
		{ID: "fg", Meta: StageMeta{ZOrder: z(10)}},
		{ID: "mid", Meta: StageMeta{ZOrder: z(5)}},
	}, BuildOptions{Pattern: PatternFigureGround, Params: PatternParams{StaggerDelay: 100 * ms}})
	if err != nil {
		t.Fatalf("BuildTimeline: %v", err)
	}
	assertDelays(t, delaysOf(tl), 200*ms, 0, 100*ms)
}

func TestGestaltContinuity(t *testing.T) {
	p := func(v float64) *float64 { return &v }
	tl, err := BuildTimeline([]Stage{
		{ID: "a", Meta: StageMeta{PathPosition: p(0.9)}},
		{ID: "b", Meta: StageMeta{PathPosition: p(0.1)}},
		{ID: "c", Meta: StageMeta{PathPosition: p(0.1)}},
	}, BuildOptions{Pattern: PatternContinuity, Params: PatternParams{StaggerDelay: 100 * ms}})
	if err != nil {
		t.Fatalf("BuildTimeline: %v", err)
	}
	assertDelays(t, delaysOf(tl), 100*ms, 0, 0)
}

func TestGestaltConnectedness(t *testing.T) {
	tl, err := BuildTimeline([]Stage{
		{ID: "a"},
		{ID: "b", DependsOn: []string{"a"}},
		{ID: "c", Meta: StageMeta{Group: "x"}},
		{ID: "d", Meta: StageMeta{Group: "x"}},
		{ID: "e"},
	}, BuildOptions{Pattern: PatternConnectedness, Params: PatternParams{StaggerDelay: 100 * ms}})
	if err != nil {
		t.Fatalf("BuildTimeline: %v", err)
	}
	assertDelays(t, delaysOf(tl), 0, 0, 100*ms, 100*ms, 200*ms)
}

func TestGestaltMissingMetadataFallsBackToStaggered(t *testing.T) {
	tl, err := BuildTimeline([]Stage{
		{ID: "a", Meta: StageMeta{Tag: "x"}},
		{ID: "b"},
		{ID: "c", Meta: StageMeta{Tag: "x"}},
	}, BuildOptions{Pattern: PatternSimilarity, Params: PatternParams{StaggerDelay: 100 * ms}})
	if err != nil {
		t.Fatalf("BuildTimeline: %v", err)
	}
	assertDelays(t, delaysOf(tl), 0, 100*ms, 200*ms)
}

func TestParsePattern(t *testing.T) {
	tests := map[string]Pattern{
		"":              PatternNone,
		"sequential":    PatternSequential,
		"Staggered":     PatternStaggered,
		"stagger":       PatternStaggered,
		"figure-ground": PatternFigureGround,
		"figureGround":  PatternFigureGround,
	}
	for in, want := range tests {
		got, ok := ParsePattern(in)
		if !ok || got != want {
			t.Errorf("ParsePattern(%q) = %v, %v; want %v", in, got, ok, want)
		}
	}
	if _, ok := ParsePattern("spiral"); ok {
		t.Error(`ParsePattern("spiral") should fail`)
	}
}
