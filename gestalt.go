package cadence

import (
	"math"
	"sort"
)

// gestaltGroups assigns every stage a group index for one of the gestalt
// patterns. It reports false when a stage lacks the metadata the pattern
// needs.
func gestaltGroups(stages []Stage, pattern Pattern, params PatternParams) ([]int, bool) {
	switch pattern {
	case PatternProximity:
		return proximityGroups(stages, params.ProximityThreshold)
	case PatternSimilarity:
		return keyGroups(stages, func(s *Stage) (string, bool) { return s.Meta.Tag, s.Meta.Tag != "" })
	case PatternClosure:
		return keyGroups(stages, func(s *Stage) (string, bool) { return s.Meta.Group, s.Meta.Group != "" })
	case PatternContinuity:
		return rankGroups(stages, func(s *Stage) (float64, bool) {
			if s.Meta.PathPosition == nil {
				return 0, false
			}
			return *s.Meta.PathPosition, true
		})
	case PatternFigureGround:
		return rankGroups(stages, func(s *Stage) (float64, bool) {
			if s.Meta.ZOrder == nil {
				return 0, false
			}
			// Foreground (highest z) animates first.
			return -float64(*s.Meta.ZOrder), true
		})
	case PatternConnectedness:
		return connectedGroups(stages)
	}
	return nil, false
}

// proximityGroups clusters stages greedily: each stage joins the first
// cluster whose anchor lies within threshold, or starts a new cluster.
func proximityGroups(stages []Stage, threshold float64) ([]int, bool) {
	if threshold <= 0 {
		threshold = defaultProximityThreshold
	}
	groups := make([]int, len(stages))
	var anchors []Vec2
	for i := range stages {
		pos := stages[i].Meta.Position
		if pos == nil {
			return nil, false
		}
		groups[i] = -1
		for g, a := range anchors {
			if math.Hypot(pos.X-a.X, pos.Y-a.Y) <= threshold {
				groups[i] = g
				break
			}
		}
		if groups[i] < 0 {
			groups[i] = len(anchors)
			anchors = append(anchors, *pos)
		}
	}
	return groups, true
}

// keyGroups numbers distinct keys in order of first appearance.
func keyGroups(stages []Stage, key func(*Stage) (string, bool)) ([]int, bool) {
	groups := make([]int, len(stages))
	index := make(map[string]int)
	for i := range stages {
		k, ok := key(&stages[i])
		if !ok {
			return nil, false
		}
		g, seen := index[k]
		if !seen {
			g = len(index)
			index[k] = g
		}
		groups[i] = g
	}
	return groups, true
}

// rankGroups orders stages by an ascending rank; equal ranks share a group.
func rankGroups(stages []Stage, rank func(*Stage) (float64, bool)) ([]int, bool) {
	ranks := make([]float64, len(stages))
	for i := range stages {
		r, ok := rank(&stages[i])
		if !ok {
			return nil, false
		}
		ranks[i] = r
	}
	distinct := append([]float64(nil), ranks...)
	sort.Float64s(distinct)
	groups := make([]int, len(stages))
	for i, r := range ranks {
		g := 0
		for j := 1; j < len(distinct) && distinct[j] <= r; j++ {
			if distinct[j] != distinct[j-1] {
				g++
			}
		}
		groups[i] = g
	}
	return groups, true
}

// connectedGroups unions stages sharing a Meta.Group or linked through
// DependsOn, then numbers the components in order of first appearance. At
// least one stage must carry a group or a dependency.
func connectedGroups(stages []Stage) ([]int, bool) {
	parent := make([]int, len(stages))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			if ra < rb {
				parent[rb] = ra
			} else {
				parent[ra] = rb
			}
		}
	}

	byID := make(map[string]int, len(stages))
	byGroup := make(map[string]int)
	linked := false
	for i := range stages {
		byID[stages[i].ID] = i
		if g := stages[i].Meta.Group; g != "" {
			linked = true
			if first, ok := byGroup[g]; ok {
				union(first, i)
			} else {
				byGroup[g] = i
			}
		}
	}
	for i := range stages {
		for _, dep := range stages[i].DependsOn {
			if j, ok := byID[dep]; ok {
				linked = true
				union(i, j)
			}
		}
	}
	if !linked {
		return nil, false
	}

	groups := make([]int, len(stages))
	index := make(map[int]int)
	for i := range stages {
		root := find(i)
		g, ok := index[root]
		if !ok {
			g = len(index)
			index[root] = g
		}
		groups[i] = g
	}
	return groups, true
}
