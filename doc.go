// Package cadence orchestrates multi-stage animations for [Ebitengine].
//
// A [Sequence] places named [Stage] values on one timeline and plays them
// back from frame callbacks. Stages either tween style properties on their
// targets, stagger a tween across several targets, call a function every
// frame, fire a one-shot event, or group child stages.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	scene := cadence.NewScene()
//	box := cadence.NewNode("box", "panel")
//	box.Width, box.Height = 80, 40
//	scene.Root().AddChild(box)
//
//	scene.NewSequence(cadence.SequenceConfig{
//		Autoplay: true,
//		Stages: []cadence.Stage{{
//			ID:       "fade-in",
//			Duration: 400 * time.Millisecond,
//			Easing:   cadence.EaseNamed("outCubic"),
//			Targets:  cadence.Selector(".panel"),
//			From:     cadence.StyleProps{"opacity": 0},
//			To:       cadence.StyleProps{"opacity": 1},
//		}},
//	})
//	cadence.Run(scene, cadence.RunConfig{Title: "Demo"})
//
// For full control, implement [ebiten.Game] yourself and call
// [Scene.Update] and [Scene.Draw] directly.
//
// # Timelines
//
// [BuildTimeline] turns stage declarations into absolute timings. A
// [Pattern] rewrites top-level delays first: sequential, staggered, cascade,
// wave, random, custom, and the gestalt patterns that group stages by
// position, tag, path, group or z-order. Groups are flattened into the
// timeline with "group/child" ids.
//
// # Playback
//
// Sequences read time from a [Clock] and schedule work through a
// [FrameScheduler]. [ManualFrames] implements both and is stepped by
// [Scene.Update]; tests step it directly. Every control call (Play, Pause,
// Seek, Reverse, SetPlaybackRate, AddStage, ...) must happen on the
// goroutine that steps the frames.
//
// # Reduced motion
//
// A [MotionPreference] decides whether stages run their declared motion, a
// declared [Stage.ReducedMotion] alternative, or jump straight to their end
// state when their [Category] is disallowed.
//
// # Files
//
// [LoadSequenceFile] reads sequences from YAML. Callback and event stages
// bind to Go functions by name through [Handlers]. The cadence command
// (cmd/cadence) inspects and simulates such files, and cadence/ecs forwards
// lifecycle events to a [Donburi] world.
//
// [Ebitengine]: https://ebitengine.org
// [Donburi]: https://github.com/yohamta/donburi
package cadence
