// Package ecs provides ECS adapters for cadence's lifecycle events.
//
// The primary adapter is [NewDonburiStore], which bridges sequence lifecycle
// events (start, update, loop, stage start/complete, complete, cancel) into a
// [Donburi] world as typed events. Subscribe to [LifecycleEventType] in your
// ECS systems to receive them.
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	scene.SetEventStore(store)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
