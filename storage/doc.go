// Package storage implements the StorageBackend capability set a
// bandit experiment needs: arm state CRUD, parameter CRUD, max-reward
// tracking, the choose counter, and atomic reward application.
//
// # Overview
//
// Every operation is expressed against the Backend interface, so the
// bandit package never knows which concrete store it is talking to.
// Two implementations satisfy it:
//
//	┌──────────────────────────────┐
//	│         bandit.Engine         │
//	└──────────────────────────────┘
//	               │
//	               ▼
//	┌──────────────────────────────┐
//	│      storage.Backend          │
//	└──────────────────────────────┘
//	       │                │
//	       ▼                ▼
//	┌─────────────┐  ┌──────────────┐
//	│ MemoryBackend│  │ RedisBackend │
//	└─────────────┘  └──────────────┘
//
// # Atomicity
//
// RecordReward and BulkReward must apply spec.md §4.2's read-max /
// write-mean arithmetic as a single transaction — no caller may ever
// observe a half-applied update. MemoryBackend gets this from one
// sync.Mutex per experiment; RedisBackend gets it from a single
// EVAL of a Lua script per operation (scripts.go). The two are
// required to compute byte-for-byte the same arithmetic: property P2
// in spec.md §8 asserts they choose identically given the same seeded
// entropy source and problem trace.
//
// # Key layout
//
// RedisBackend's keys live under bandit:experiment:{name}:* (see
// keys.go and spec.md §4.4). Experiment and arm names may not contain
// ':'. Engine.Init and Engine.CreateArm reject such a name with
// ValidateName before touching any state, and the request schemas
// reject it for Choose, Reward and BulkReward. SoftDeleteArm and
// HardDeleteArm do not check the names they are given.
//
// # Soft vs. hard delete
//
// A soft-deleted arm keeps its accumulated state (n, mean-reward) but
// is excluded from GetArmStates/GetArmNames and from Choose. CreateArm
// on a soft-deleted name clears the flag and the prior state reappears
// unchanged. A hard-deleted arm's state is gone for good; recreating
// it starts over at the default state.
package storage
