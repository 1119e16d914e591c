// Package cache memoises upstream responses per user.
//
// A [Gateway] wraps a [Store] and builds keys of the form
//
//	spotify_<userID>_<part>_<part>...
//
// so that every entry belonging to a user can be dropped with a single prefix delete.
// [Fetch] is the read-through entry point: a hit returns the decoded value without
// calling the producer, a miss calls it once and stores the JSON encoding for the TTL.
// Producer errors are never cached and store failures degrade to a miss.
//
// Three stores are provided:
//   - [MemoryStore] : process-local map with lazy expiry
//   - [BoltStore] : single-file bbolt database that survives restarts
//   - [RedisStore] : shared Redis instance, usable by several processes
package cache
