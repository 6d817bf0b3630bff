// Package replay stores envelope nonces so that a signed envelope is
// accepted at most once while its timestamp is fresh.
//
// Three backends are provided:
//
//   - MemoryStore: a bounded in-process map, swept lazily. Suitable for a
//     single gateway instance.
//   - RedisStore: SET NX with a TTL. Shared between instances.
//   - SQLiteStore: a local table keyed by nonce. Survives restarts.
//
// Every store satisfies envelope.NonceGuard. Stores that implement Pruner
// can be swept on a cron schedule by a Sweeper.
package replay
