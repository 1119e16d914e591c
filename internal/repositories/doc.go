// Package repositories implements SQLite persistence for sessions and exclusion sets.
//
// Key Implementations:
//   - [SessionRepository] : OAuth credentials per local profile name
//   - [PersistentSession] : services.Session backed by a [SessionRepository] row
//   - [HiddenRepository] : overlay.Store whose size cap is enforced inside a single INSERT
//
// SessionRepository implements models.Repository for its record type. Ids are UUIDs.
package repositories
