// Package models defines the Spotify entities the gateway returns and the records it persists.
//
// The package contains two categories of types:
//
// 1. Upstream snapshots decoded from the Spotify Web API
//   - [Track], [Artist], [Album] : catalogue items
//   - [Show], [Episode] : podcast items
//   - [Playlist], [Profile] : library and account data
//   - [Page] : one page of a paginated listing with the provider's total
//
// 2. Persistent records stored in SQLite
//   - [SessionRecord] : OAuth credentials and the resolved user id for a local profile
//
// Persistent records implement [Model]; [Repository] describes the CRUD surface over them.
//
// [TimeRange] names the three listening windows Spotify computes top items for.
package models
