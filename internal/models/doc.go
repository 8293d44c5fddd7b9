// Package models defines the persisted entities of the local music library and the persistence contracts they share.
//
// The package contains two persistent entities and one read model:
//   - [Song] : A track with a numeric identifier and descriptive metadata
//   - [Playlist] : A named, ordered list of song identifiers
//   - [PlaylistExport] : A playlist with its song identifiers resolved to [Song] values
//
// Entities implement the [Model] interface providing identity and validation.
// Constructors validate required fields so an invalid entity never exists: building a [Playlist] without a name,
// or a [Song] without a title, fails with an error wrapping [ErrValidation].
//
// The [Repository] interface defines the CRUD operations implemented by the repositories package.
package models
