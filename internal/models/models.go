// package models defines the data model for the local music library
package models

import (
	"context"
	"errors"
)

// ErrValidation is wrapped by every error returned from constructors, setters and Validate.
var ErrValidation = errors.New("validation failed")

// Model defines the base interface for all persistent models in the library.
// Implementations include Song and Playlist.
type Model interface {
	ID() int64       // ID returns the unique identifier for this model (0 until assigned)
	SetID(id int64)  // SetID assigns the identifier, used by repositories when the store picks it
	Validate() error // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(ctx context.Context, model T) error                      // Create inserts a new model into the database
	Get(ctx context.Context, id int64) (T, error)                   // Get retrieves a model by its ID
	Update(ctx context.Context, model T) error                      // Update modifies an existing model in the database
	Delete(ctx context.Context, id int64) error                     // Delete removes a model from the database by its ID
	List(ctx context.Context, criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// PlaylistExport is a playlist with its song identifiers resolved against the song collection.
//
// Songs follows playlist order. Identifiers without a stored song are collected in Missing, in order of appearance.
type PlaylistExport struct {
	Playlist *Playlist `json:"playlist"`
	Songs    []*Song   `json:"songs"`
	Missing  []int64   `json:"missing,omitempty"`
}

// Duration returns the summed duration of the resolved songs in seconds.
func (e *PlaylistExport) Duration() int {
	total := 0
	for _, s := range e.Songs {
		total += s.Duration()
	}
	return total
}
