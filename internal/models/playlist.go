package models

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

var _ Model = (*Playlist)(nil)

// Playlist is a named, ordered list of song identifiers.
//
// The song list is never nil and is always copied in and out, so callers can't mutate it behind the entity.
type Playlist struct {
	id    int64
	name  string
	songs []int64
}

// NewPlaylist creates a [Playlist]. An id of 0 lets the store assign one on save.
//
// A blank name or a negative id is rejected.
func NewPlaylist(id int64, name string, songs ...int64) (*Playlist, error) {
	p := &Playlist{id: id, name: strings.TrimSpace(name), songs: cloneIDs(songs)}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Playlist) ID() int64      { return p.id }
func (p *Playlist) SetID(id int64) { p.id = id }
func (p *Playlist) Name() string   { return p.name }
func (p *Playlist) Len() int       { return len(p.songs) }

// Songs returns a copy of the ordered song identifiers.
func (p *Playlist) Songs() []int64 { return cloneIDs(p.songs) }

// SetName renames the playlist.
func (p *Playlist) SetName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: playlist name is required", ErrValidation)
	}
	p.name = name
	return nil
}

// SetSongs replaces the song list. A nil slice empties it.
func (p *Playlist) SetSongs(songs []int64) { p.songs = cloneIDs(songs) }

// AddSong appends song identifiers, keeping prior order.
func (p *Playlist) AddSong(ids ...int64) { p.songs = append(p.songs, ids...) }

// InsertSong places a song at pos, shifting later entries. pos may equal Len to append.
func (p *Playlist) InsertSong(pos int, id int64) error {
	if pos < 0 || pos > len(p.songs) {
		return fmt.Errorf("%w: position %d out of range [0, %d]", ErrValidation, pos, len(p.songs))
	}
	p.songs = slices.Insert(p.songs, pos, id)
	return nil
}

// RemoveSongAt removes the entry at pos and returns the removed song identifier.
func (p *Playlist) RemoveSongAt(pos int) (int64, error) {
	if pos < 0 || pos >= len(p.songs) {
		return 0, fmt.Errorf("%w: position %d out of range [0, %d)", ErrValidation, pos, len(p.songs))
	}
	id := p.songs[pos]
	p.songs = slices.Delete(p.songs, pos, pos+1)
	return id, nil
}

// MoveSong moves the entry at from to position to.
func (p *Playlist) MoveSong(from, to int) error {
	n := len(p.songs)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: move %d -> %d out of range [0, %d)", ErrValidation, from, to, n)
	}
	id := p.songs[from]
	p.songs = slices.Delete(p.songs, from, from+1)
	p.songs = slices.Insert(p.songs, to, id)
	return nil
}

// Contains reports whether the playlist references the song.
func (p *Playlist) Contains(id int64) bool { return slices.Contains(p.songs, id) }

// Validate checks that the playlist exists, has a non-negative id and a non-blank name.
func (p *Playlist) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: playlist is nil", ErrValidation)
	}
	if p.id < 0 {
		return fmt.Errorf("%w: playlist id must not be negative, got %d", ErrValidation, p.id)
	}
	if strings.TrimSpace(p.name) == "" {
		return fmt.Errorf("%w: playlist name is required", ErrValidation)
	}
	return nil
}

type playlistJSON struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Songs []int64 `json:"songs"`
}

func (p *Playlist) MarshalJSON() ([]byte, error) {
	return json.Marshal(playlistJSON{ID: p.id, Name: p.name, Songs: cloneIDs(p.songs)})
}

// UnmarshalJSON decodes a playlist, applying the same rules as [NewPlaylist].
func (p *Playlist) UnmarshalJSON(data []byte) error {
	var raw playlistJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := NewPlaylist(raw.ID, raw.Name, raw.Songs...)
	if err != nil {
		return err
	}
	*p = *decoded
	return nil
}

func cloneIDs(ids []int64) []int64 {
	out := make([]int64, len(ids))
	copy(out, ids)
	return out
}
