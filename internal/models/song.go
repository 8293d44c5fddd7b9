package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

var _ Model = (*Song)(nil)

// SongInfo carries the descriptive fields of a [Song].
type SongInfo struct {
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	Duration int    `json:"duration"` // seconds
}

// Song is a persisted track.
type Song struct {
	id   int64
	info SongInfo
}

// NewSong creates a [Song]. An id of 0 lets the store assign one on save.
func NewSong(id int64, info SongInfo) (*Song, error) {
	info.Title = strings.TrimSpace(info.Title)
	s := &Song{id: id, info: info}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Song) ID() int64      { return s.id }
func (s *Song) SetID(id int64) { s.id = id }
func (s *Song) Title() string  { return s.info.Title }
func (s *Song) Artist() string { return s.info.Artist }
func (s *Song) Album() string  { return s.info.Album }
func (s *Song) Duration() int  { return s.info.Duration }
func (s *Song) Info() SongInfo { return s.info }
func (s *Song) String() string { return fmt.Sprintf("%s - %s", s.info.Artist, s.info.Title) }

// SetInfo replaces the descriptive fields after validating them.
func (s *Song) SetInfo(info SongInfo) error {
	info.Title = strings.TrimSpace(info.Title)
	next := Song{id: s.id, info: info}
	if err := next.Validate(); err != nil {
		return err
	}
	s.info = info
	return nil
}

// Validate checks that the song has a title, a non-negative id and a non-negative duration.
func (s *Song) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: song is nil", ErrValidation)
	}
	if s.id < 0 {
		return fmt.Errorf("%w: song id must not be negative, got %d", ErrValidation, s.id)
	}
	if strings.TrimSpace(s.info.Title) == "" {
		return fmt.Errorf("%w: song title is required", ErrValidation)
	}
	if s.info.Duration < 0 {
		return fmt.Errorf("%w: song duration must not be negative, got %d", ErrValidation, s.info.Duration)
	}
	return nil
}

type songJSON struct {
	ID int64 `json:"id"`
	SongInfo
}

func (s *Song) MarshalJSON() ([]byte, error) {
	return json.Marshal(songJSON{ID: s.id, SongInfo: s.info})
}

func (s *Song) UnmarshalJSON(data []byte) error {
	var raw songJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := NewSong(raw.ID, raw.SongInfo)
	if err != nil {
		return err
	}
	*s = *decoded
	return nil
}
