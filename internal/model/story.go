package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"time"
)

// Story is a single travel-journal entry. OwnerID never changes after creation.
type Story struct {
	ID         string    `json:"_id" bson:"_id"`
	OwnerID    string    `json:"userId" bson:"userId"`
	Title      string    `json:"title" bson:"title"`
	Narrative  string    `json:"story" bson:"story"`
	Locations  []string  `json:"visitedLocation" bson:"visitedLocation"`
	ImageURL   string    `json:"imageUrl" bson:"imageUrl"`
	VisitedAt  time.Time `json:"visitedDate" bson:"visitedDate"`
	IsFavorite bool      `json:"isFavorite" bson:"isFavorite"`
	CreatedAt  time.Time `json:"createdOn" bson:"createdOn"`
}

// StoryRequest is the body of add-travel-story and edit-story.
type StoryRequest struct {
	Title       string     `json:"title"`
	Story       string     `json:"story"`
	Locations   []string   `json:"visitedLocation"`
	ImageURL    string     `json:"imageUrl"`
	VisitedDate UnixMillis `json:"visitedDate"`
}

// FavoriteRequest is the body of update-is-favorite.
type FavoriteRequest struct {
	IsFavorite bool `json:"isFavorite"`
}

// StoryFilter narrows an owner's story list. Zero value matches everything.
type StoryFilter struct {
	// Query is matched case-insensitively as a literal substring against
	// title, narrative and every location tag.
	Query string
	// VisitedFrom and VisitedTo are inclusive bounds on VisitedAt.
	VisitedFrom *time.Time
	VisitedTo   *time.Time
}

// UnixMillis is an epoch timestamp in milliseconds. Clients send it either as a
// JSON number or as a numeric string.
type UnixMillis int64

// Accepted timestamps span the DATETIME range, 1000-01-01 to 9999-12-31.
var (
	minUnixMillis = time.Date(1000, time.January, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	maxUnixMillis = time.Date(9999, time.December, 31, 23, 59, 59, 999e6, time.UTC).UnixMilli()
)

func (m *UnixMillis) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*m = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*m = 0
			return nil
		}
		b = []byte(s)
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("invalid millisecond timestamp %q", b)
	}
	if f < float64(minUnixMillis) || f > float64(maxUnixMillis) {
		return fmt.Errorf("millisecond timestamp %q out of range", b)
	}
	*m = UnixMillis(f)
	return nil
}

// Time converts m to a UTC time.
func (m UnixMillis) Time() time.Time {
	return time.UnixMilli(int64(m)).UTC()
}

// SortStories orders stories favorites first, then newest first. The id is the
// final tie-breaker so the order is fully deterministic.
func SortStories(stories []Story) {
	slices.SortStableFunc(stories, compareStories)
}

// compareStories reports the list order of a and b.
func compareStories(a, b Story) int {
	if a.IsFavorite != b.IsFavorite {
		if a.IsFavorite {
			return -1
		}
		return 1
	}
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	switch {
	case a.ID > b.ID:
		return -1
	case a.ID < b.ID:
		return 1
	}
	return 0
}
