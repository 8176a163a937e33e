package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/safar/safar-go/internal/model"
)

const storyColumns = `id, user_id, title, story, visited_location, image_url, visited_date, is_favorite, created_at`

// storyOrder is the list order shared by every story query.
const storyOrder = ` ORDER BY is_favorite DESC, created_at DESC, id DESC`

// StoryRepository handles travel story persistence operations.
type StoryRepository struct {
	db *sql.DB
}

// NewStoryRepository creates a new StoryRepository.
func NewStoryRepository(db *sql.DB) *StoryRepository {
	return &StoryRepository{db: db}
}

// Create inserts a new story.
func (r *StoryRepository) Create(ctx context.Context, story *model.Story) error {
	locations, err := encodeLocations(story.Locations)
	if err != nil {
		return err
	}

	query := `INSERT INTO travel_stories (` + storyColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		story.ID, story.OwnerID, story.Title, story.Narrative, locations,
		story.ImageURL, story.VisitedAt, story.IsFavorite, story.CreatedAt,
	)
	return err
}

// GetByID retrieves a story owned by ownerID.
func (r *StoryRepository) GetByID(ctx context.Context, ownerID, id string) (*model.Story, error) {
	query := `SELECT ` + storyColumns + ` FROM travel_stories WHERE id = ? AND user_id = ?`

	story, err := scanStory(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStoryNotFound
		}
		return nil, err
	}
	return story, nil
}

// List retrieves the owner's stories matching filter, favorites first.
func (r *StoryRepository) List(ctx context.Context, ownerID string, filter model.StoryFilter) ([]model.Story, error) {
	query, args := buildListQuery(ownerID, filter)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stories := []model.Story{}
	for rows.Next() {
		story, err := scanStory(rows)
		if err != nil {
			return nil, err
		}
		stories = append(stories, *story)
	}

	return stories, rows.Err()
}

// Update overwrites the mutable fields of a story. The owner is part of the
// key, so a foreign story is never touched.
func (r *StoryRepository) Update(ctx context.Context, story *model.Story) error {
	locations, err := encodeLocations(story.Locations)
	if err != nil {
		return err
	}

	query := `UPDATE travel_stories
		SET title = ?, story = ?, visited_location = ?, image_url = ?, visited_date = ?, is_favorite = ?
		WHERE id = ? AND user_id = ?`
	_, err = r.db.ExecContext(ctx, query,
		story.Title, story.Narrative, locations, story.ImageURL, story.VisitedAt, story.IsFavorite,
		story.ID, story.OwnerID,
	)
	return err
}

// Delete removes a story owned by ownerID.
func (r *StoryRepository) Delete(ctx context.Context, ownerID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM travel_stories WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrStoryNotFound
	}

	return nil
}

func buildListQuery(ownerID string, filter model.StoryFilter) (string, []any) {
	var b strings.Builder
	b.WriteString(`SELECT ` + storyColumns + ` FROM travel_stories WHERE user_id = ?`)
	args := []any{ownerID}

	if filter.Query != "" {
		pattern := "%" + escapeLike(strings.ToLower(filter.Query)) + "%"
		b.WriteString(` AND (LOWER(title) LIKE ? OR LOWER(story) LIKE ? OR JSON_SEARCH(LOWER(visited_location), 'one', ?) IS NOT NULL)`)
		args = append(args, pattern, pattern, pattern)
	}
	if filter.VisitedFrom != nil {
		b.WriteString(` AND visited_date >= ?`)
		args = append(args, *filter.VisitedFrom)
	}
	if filter.VisitedTo != nil {
		b.WriteString(` AND visited_date <= ?`)
		args = append(args, *filter.VisitedTo)
	}

	b.WriteString(storyOrder)
	return b.String(), args
}

// escapeLike makes s match literally inside a LIKE pattern using the default
// backslash escape character.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func encodeLocations(locations []string) ([]byte, error) {
	if locations == nil {
		locations = []string{}
	}
	return json.Marshal(locations)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStory(row rowScanner) (*model.Story, error) {
	var (
		story     model.Story
		locations []byte
	)
	if err := row.Scan(
		&story.ID, &story.OwnerID, &story.Title, &story.Narrative, &locations,
		&story.ImageURL, &story.VisitedAt, &story.IsFavorite, &story.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(locations, &story.Locations); err != nil {
		return nil, err
	}
	return &story, nil
}
