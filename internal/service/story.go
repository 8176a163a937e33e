package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/safar/safar-go/internal/model"
	"github.com/safar/safar-go/internal/repository"
)

// StoryStore persists travel stories. Every lookup is scoped to an owner.
type StoryStore interface {
	Create(ctx context.Context, story *model.Story) error
	GetByID(ctx context.Context, ownerID, id string) (*model.Story, error)
	List(ctx context.Context, ownerID string, filter model.StoryFilter) ([]model.Story, error)
	Update(ctx context.Context, story *model.Story) error
	Delete(ctx context.Context, ownerID, id string) error
}

// ImageRemover deletes an uploaded image from the owner's media space.
type ImageRemover interface {
	Delete(ctx context.Context, ownerID, imageURL string) (bool, error)
}

// StoryService handles travel story business logic.
type StoryService struct {
	stories        StoryStore
	images         ImageRemover
	placeholderURL string
	logger         *slog.Logger
	now            func() time.Time
}

// NewStoryService creates a new StoryService. placeholderURL is stored for
// stories saved without an image.
func NewStoryService(stories StoryStore, images ImageRemover, placeholderURL string, logger *slog.Logger) *StoryService {
	return &StoryService{
		stories:        stories,
		images:         images,
		placeholderURL: placeholderURL,
		logger:         logger,
		now:            time.Now,
	}
}

// AddStory creates a story owned by ownerID.
func (s *StoryService) AddStory(ctx context.Context, ownerID string, req model.StoryRequest) (*model.Story, error) {
	fields, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	story := &model.Story{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		Title:      fields.Title,
		Narrative:  fields.Narrative,
		Locations:  fields.Locations,
		ImageURL:   fields.ImageURL,
		VisitedAt:  fields.VisitedAt,
		IsFavorite: false,
		CreatedAt:  s.now().UTC(),
	}

	if err := s.stories.Create(ctx, story); err != nil {
		return nil, storageError(err)
	}

	return story, nil
}

// ListStories returns all of ownerID's stories, favorites first.
func (s *StoryService) ListStories(ctx context.Context, ownerID string) ([]model.Story, error) {
	return s.list(ctx, ownerID, model.StoryFilter{})
}

// EditStory replaces the content of a story. The favorite flag is left as is.
func (s *StoryService) EditStory(ctx context.Context, ownerID, id string, req model.StoryRequest) (*model.Story, error) {
	fields, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	story, err := s.get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	story.Title = fields.Title
	story.Narrative = fields.Narrative
	story.Locations = fields.Locations
	story.ImageURL = fields.ImageURL
	story.VisitedAt = fields.VisitedAt

	if err := s.update(ctx, story); err != nil {
		return nil, err
	}
	return story, nil
}

// DeleteStory removes a story, then its uploaded image. The story stays
// deleted even if the image cannot be removed.
func (s *StoryService) DeleteStory(ctx context.Context, ownerID, id string) error {
	story, err := s.get(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if err := s.stories.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, repository.ErrStoryNotFound) {
			return ErrStoryNotFound
		}
		return storageError(err)
	}

	if s.images == nil || story.ImageURL == "" || story.ImageURL == s.placeholderURL {
		return nil
	}

	found, err := s.images.Delete(ctx, ownerID, story.ImageURL)
	switch {
	case err != nil:
		s.logger.Error("failed to delete story image", "story_id", id, "image_url", story.ImageURL, "error", err)
	case !found:
		s.logger.Warn("story image not found", "story_id", id, "image_url", story.ImageURL)
	}
	return nil
}

// SetFavorite sets the favorite flag of a story.
func (s *StoryService) SetFavorite(ctx context.Context, ownerID, id string, isFavorite bool) (*model.Story, error) {
	story, err := s.get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	story.IsFavorite = isFavorite
	if err := s.update(ctx, story); err != nil {
		return nil, err
	}
	return story, nil
}

// Search returns ownerID's stories whose title, narrative or any location
// contains query, ignoring case.
func (s *StoryService) Search(ctx context.Context, ownerID, query string) ([]model.Story, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrQueryRequired
	}
	return s.list(ctx, ownerID, model.StoryFilter{Query: query})
}

// FilterByDate returns ownerID's stories visited within [start, end]. An
// inverted range matches nothing.
func (s *StoryService) FilterByDate(ctx context.Context, ownerID string, start, end time.Time) ([]model.Story, error) {
	if start.After(end) {
		return []model.Story{}, nil
	}
	return s.list(ctx, ownerID, model.StoryFilter{VisitedFrom: &start, VisitedTo: &end})
}

func (s *StoryService) list(ctx context.Context, ownerID string, filter model.StoryFilter) ([]model.Story, error) {
	stories, err := s.stories.List(ctx, ownerID, filter)
	if err != nil {
		return nil, storageError(err)
	}
	if stories == nil {
		stories = []model.Story{}
	}
	return stories, nil
}

func (s *StoryService) get(ctx context.Context, ownerID, id string) (*model.Story, error) {
	story, err := s.stories.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrStoryNotFound) {
			return nil, ErrStoryNotFound
		}
		return nil, storageError(err)
	}
	return story, nil
}

func (s *StoryService) update(ctx context.Context, story *model.Story) error {
	if err := s.stories.Update(ctx, story); err != nil {
		if errors.Is(err, repository.ErrStoryNotFound) {
			return ErrStoryNotFound
		}
		return storageError(err)
	}
	return nil
}

type storyFields struct {
	Title     string
	Narrative string
	Locations []string
	ImageURL  string
	VisitedAt time.Time
}

// validate checks the required story fields and substitutes the placeholder
// for a missing image.
func (s *StoryService) validate(req model.StoryRequest) (storyFields, error) {
	fields := storyFields{
		Title:     strings.TrimSpace(req.Title),
		Narrative: strings.TrimSpace(req.Story),
		ImageURL:  strings.TrimSpace(req.ImageURL),
	}
	for _, loc := range req.Locations {
		if loc = strings.TrimSpace(loc); loc != "" {
			fields.Locations = append(fields.Locations, loc)
		}
	}

	if fields.Title == "" || fields.Narrative == "" || len(fields.Locations) == 0 || req.VisitedDate == 0 {
		return storyFields{}, ErrFieldsRequired
	}

	fields.VisitedAt = req.VisitedDate.Time()
	if fields.ImageURL == "" {
		fields.ImageURL = s.placeholderURL
	}
	return fields, nil
}
