// Package memstore keeps users and stories in process memory. It backs the
// "memory" store driver and the service tests.
package memstore

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/safar/safar-go/internal/model"
	"github.com/safar/safar-go/internal/repository"
)

// Store holds users and stories. Users and Stories return the two store views.
type Store struct {
	mu      sync.RWMutex
	users   map[string]model.User
	emails  map[string]string
	stories map[string]model.Story
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		users:   make(map[string]model.User),
		emails:  make(map[string]string),
		stories: make(map[string]model.Story),
	}
}

// Users returns the credential-store view of s.
func (s *Store) Users() *UserStore {
	return &UserStore{s: s}
}

// UserStore is the credential half of Store.
type UserStore struct {
	s *Store
}

// Create stores a new user, or returns ErrDuplicateEmail if the email is taken.
func (us *UserStore) Create(ctx context.Context, user *model.User) error {
	s := us.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.emails[user.Email]; taken {
		return repository.ErrDuplicateEmail
	}
	s.users[user.ID] = *user
	s.emails[user.Email] = user.ID
	return nil
}

// GetByEmail retrieves a user by their email address.
func (us *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	s := us.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	user := s.users[id]
	return &user, nil
}

// GetByID retrieves a user by their ID.
func (us *UserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	s := us.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &user, nil
}

// Stories returns the story-store view of s.
func (s *Store) Stories() *StoryStore {
	return &StoryStore{s: s}
}

// StoryStore is the story half of Store.
type StoryStore struct {
	s *Store
}

// Create stores a new story.
func (st *StoryStore) Create(ctx context.Context, story *model.Story) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	st.s.stories[story.ID] = cloneStory(*story)
	return nil
}

// GetByID retrieves a story owned by ownerID.
func (st *StoryStore) GetByID(ctx context.Context, ownerID, id string) (*model.Story, error) {
	st.s.mu.RLock()
	defer st.s.mu.RUnlock()

	story, ok := st.s.stories[id]
	if !ok || story.OwnerID != ownerID {
		return nil, repository.ErrStoryNotFound
	}
	story = cloneStory(story)
	return &story, nil
}

// List retrieves the owner's stories matching filter, favorites first.
func (st *StoryStore) List(ctx context.Context, ownerID string, filter model.StoryFilter) ([]model.Story, error) {
	st.s.mu.RLock()
	defer st.s.mu.RUnlock()

	query := strings.ToLower(filter.Query)
	stories := []model.Story{}
	for _, story := range st.s.stories {
		if story.OwnerID != ownerID || !matches(story, query, filter) {
			continue
		}
		stories = append(stories, cloneStory(story))
	}

	model.SortStories(stories)
	return stories, nil
}

// Update replaces a story owned by story.OwnerID.
func (st *StoryStore) Update(ctx context.Context, story *model.Story) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	existing, ok := st.s.stories[story.ID]
	if !ok || existing.OwnerID != story.OwnerID {
		return repository.ErrStoryNotFound
	}
	st.s.stories[story.ID] = cloneStory(*story)
	return nil
}

// Delete removes a story owned by ownerID.
func (st *StoryStore) Delete(ctx context.Context, ownerID, id string) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	existing, ok := st.s.stories[id]
	if !ok || existing.OwnerID != ownerID {
		return repository.ErrStoryNotFound
	}
	delete(st.s.stories, id)
	return nil
}

func matches(story model.Story, query string, filter model.StoryFilter) bool {
	if filter.VisitedFrom != nil && story.VisitedAt.Before(*filter.VisitedFrom) {
		return false
	}
	if filter.VisitedTo != nil && story.VisitedAt.After(*filter.VisitedTo) {
		return false
	}
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(story.Title), query) ||
		strings.Contains(strings.ToLower(story.Narrative), query) {
		return true
	}
	return slices.ContainsFunc(story.Locations, func(loc string) bool {
		return strings.Contains(strings.ToLower(loc), query)
	})
}

func cloneStory(story model.Story) model.Story {
	story.Locations = slices.Clone(story.Locations)
	return story
}
