package mongostore

import (
	"context"
	"errors"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/safar/safar-go/internal/model"
	"github.com/safar/safar-go/internal/repository"
)

// storySort is favorites first, then newest, then id.
var storySort = bson.D{
	{Key: "isFavorite", Value: -1},
	{Key: "createdOn", Value: -1},
	{Key: "_id", Value: -1},
}

// StoryRepository stores travel stories in the travelstories collection.
type StoryRepository struct {
	coll *mongo.Collection
}

// NewStoryRepository creates a new StoryRepository.
func NewStoryRepository(db *mongo.Database) *StoryRepository {
	return &StoryRepository{coll: db.Collection(storiesCollection)}
}

// Create inserts a new story.
func (r *StoryRepository) Create(ctx context.Context, story *model.Story) error {
	doc := *story
	if doc.Locations == nil {
		doc.Locations = []string{}
	}
	_, err := r.coll.InsertOne(ctx, doc)
	return err
}

// GetByID retrieves a story owned by ownerID.
func (r *StoryRepository) GetByID(ctx context.Context, ownerID, id string) (*model.Story, error) {
	var story model.Story
	err := r.coll.FindOne(ctx, ownedBy(ownerID, id)).Decode(&story)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrStoryNotFound
		}
		return nil, err
	}
	return &story, nil
}

// List retrieves the owner's stories matching filter, favorites first.
func (r *StoryRepository) List(ctx context.Context, ownerID string, filter model.StoryFilter) ([]model.Story, error) {
	cursor, err := r.coll.Find(ctx, listFilter(ownerID, filter), options.Find().SetSort(storySort))
	if err != nil {
		return nil, err
	}

	stories := []model.Story{}
	if err := cursor.All(ctx, &stories); err != nil {
		return nil, err
	}
	return stories, nil
}

// Update overwrites the mutable fields of a story owned by story.OwnerID.
func (r *StoryRepository) Update(ctx context.Context, story *model.Story) error {
	locations := story.Locations
	if locations == nil {
		locations = []string{}
	}

	result, err := r.coll.UpdateOne(ctx, ownedBy(story.OwnerID, story.ID), bson.D{{Key: "$set", Value: bson.D{
		{Key: "title", Value: story.Title},
		{Key: "story", Value: story.Narrative},
		{Key: "visitedLocation", Value: locations},
		{Key: "imageUrl", Value: story.ImageURL},
		{Key: "visitedDate", Value: story.VisitedAt},
		{Key: "isFavorite", Value: story.IsFavorite},
	}}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrStoryNotFound
	}
	return nil
}

// Delete removes a story owned by ownerID.
func (r *StoryRepository) Delete(ctx context.Context, ownerID, id string) error {
	result, err := r.coll.DeleteOne(ctx, ownedBy(ownerID, id))
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrStoryNotFound
	}
	return nil
}

func ownedBy(ownerID, id string) bson.D {
	return bson.D{{Key: "_id", Value: id}, {Key: "userId", Value: ownerID}}
}

// listFilter translates a StoryFilter into a query document. The search text
// is quoted so it matches literally; a regex on an array field matches when
// any element matches.
func listFilter(ownerID string, filter model.StoryFilter) bson.D {
	query := bson.D{{Key: "userId", Value: ownerID}}

	if filter.Query != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Query), Options: "i"}
		query = append(query, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "title", Value: pattern}},
			bson.D{{Key: "story", Value: pattern}},
			bson.D{{Key: "visitedLocation", Value: pattern}},
		}})
	}

	var visited bson.D
	if filter.VisitedFrom != nil {
		visited = append(visited, bson.E{Key: "$gte", Value: *filter.VisitedFrom})
	}
	if filter.VisitedTo != nil {
		visited = append(visited, bson.E{Key: "$lte", Value: *filter.VisitedTo})
	}
	if len(visited) > 0 {
		query = append(query, bson.E{Key: "visitedDate", Value: visited})
	}

	return query
}
