package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/staynest/staynest-backend/internal/models"
)

// HomeUpdate carries the fields of a listing edit. Nil pointers mean "leave
// untouched"; a non-nil Images replaces the entire image set.
type HomeUpdate struct {
	Homename    *string
	Price       *float64
	Description *string
	Location    *string
	Photo       *string
	Images      *[]string
	RulesFile   *string
}

// HomeStore is the listing store contract.
type HomeStore interface {
	Insert(ctx context.Context, h *models.Home) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Home, error)
	FindAll(ctx context.Context) ([]models.Home, error)
	FindByHost(ctx context.Context, hostID primitive.ObjectID) ([]models.Home, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Home, error)
	Update(ctx context.Context, id primitive.ObjectID, upd HomeUpdate) (*models.Home, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// UpsertRating writes the rating atomically: at most one rating per
	// (home, user) regardless of concurrent submissions.
	UpsertRating(ctx context.Context, homeID primitive.ObjectID, r models.Rating) error
}

type mongoHomeStore struct {
	col *mongo.Collection
}

// NewHomeStore returns a HomeStore over the given database's homes collection.
func NewHomeStore(db *mongo.Database) HomeStore {
	return &mongoHomeStore{col: db.Collection("homes")}
}

func (s *mongoHomeStore) Insert(ctx context.Context, h *models.Home) error {
	now := time.Now().UTC()
	h.CreatedAt = now
	h.UpdatedAt = now
	if h.Images == nil {
		h.Images = []string{}
	}
	if h.Ratings == nil {
		h.Ratings = []models.Rating{}
	}
	res, err := s.col.InsertOne(ctx, h)
	if err != nil {
		return err
	}
	h.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *mongoHomeStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Home, error) {
	var h models.Home
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&h)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &h, nil
}

func (s *mongoHomeStore) FindAll(ctx context.Context) ([]models.Home, error) {
	return s.find(ctx, bson.M{})
}

func (s *mongoHomeStore) FindByHost(ctx context.Context, hostID primitive.ObjectID) ([]models.Home, error) {
	return s.find(ctx, bson.M{"hostid": hostID})
}

func (s *mongoHomeStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Home, error) {
	if len(ids) == 0 {
		return []models.Home{}, nil
	}
	return s.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (s *mongoHomeStore) find(ctx context.Context, filter bson.M) ([]models.Home, error) {
	cur, err := s.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	homes := []models.Home{}
	if err := cur.All(ctx, &homes); err != nil {
		return nil, err
	}
	return homes, nil
}

func (s *mongoHomeStore) Update(ctx context.Context, id primitive.ObjectID, upd HomeUpdate) (*models.Home, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Homename != nil {
		set["homename"] = *upd.Homename
	}
	if upd.Price != nil {
		set["price"] = *upd.Price
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Location != nil {
		set["location"] = *upd.Location
	}
	if upd.Photo != nil {
		set["photo"] = *upd.Photo
	}
	if upd.Images != nil {
		set["images"] = *upd.Images
	}
	if upd.RulesFile != nil {
		set["rules_file"] = *upd.RulesFile
	}

	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return s.FindByID(ctx, id)
}

func (s *mongoHomeStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoHomeStore) UpsertRating(ctx context.Context, homeID primitive.ObjectID, r models.Rating) error {
	// Two conditional single-document updates instead of read-then-save so two
	// concurrent submissions from the same user can never append twice.
	for attempt := 0; attempt < 2; attempt++ {
		res, err := s.col.UpdateOne(ctx, bson.M{
			"_id":          homeID,
			"ratings.user": r.User,
		}, bson.M{
			"$set": bson.M{
				"ratings.$.stars":      r.Stars,
				"ratings.$.comment":    r.Comment,
				"ratings.$.created_at": r.CreatedAt,
				"updated_at":           time.Now().UTC(),
			},
		})
		if err != nil {
			return err
		}
		if res.MatchedCount == 1 {
			return nil
		}

		res, err = s.col.UpdateOne(ctx, bson.M{
			"_id":          homeID,
			"ratings.user": bson.M{"$ne": r.User},
		}, bson.M{
			"$push": bson.M{"ratings": r},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
		if err != nil {
			return err
		}
		if res.MatchedCount == 1 {
			return nil
		}

		// Neither matched: either the home is gone, or a concurrent push for
		// the same user landed between the two updates. Distinguish and retry.
		if _, err := s.FindByID(ctx, homeID); err != nil {
			return err
		}
	}
	return errors.New("rating upsert did not settle")
}
