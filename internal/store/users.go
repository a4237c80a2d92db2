package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/staynest/staynest-backend/internal/models"
)

// UserStore is the credential store contract.
type UserStore interface {
	Insert(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	SummariesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserSummary, error)

	SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error
	SetOTP(ctx context.Context, id primitive.ObjectID, code string, expiresAt time.Time) error
	// ResetPasswordWithOTP atomically sets the password hash and clears the
	// OTP fields iff the stored code matches and has not expired. Returns
	// false when no document matched (wrong code, expired, or unknown email).
	ResetPasswordWithOTP(ctx context.Context, email, code string, now time.Time, hash string) (bool, error)

	// LinkOAuth attaches the provider pair iff the account is not linked yet.
	LinkOAuth(ctx context.Context, id primitive.ObjectID, provider, oauthID string) error

	AddFavourite(ctx context.Context, id, homeID primitive.ObjectID) ([]primitive.ObjectID, error)
	RemoveFavourite(ctx context.Context, id, homeID primitive.ObjectID) ([]primitive.ObjectID, error)
}

type mongoUserStore struct {
	col *mongo.Collection
}

// NewUserStore returns a UserStore over the given database's users collection.
func NewUserStore(db *mongo.Database) UserStore {
	return &mongoUserStore{col: db.Collection("users")}
}

func (s *mongoUserStore) Insert(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.Favourite == nil {
		u.Favourite = []primitive.ObjectID{}
	}
	res, err := s.col.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *mongoUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *mongoUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *mongoUserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	err := s.col.FindOne(ctx, filter).Decode(&u)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *mongoUserStore) SummariesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserSummary, error) {
	out := make(map[primitive.ObjectID]models.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	opts := options.Find().SetProjection(bson.M{"firstname": 1, "lastname": 1, "email": 1})
	cur, err := s.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var summaries []models.UserSummary
	if err := cur.All(ctx, &summaries); err != nil {
		return nil, err
	}
	for _, sum := range summaries {
		out[sum.ID] = sum
	}
	return out, nil
}

func (s *mongoUserStore) SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"password": hash, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoUserStore) SetOTP(ctx context.Context, id primitive.ObjectID, code string, expiresAt time.Time) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"email_otp":      code,
			"otp_expires_at": expiresAt.UTC(),
			"updated_at":     time.Now().UTC(),
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoUserStore) ResetPasswordWithOTP(ctx context.Context, email, code string, now time.Time, hash string) (bool, error) {
	// Match, set and clear in one document update so a concurrent verify
	// cannot reuse the same code.
	res, err := s.col.UpdateOne(ctx, bson.M{
		"email":          email,
		"email_otp":      code,
		"otp_expires_at": bson.M{"$gt": now.UTC()},
	}, bson.M{
		"$set":   bson.M{"password": hash, "updated_at": time.Now().UTC()},
		"$unset": bson.M{"email_otp": "", "otp_expires_at": ""},
	})
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

func (s *mongoUserStore) LinkOAuth(ctx context.Context, id primitive.ObjectID, provider, oauthID string) error {
	// First linked provider wins: only documents without oauth fields match.
	_, err := s.col.UpdateOne(ctx, bson.M{
		"_id":      id,
		"oauth_id": bson.M{"$exists": false},
	}, bson.M{
		"$set": bson.M{
			"oauth_provider": provider,
			"oauth_id":       oauthID,
			"updated_at":     time.Now().UTC(),
		},
	})
	return err
}

func (s *mongoUserStore) AddFavourite(ctx context.Context, id, homeID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return s.updateFavourites(ctx, id, bson.M{"$addToSet": bson.M{"favourite": homeID}})
}

func (s *mongoUserStore) RemoveFavourite(ctx context.Context, id, homeID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return s.updateFavourites(ctx, id, bson.M{"$pull": bson.M{"favourite": homeID}})
}

func (s *mongoUserStore) updateFavourites(ctx context.Context, id primitive.ObjectID, update bson.M) ([]primitive.ObjectID, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u models.User
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&u)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if u.Favourite == nil {
		u.Favourite = []primitive.ObjectID{}
	}
	return u.Favourite, nil
}
