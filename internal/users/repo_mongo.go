package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/accounts-backend/pkg/db/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	mongoEmailIndex = "ux_users_email"
	mongoPhoneIndex = "ux_users_phone_number"
)

// MongoRepository persists users as documents in a single collection.
type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(coll *mongo.Collection) *MongoRepository {
	return &MongoRepository{coll: coll}
}

// EnsureIndexes creates the unique email index and the partial unique phone
// index. Safe to call on every start.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName(mongoEmailIndex).SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "phoneNumber", Value: 1}},
			Options: options.Index().
				SetName(mongoPhoneIndex).
				SetUnique(true).
				SetPartialFilterExpression(bson.D{{Key: "phoneNumber", Value: bson.D{{Key: "$type", Value: "string"}}}}),
		},
		{
			Keys:    bson.D{{Key: "isDeleted", Value: 1}, {Key: "createdAt", Value: 1}},
			Options: options.Index().SetName("ix_users_is_deleted_created_at"),
		},
	})
	if err != nil {
		return fmt.Errorf("creating user indexes: %w", err)
	}
	return nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (r *MongoRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.D{
		{Key: "email", Value: email},
		{Key: "isDeleted", Value: false},
	})
}

func (r *MongoRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	return r.findOne(ctx, bson.D{{Key: "phoneNumber", Value: phone}})
}

func (r *MongoRepository) GetDeletedByEmailOrPhone(ctx context.Context, email string, phone *string) (*models.User, error) {
	or := bson.A{bson.D{{Key: "email", Value: email}}}
	if phone != nil && *phone != "" {
		or = append(or, bson.D{{Key: "phoneNumber", Value: *phone}})
	}
	return r.findOne(ctx, bson.D{
		{Key: "isDeleted", Value: true},
		{Key: "$or", Value: or},
	})
}

func (r *MongoRepository) Add(ctx context.Context, user *models.User) error {
	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		return mongoDuplicate(err)
	}
	return nil
}

func (r *MongoRepository) Update(ctx context.Context, id string, user *models.User) error {
	res, err := r.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: id}}, user)
	if err != nil {
		return mongoDuplicate(err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", id, mongo.ErrNoDocuments)
	}
	return nil
}

func (r *MongoRepository) GetAll(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.D{{Key: "isDeleted", Value: false}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.User{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.D) (*models.User, error) {
	var user models.User
	if err := r.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func mongoDuplicate(err error) error {
	if !mongo.IsDuplicateKeyError(err) {
		return err
	}
	if strings.Contains(err.Error(), mongoPhoneIndex) {
		return &ErrDuplicate{Field: duplicateFieldPhone}
	}
	return &ErrDuplicate{Field: duplicateFieldEmail}
}
