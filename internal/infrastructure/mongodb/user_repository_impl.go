package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oksasatya/user-account-api/internal/domain/entity"
	"github.com/oksasatya/user-account-api/internal/domain/repository"
)

// pageSize is fixed for this system; the client cannot configure it.
const pageSize = 10

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database, collection string) *UserRepository {
	return &UserRepository{col: db.Collection(collection)}
}

// EnsureIndexes creates the ordering index the listing relies on plus a
// unique index on email. The unique constraint backstops the
// read-before-write uniqueness check under concurrent registrations.
// Safe to call on every startup.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	return err
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	res, err := r.col.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrDuplicateEmail
	}
	if err != nil {
		return err
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	u := &entity.User{}
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// A malformed id cannot reference any document.
		return nil, nil
	}
	u := &entity.User{}
	err = r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) UpdatePartial(ctx context.Context, id string, fields map[string]any) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrNotFound
	}
	res, err := r.col.UpdateByID(ctx, oid, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListPage fetches pageSize+1 documents ordered by (name, _id) so the
// oversupplied record signals that another page exists. An unknown or
// malformed cursor is silently ignored and pagination restarts from the top.
// The password field is stripped by projection before documents leave the store.
func (r *UserRepository) ListPage(ctx context.Context, prefix, cursorID string) ([]entity.User, string, error) {
	var cursorDoc *entity.User
	if cursorID != "" {
		if oid, err := primitive.ObjectIDFromHex(cursorID); err == nil {
			doc := &entity.User{}
			err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(doc)
			switch {
			case err == nil:
				cursorDoc = doc
			case errors.Is(err, mongo.ErrNoDocuments):
				// cursor vanished; restart from the top
			default:
				return nil, "", err
			}
		}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(pageSize + 1).
		SetProjection(bson.M{"password": 0})

	cur, err := r.col.Find(ctx, listFilter(prefix, cursorDoc), opts)
	if err != nil {
		return nil, "", err
	}
	defer cur.Close(ctx)

	users := make([]entity.User, 0, pageSize+1)
	if err := cur.All(ctx, &users); err != nil {
		return nil, "", err
	}

	page, next := cutPage(users, pageSize)
	return page, next, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
