package mongo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/meshvault/meshvault-server/internal/model"
)

var _ model.AccountStore = (*AccountRepository)(nil)

type AccountRepository struct {
	coll *mongo.Collection
}

func NewAccountRepository(conn *Connection) *AccountRepository {
	return &AccountRepository{
		coll: conn.db.Collection(accountsCollection),
	}
}

// accountDoc is the stored document shape for an account.
type accountDoc struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	Username     string        `bson:"username"`
	Email        string        `bson:"email"`
	PasswordHash string        `bson:"password_hash"`
	CreatedAt    time.Time     `bson:"created_at"`
}

func (d accountDoc) toModel() model.Account {
	return model.Account{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
	}
}

// Create inserts a new account and returns it with the store-assigned id.
// Unique-index violations map to the duplicate errors so a lost
// check-then-insert race still yields a specific reason.
func (r *AccountRepository) Create(ctx context.Context, account model.Account) (model.Account, error) {
	doc := accountDoc{
		Username:     account.Username,
		Email:        account.Email,
		PasswordHash: account.PasswordHash,
		CreatedAt:    account.CreatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return model.Account{}, duplicateAccountError(err)
		}
		return model.Account{}, fmt.Errorf("failed to create account: %w", err)
	}

	id, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return model.Account{}, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}

	account.ID = id.Hex()
	return account, nil
}

// duplicateAccountError inspects which unique index was violated.
func duplicateAccountError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "username"):
		return model.ErrDuplicateUsername
	case strings.Contains(msg, "email"):
		return model.ErrDuplicateEmail
	default:
		return model.ErrDuplicateKey
	}
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (model.Account, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		// Malformed ids behave like unknown ids.
		return model.Account{}, model.ErrNotFound
	}

	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (model.Account, error) {
	return r.findOne(ctx, bson.D{{Key: "username", Value: username}})
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (model.Account, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.D) (model.Account, error) {
	var doc accountDoc
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return model.Account{}, model.ErrNotFound
		}
		return model.Account{}, fmt.Errorf("failed to get account: %w", err)
	}

	return doc.toModel(), nil
}

func (r *AccountRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return count, nil
}
