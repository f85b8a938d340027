package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/vytalle/storefront/internal/core/domain"
)

const collectionUsers = "users"

// UserRepository implements ports.UserRepository and ports.CredentialStore.
// Password hashes never leave this type.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

type userDoc struct {
	ID                string    `bson:"_id"`
	Name              string    `bson:"name"`
	Email             string    `bson:"email"`
	Role              string    `bson:"role"`
	Active            bool      `bson:"active"`
	CommissionPercent *float64  `bson:"commission_percent,omitempty"`
	PasswordHash      string    `bson:"password_hash"`
	CreatedAt         time.Time `bson:"created_at"`
}

func (d userDoc) toDomain() *domain.User {
	return &domain.User{
		ID:                d.ID,
		Name:              d.Name,
		Email:             d.Email,
		Role:              domain.ParseRole(d.Role),
		Active:            d.Active,
		CreatedAt:         d.CreatedAt.UTC(),
		CommissionPercent: d.CommissionPercent,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *UserRepository) FindActiveByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d userDoc
	err := r.col.FindOne(ctx, bson.M{"email": normalizeEmail(email), "active": true}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return d.toDomain(), nil
}

// CheckPassword compares password against the stored bcrypt hash. An unknown
// email is a mismatch.
func (r *UserRepository) CheckPassword(ctx context.Context, email, password string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d userDoc
	opts := options.FindOne().SetProjection(bson.M{"password_hash": 1})
	err := r.col.FindOne(ctx, bson.M{"email": normalizeEmail(email)}, opts).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("find credential: %w", err)
	}
	return bcrypt.CompareHashAndPassword([]byte(d.PasswordHash), []byte(password)) == nil, nil
}

// UpsertWithPassword provisions u, hashing password with the given bcrypt
// cost.
func (r *UserRepository) UpsertWithPassword(ctx context.Context, u domain.User, password string, cost int) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	d := userDoc{
		ID:                u.ID,
		Name:              u.Name,
		Email:             normalizeEmail(u.Email),
		Role:              u.Role.String(),
		Active:            u.Active,
		CommissionPercent: u.CommissionPercent,
		PasswordHash:      string(hash),
		CreatedAt:         u.CreatedAt.UTC(),
	}
	if _, err := r.col.ReplaceOne(ctx, bson.M{"_id": d.ID}, d, options.Replace().SetUpsert(true)); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
