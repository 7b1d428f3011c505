package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"moviesmama/internal/domain"
	"moviesmama/internal/repository"
)

const usersCollection = "users"

// userDocument is the stored shape of a user.
type userDocument struct {
	ID                   string          `bson:"_id"`
	Name                 string          `bson:"name"`
	Email                string          `bson:"email"`
	PasswordHash         string          `bson:"password"`
	IsVerified           bool            `bson:"isVerified"`
	ResetPasswordToken   *string         `bson:"resetPasswordToken,omitempty"`
	ResetPasswordExpire  *time.Time      `bson:"resetPasswordExpire,omitempty"`
	LastLogin            *time.Time      `bson:"lastLogin"`
	NotificationSettings map[string]bool `bson:"notificationSettings"`
	CreatedAt            time.Time       `bson:"createdAt"`
	UpdatedAt            time.Time       `bson:"updatedAt"`
}

type UserRepository struct {
	client *mongo.Client
	users  *mongo.Collection
}

func NewUserRepository(client *mongo.Client, database string) repository.UserRepository {
	return &UserRepository{
		client: client,
		users:  client.Database(database).Collection(usersCollection),
	}
}

// Init creates the unique email index.
func (r *UserRepository) Init(ctx context.Context) error {
	_, err := r.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("create users email index: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	// mongo stores millisecond precision
	now := time.Now().UTC().Truncate(time.Millisecond)
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.NotificationSettings == nil {
		user.NotificationSettings = map[string]bool{}
	}

	if _, err := r.users.InsertOne(ctx, toDocument(user)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", domain.ErrUserAlreadyExists, err)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.updateOne(ctx, id, bson.D{
		{Key: "password", Value: passwordHash},
		{Key: "updatedAt", Value: time.Now().UTC()},
	})
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id, name string, settings map[string]bool) error {
	if settings == nil {
		settings = map[string]bool{}
	}
	return r.updateOne(ctx, id, bson.D{
		{Key: "name", Value: name},
		{Key: "notificationSettings", Value: settings},
		{Key: "updatedAt", Value: time.Now().UTC()},
	})
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.updateOne(ctx, id, bson.D{{Key: "lastLogin", Value: at.UTC()}})
}

func (r *UserRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.D) (*domain.User, error) {
	var doc userDocument
	if err := r.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return fromDocument(doc), nil
}

func (r *UserRepository) updateOne(ctx context.Context, id string, set bson.D) error {
	res, err := r.users.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func toDocument(user *domain.User) userDocument {
	return userDocument{
		ID:                   user.ID,
		Name:                 user.Name,
		Email:                user.Email,
		PasswordHash:         user.PasswordHash,
		IsVerified:           user.IsVerified,
		ResetPasswordToken:   user.ResetPasswordToken,
		ResetPasswordExpire:  user.ResetPasswordExpire,
		LastLogin:            user.LastLogin,
		NotificationSettings: user.NotificationSettings,
		CreatedAt:            user.CreatedAt,
		UpdatedAt:            user.UpdatedAt,
	}
}

func fromDocument(doc userDocument) *domain.User {
	settings := doc.NotificationSettings
	if settings == nil {
		settings = map[string]bool{}
	}
	return &domain.User{
		ID:                   doc.ID,
		Name:                 doc.Name,
		Email:                doc.Email,
		PasswordHash:         doc.PasswordHash,
		IsVerified:           doc.IsVerified,
		ResetPasswordToken:   doc.ResetPasswordToken,
		ResetPasswordExpire:  doc.ResetPasswordExpire,
		LastLogin:            doc.LastLogin,
		NotificationSettings: settings,
		CreatedAt:            doc.CreatedAt,
		UpdatedAt:            doc.UpdatedAt,
	}
}
