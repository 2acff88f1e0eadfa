package repository

import (
	"context"

	"github.com/garnizeh/jobboard/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) (string, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
	DeleteUser(ctx context.Context, id string) error
}

type ProfileRepo interface {
	CreateProfile(ctx context.Context, p *models.UserProfile) (int64, error)
	GetByUserID(ctx context.Context, userID string) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, p *models.UserProfile) error
	ListNotifiable(ctx context.Context) ([]models.UserProfile, error)
}

type SchemaRepo interface {
	UpsertSchema(ctx context.Context, name, schemaJSON string) error
	GetSchema(ctx context.Context, name string) (*models.DocumentSchema, error)
	ListSchemas(ctx context.Context) ([]models.DocumentSchema, error)
	DeleteSchema(ctx context.Context, name string) error
}

// DocumentStore is a collection/document store. Documents are JSON objects
// addressed by an opaque key unique within their collection.
type DocumentStore interface {
	Create(ctx context.Context, collection string, data any) (string, error)
	// Get returns (nil, nil) when the document does not exist.
	Get(ctx context.Context, collection, id string) (*Document, error)
	Query(ctx context.Context, collection string, q Query) ([]Document, error)
	// Update merges the top-level fields of partial into the document.
	Update(ctx context.Context, collection, id string, partial map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	// Subscribe delivers the full result set of q now and after every write
	// that touches a matching document, until the returned func is called.
	Subscribe(ctx context.Context, collection string, q Query, fn func([]Document)) (func(), error)
}
