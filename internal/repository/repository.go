package repository

import (
	"context"

	"imagevault/internal/model"
)

// ListLimit caps how many images a single list call returns.
const ListLimit = 100

// UserRepository defines user persistence. Lookups return (nil, nil) when
// no record matches.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error)
}

// ImageRepository defines owner-scoped image persistence.
type ImageRepository interface {
	Create(ctx context.Context, image *model.Image) error
	// ListByOwner returns newest first, at most ListLimit records. A nil
	// isPrivate applies no visibility filter.
	ListByOwner(ctx context.Context, ownerID string, isPrivate *bool) ([]model.Image, error)
	// DeleteByIDAndOwner removes the image only if both match and reports
	// how many records were removed.
	DeleteByIDAndOwner(ctx context.Context, id, ownerID string) (int64, error)
}
