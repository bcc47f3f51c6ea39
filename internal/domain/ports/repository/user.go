package repository

import (
	"context"

	"whatsapp-calendar-assistant/internal/domain/model"
)

type UserRepository interface {
	// Save upserts by primary key.
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByPhone(ctx context.Context, tx Tx, phone string) (*model.User, error)
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	// ListActive returns users with at least one delivery channel enabled.
	ListActive(ctx context.Context, tx Tx) ([]*model.User, error)
	CountUsers(ctx context.Context, tx Tx) (int, error)
}
