package store

import (
	"context"
	"fmt"

	"imagevault/internal/config"
	"imagevault/internal/db"
	"imagevault/internal/repository"
)

// Store is the record store selected by STORE_DRIVER.
type Store struct {
	Users  repository.UserRepository
	Images repository.ImageRepository

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// Open connects to the configured driver and prepares its schema.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		m, err := db.NewMongo(ctx, cfg.MongoURL, cfg.DBName)
		if err != nil {
			return nil, err
		}
		return &Store{
			Users:  repository.NewMongoUserRepository(m.DB),
			Images: repository.NewMongoImageRepository(m.DB),
			ping:   m.Ping,
			close:  m.Close,
		}, nil
	case config.DriverMySQL:
		m, err := db.NewMySQL(cfg.MySQLDSN)
		if err != nil {
			return nil, err
		}
		return &Store{
			Users:  repository.NewUserRepository(m.DB),
			Images: repository.NewImageRepository(m.DB),
			ping:   m.Ping,
			close:  m.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

// Ping checks the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

// Close disconnects from the store.
func (s *Store) Close(ctx context.Context) error {
	return s.close(ctx)
}
