package seeder

import (
	"context"

	"venue-staff/internal/database"
)

type Seeder interface {
	Name() string
	Run(ctx context.Context, db database.DB) error
}
