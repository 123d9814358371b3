// Package seed loads a demo user, tour and points into an empty database.
package seed

import (
	"context"
	"fmt"

	"backend-travelcompanion/internal/logger"
	"backend-travelcompanion/internal/point"
	"backend-travelcompanion/internal/tour"
	"backend-travelcompanion/internal/user"

	"go.uber.org/zap"
)

const (
	DemoUsername = "user"
	DemoPassword = "password"
)

var demoPoints = []point.CreateInput{
	{Name: "Red Square", Description: strPtr("The main square of Moscow"), Latitude: "55.7539", Longitude: "37.6208"},
	{Name: "Saint Basil's Cathedral", Description: strPtr("Orthodox church on Red Square"), Latitude: "55.7525", Longitude: "37.6231"},
	{Name: "GUM", Description: strPtr("The main department store"), Latitude: "55.7546", Longitude: "37.6215"},
}

// Run creates the demo data unless the demo user already exists.
func Run(ctx context.Context, users *user.Service, tours *tour.Service, points *point.Service, log *zap.Logger) error {
	log = logger.OrNop(log)

	exists, err := users.ExistsByUsername(ctx, DemoUsername)
	if err != nil {
		return fmt.Errorf("seed: check demo user: %w", err)
	}
	if exists {
		log.Debug("demo data already present")
		return nil
	}

	u, err := users.CreateUser(ctx, DemoUsername, DemoPassword)
	if err != nil {
		return fmt.Errorf("seed: create user: %w", err)
	}

	t, err := tours.CreateTour(ctx, tour.CreateInput{
		Name:        "Walk through central Moscow",
		Location:    "Moscow",
		Description: strPtr("A tour of the main sights in the centre of Moscow"),
		CreatedByID: &u.ID,
	})
	if err != nil {
		return fmt.Errorf("seed: create tour: %w", err)
	}

	for i, in := range demoPoints {
		order := i + 1
		in.TourID = t.ID
		in.Order = &order
		if _, err := points.CreatePoint(ctx, in); err != nil {
			return fmt.Errorf("seed: create point %q: %w", in.Name, err)
		}
	}

	log.Info("demo data created", zap.Int64("user_id", u.ID), zap.Int64("tour_id", t.ID))
	return nil
}

func strPtr(s string) *string { return &s }
