package tour

import (
	"context"

	"backend-travelcompanion/internal/apperr"
	"backend-travelcompanion/internal/cache"
	"backend-travelcompanion/internal/db"
	"backend-travelcompanion/internal/point"
	"backend-travelcompanion/internal/stream"
	"backend-travelcompanion/internal/user"
)

type Service struct {
	db     db.Querier
	users  *user.Service
	points *point.Service
	cache  *cache.Cache
	events stream.Publisher
}

func NewService(db db.Querier, users *user.Service, points *point.Service) *Service {
	return &Service{db: db, users: users, points: points}
}

func (s *Service) WithCache(c *cache.Cache) *Service {
	s.cache = c
	return s
}

func (s *Service) WithEvents(p stream.Publisher) *Service {
	s.events = p
	return s
}

func (s *Service) CreateTour(ctx context.Context, input CreateInput) (Tour, error) {
	if input.CreatedByID != nil {
		if _, err := s.users.GetUserByID(ctx, *input.CreatedByID); err != nil {
			return Tour{}, err
		}
	}

	t := Tour{
		Name:        input.Name,
		Location:    input.Location,
		Description: input.Description,
		CreatedByID: input.CreatedByID,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO tours (name, location, description, created_by_id)
		VALUES ($1,$2,$3,$4)
		RETURNING id
	`, t.Name, t.Location, t.Description, t.CreatedByID)
	if err := row.Scan(&t.ID); err != nil {
		return Tour{}, err
	}

	s.cache.Delete(ctx, s.listKeys(t.CreatedByID)...)
	s.publish(t.ID, stream.TourCreated, t)
	return t, nil
}

func (s *Service) GetTourByID(ctx context.Context, id int64) (Tour, error) {
	var t Tour
	err := s.cache.CacheAside(ctx, cache.TourKey(id), &t, func() (err error) {
		t, err = s.load(ctx, id)
		return err
	})
	return t, err
}

func (s *Service) GetAllTours(ctx context.Context) ([]Tour, error) {
	tours := []Tour{}
	err := s.cache.CacheAside(ctx, cache.AllToursKey, &tours, func() (err error) {
		tours, err = s.list(ctx, `
			SELECT id, name, location, description, created_by_id
			FROM tours ORDER BY id
		`)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tours, nil
}

// GetToursByUser lists the tours created by userID, which must exist.
func (s *Service) GetToursByUser(ctx context.Context, userID int64) ([]Tour, error) {
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}

	tours := []Tour{}
	err := s.cache.CacheAside(ctx, cache.UserToursKey(userID), &tours, func() (err error) {
		tours, err = s.list(ctx, `
			SELECT id, name, location, description, created_by_id
			FROM tours WHERE created_by_id=$1 ORDER BY id
		`, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tours, nil
}

func (s *Service) UpdateTour(ctx context.Context, id int64, input UpdateInput) (Tour, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return Tour{}, err
	}
	previousCreator := t.CreatedByID

	if input.Name != nil {
		t.Name = *input.Name
	}
	if input.Location != nil {
		t.Location = *input.Location
	}
	t.Description = input.Description
	if input.CreatedByID != nil {
		if _, err := s.users.GetUserByID(ctx, *input.CreatedByID); err != nil {
			return Tour{}, err
		}
		t.CreatedByID = input.CreatedByID
	}

	_, err = s.db.Exec(ctx, `
		UPDATE tours
		SET name=$2, location=$3, description=$4, created_by_id=$5
		WHERE id=$1
	`, t.ID, t.Name, t.Location, t.Description, t.CreatedByID)
	if err != nil {
		return Tour{}, err
	}

	keys := append(s.listKeys(previousCreator), cache.TourKey(id))
	if t.CreatedByID != nil {
		keys = append(keys, cache.UserToursKey(*t.CreatedByID))
	}
	s.cache.Delete(ctx, keys...)
	s.publish(t.ID, stream.TourUpdated, t)
	return t, nil
}

// DeleteTour removes a tour together with its points in one transaction.
func (s *Service) DeleteTour(ctx context.Context, id int64) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}

	pointIDs, err := s.points.WithQuerier(tx).DeletePointsByTourID(ctx, id)
	if err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	var creator *int64
	err = tx.QueryRow(ctx, `DELETE FROM tours WHERE id=$1 RETURNING created_by_id`, id).Scan(&creator)
	if err != nil {
		_ = tx.Rollback(ctx)
		if db.IsNoRows(err) {
			return apperr.NotFound("tour %d not found", id)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	keys := append(s.listKeys(creator), cache.TourKey(id), cache.TourPointsKey(id))
	for _, pointID := range pointIDs {
		keys = append(keys, cache.PointKey(pointID))
	}
	s.cache.Delete(ctx, keys...)
	s.publish(id, stream.TourDeleted, map[string]int64{"id": id})
	return nil
}

func (s *Service) load(ctx context.Context, id int64) (Tour, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, location, description, created_by_id
		FROM tours WHERE id=$1
	`, id)
	var t Tour
	if err := row.Scan(&t.ID, &t.Name, &t.Location, &t.Description, &t.CreatedByID); err != nil {
		if db.IsNoRows(err) {
			return Tour{}, apperr.NotFound("tour %d not found", id)
		}
		return Tour{}, err
	}
	return t, nil
}

func (s *Service) list(ctx context.Context, sql string, args ...any) ([]Tour, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tours := []Tour{}
	for rows.Next() {
		var t Tour
		if err := rows.Scan(&t.ID, &t.Name, &t.Location, &t.Description, &t.CreatedByID); err != nil {
			return nil, err
		}
		tours = append(tours, t)
	}
	return tours, rows.Err()
}

// listKeys are the cached lists a tour of creator appears in.
func (s *Service) listKeys(creator *int64) []string {
	keys := []string{cache.AllToursKey}
	if creator != nil {
		keys = append(keys, cache.UserToursKey(*creator))
	}
	return keys
}

func (s *Service) publish(tourID int64, kind string, data any) {
	if s.events == nil {
		return
	}
	s.events.Publish(tourID, stream.Event{Type: kind, Data: data})
}
