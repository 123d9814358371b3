package point

import (
	"context"

	"backend-travelcompanion/internal/apperr"
	"backend-travelcompanion/internal/cache"
	"backend-travelcompanion/internal/db"
	"backend-travelcompanion/internal/stream"
)

const pointColumns = `id, tour_id, name, description, latitude, longitude,
		       photo_filename, audio_filename, video_filename, display_order`

type Service struct {
	db     db.Querier
	cache  *cache.Cache
	events stream.Publisher
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) WithCache(c *cache.Cache) *Service {
	s.cache = c
	return s
}

func (s *Service) WithEvents(p stream.Publisher) *Service {
	s.events = p
	return s
}

// WithQuerier returns a copy of s that runs its statements on q,
// typically a pgx.Tx owned by the caller. The copy neither touches the
// cache nor publishes events; the caller does both after commit.
func (s *Service) WithQuerier(q db.Querier) *Service {
	cp := *s
	cp.db = q
	cp.cache = nil
	cp.events = nil
	return &cp
}

func (s *Service) CreatePoint(ctx context.Context, input CreateInput) (Point, error) {
	if err := s.ensureTour(ctx, input.TourID); err != nil {
		return Point{}, err
	}

	p := Point{
		TourID:        input.TourID,
		Name:          input.Name,
		Description:   input.Description,
		Latitude:      input.Latitude,
		Longitude:     input.Longitude,
		PhotoFilename: input.PhotoFilename,
		AudioFilename: input.AudioFilename,
		VideoFilename: input.VideoFilename,
		Order:         input.Order,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO points_of_interest (tour_id, name, description, latitude, longitude,
		                                photo_filename, audio_filename, video_filename, display_order)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id
	`, p.TourID, p.Name, p.Description, p.Latitude, p.Longitude, p.PhotoFilename, p.AudioFilename, p.VideoFilename, p.Order)
	if err := row.Scan(&p.ID); err != nil {
		if db.IsForeignKeyViolation(err) {
			return Point{}, apperr.NotFound("tour %d not found", p.TourID)
		}
		return Point{}, err
	}

	s.cache.Delete(ctx, cache.TourPointsKey(p.TourID))
	s.publish(p.TourID, stream.PointCreated, p)
	return p, nil
}

func (s *Service) GetPointByID(ctx context.Context, id int64) (Point, error) {
	var p Point
	err := s.cache.CacheAside(ctx, cache.PointKey(id), &p, func() (err error) {
		p, err = s.load(ctx, id)
		return err
	})
	return p, err
}

// GetPointsByTourID lists a tour's points by ascending display order.
// Points without an order sort last; ties keep insertion order.
func (s *Service) GetPointsByTourID(ctx context.Context, tourID int64) ([]Point, error) {
	points := []Point{}
	err := s.cache.CacheAside(ctx, cache.TourPointsKey(tourID), &points, func() error {
		fetched := []Point{}
		rows, err := s.db.Query(ctx, `
			SELECT `+pointColumns+`
			FROM points_of_interest WHERE tour_id=$1
			ORDER BY display_order ASC NULLS LAST, id ASC
		`, tourID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var p Point
			if err := scanPoint(rows, &p); err != nil {
				return err
			}
			fetched = append(fetched, p)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		points = fetched
		return nil
	})
	if err != nil {
		return nil, err
	}
	return points, nil
}

// UpdatePoint applies a PUT body. Name, latitude and longitude change only
// when present. Description, media filenames and order are always replaced,
// so omitting them clears them. A differing tourId moves the point.
func (s *Service) UpdatePoint(ctx context.Context, id int64, input UpdateInput) (Point, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return Point{}, err
	}
	previousTour := p.TourID

	if input.TourID != nil && *input.TourID != p.TourID {
		if err := s.ensureTour(ctx, *input.TourID); err != nil {
			return Point{}, err
		}
		p.TourID = *input.TourID
	}
	applyIfPresent(&p, input)
	applyReplacing(&p, input)

	_, err = s.db.Exec(ctx, `
		UPDATE points_of_interest
		SET tour_id=$2, name=$3, description=$4, latitude=$5, longitude=$6,
		    photo_filename=$7, audio_filename=$8, video_filename=$9, display_order=$10
		WHERE id=$1
	`, p.ID, p.TourID, p.Name, p.Description, p.Latitude, p.Longitude, p.PhotoFilename, p.AudioFilename, p.VideoFilename, p.Order)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return Point{}, apperr.NotFound("tour %d not found", p.TourID)
		}
		return Point{}, err
	}

	s.cache.Delete(ctx, cache.PointKey(p.ID), cache.TourPointsKey(previousTour), cache.TourPointsKey(p.TourID))
	if previousTour != p.TourID {
		s.publish(previousTour, stream.PointDeleted, p)
		s.publish(p.TourID, stream.PointCreated, p)
	} else {
		s.publish(p.TourID, stream.PointUpdated, p)
	}
	return p, nil
}

func applyIfPresent(p *Point, input UpdateInput) {
	if input.Name != nil {
		p.Name = *input.Name
	}
	if input.Latitude != nil {
		p.Latitude = *input.Latitude
	}
	if input.Longitude != nil {
		p.Longitude = *input.Longitude
	}
}

func applyReplacing(p *Point, input UpdateInput) {
	p.Description = input.Description
	p.PhotoFilename = input.PhotoFilename
	p.AudioFilename = input.AudioFilename
	p.VideoFilename = input.VideoFilename
	p.Order = input.Order
}

func (s *Service) DeletePoint(ctx context.Context, id int64) error {
	var tourID int64
	err := s.db.QueryRow(ctx, `DELETE FROM points_of_interest WHERE id=$1 RETURNING tour_id`, id).Scan(&tourID)
	if err != nil {
		if db.IsNoRows(err) {
			return apperr.NotFound("point %d not found", id)
		}
		return err
	}

	s.cache.Delete(ctx, cache.PointKey(id), cache.TourPointsKey(tourID))
	s.publish(tourID, stream.PointDeleted, map[string]int64{"id": id})
	return nil
}

// DeletePointsByTourID removes every point of a tour and returns their ids.
// On a copy from WithQuerier the caller drops the cached points.
func (s *Service) DeletePointsByTourID(ctx context.Context, tourID int64) ([]int64, error) {
	rows, err := s.db.Query(ctx, `DELETE FROM points_of_interest WHERE tour_id=$1 RETURNING id`, tourID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	keys := []string{cache.TourPointsKey(tourID)}
	for _, id := range ids {
		keys = append(keys, cache.PointKey(id))
	}
	s.cache.Delete(ctx, keys...)
	return ids, nil
}

func (s *Service) load(ctx context.Context, id int64) (Point, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+pointColumns+`
		FROM points_of_interest WHERE id=$1
	`, id)
	var p Point
	if err := scanPoint(row, &p); err != nil {
		if db.IsNoRows(err) {
			return Point{}, apperr.NotFound("point %d not found", id)
		}
		return Point{}, err
	}
	return p, nil
}

func (s *Service) ensureTour(ctx context.Context, tourID int64) error {
	var ok bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tours WHERE id=$1)`, tourID).Scan(&ok); err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("tour %d not found", tourID)
	}
	return nil
}

func (s *Service) publish(tourID int64, kind string, data any) {
	if s.events == nil {
		return
	}
	s.events.Publish(tourID, stream.Event{Type: kind, Data: data})
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPoint(row scanner, p *Point) error {
	return row.Scan(&p.ID, &p.TourID, &p.Name, &p.Description, &p.Latitude, &p.Longitude,
		&p.PhotoFilename, &p.AudioFilename, &p.VideoFilename, &p.Order)
}
