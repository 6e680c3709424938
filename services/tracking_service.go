package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/pacekeeper/pacekeeper/models"
)

const trackingKeyPrefix = "tracking:session:"

// TrackingSession is the live state of one GPS recording, held in Redis under
// an explicit token owned by the caller. Starting returns the handle,
// finishing tears it down; there is no shared global callback.
type TrackingSession struct {
	Token     string              `json:"token"`
	UserID    uint                `json:"user_id"`
	StartedAt time.Time           `json:"started_at"`
	Points    []models.RoutePoint `json:"points"`
}

// TrackingService manages live workout recording sessions. A session
// accumulates GPS samples pushed by the client and, on finish, becomes an
// immutable workout fed through the completion handler.
type TrackingService struct {
	rdb     *redis.Client
	streaks *StreakService
	ttl     time.Duration
	now     func() time.Time
}

// NewTrackingService creates a TrackingService. Sessions not finished within
// ttl expire on their own.
func NewTrackingService(rdb *redis.Client, streaks *StreakService, ttl time.Duration) *TrackingService {
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &TrackingService{rdb: rdb, streaks: streaks, ttl: ttl, now: time.Now}
}

// Start opens a new tracking session and returns its handle.
func (s *TrackingService) Start(ctx context.Context, userID uint) (*TrackingSession, error) {
	session := &TrackingSession{
		Token:     uuid.NewString(),
		UserID:    userID,
		StartedAt: s.now(),
		Points:    []models.RoutePoint{},
	}
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// AppendPoints adds GPS samples to an open session.
func (s *TrackingService) AppendPoints(ctx context.Context, token string, userID uint, points []models.RoutePoint) (*TrackingSession, error) {
	session, err := s.load(ctx, token, userID)
	if err != nil {
		return nil, err
	}
	session.Points = append(session.Points, points...)
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Finish closes the session, persists the workout with the distance summed
// over its route, runs the completion handler, and deletes the session.
func (s *TrackingService) Finish(ctx context.Context, token string, userID uint) (*models.Workout, *WorkoutResult, error) {
	session, err := s.load(ctx, token, userID)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	route, err := json.Marshal(session.Points)
	if err != nil {
		return nil, nil, fmt.Errorf("encode route: %w", err)
	}

	workout, result, err := s.streaks.CompleteWorkout(userID, WorkoutInput{
		DistanceKm:  RouteDistanceKm(session.Points),
		DurationSec: int(now.Sub(session.StartedAt).Seconds()),
		Route:       string(route),
		StartedAt:   session.StartedAt,
		FinishedAt:  now,
	})
	if err != nil {
		return nil, nil, err
	}

	if err := s.rdb.Del(ctx, trackingKeyPrefix+token).Err(); err != nil {
		// The workout is already committed; an undeleted session only costs
		// its TTL.
		return workout, result, nil
	}
	return workout, result, nil
}

func (s *TrackingService) save(ctx context.Context, session *TrackingSession) error {
	b, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode tracking session: %w", err)
	}
	if err := s.rdb.Set(ctx, trackingKeyPrefix+session.Token, b, s.ttl).Err(); err != nil {
		return fmt.Errorf("store tracking session: %w", err)
	}
	return nil
}

func (s *TrackingService) load(ctx context.Context, token string, userID uint) (*TrackingSession, error) {
	b, err := s.rdb.Get(ctx, trackingKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load tracking session: %w", err)
	}
	var session TrackingSession
	if err := json.Unmarshal(b, &session); err != nil {
		return nil, fmt.Errorf("decode tracking session: %w", err)
	}
	if session.UserID != userID {
		return nil, ErrSessionForbidden
	}
	return &session, nil
}

const earthRadiusKm = 6371.0

// RouteDistanceKm sums the haversine distance over consecutive route points.
func RouteDistanceKm(points []models.RoutePoint) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += haversineKm(points[i-1], points[i])
	}
	return total
}

func haversineKm(a, b models.RoutePoint) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := lat2 - lat1
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}
