package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"carport-configurator/internal/catalog"
	"carport-configurator/internal/configuration"
	"carport-configurator/pkg/redis"
)

// Session is the explicit wizard session context: created when the first
// step is entered, carried through every step write, cleared after a
// successful submission. The product line is fixed at creation and cannot
// change mid-flow.
type Session struct {
	ID          string                  `json:"id"`
	ProductLine catalog.ProductLine     `json:"product_line"`
	Selection   configuration.Selection `json:"selection"`
	CreatedAt   time.Time               `json:"created_at"`
}

// Store keeps wizard sessions in Redis with a TTL, so an abandoned flow
// expires on its own.
type Store struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewStore(redisClient *redis.Client, ttl time.Duration, logger *zap.Logger) *Store {
	return &Store{
		redis:  redisClient,
		ttl:    ttl,
		logger: logger,
	}
}

// Start creates a fresh session for one product line.
func (s *Store) Start(ctx context.Context, line catalog.ProductLine) (*Session, error) {
	if !line.Valid() {
		return nil, fmt.Errorf("unknown product line: %q", line)
	}

	sess := &Session{
		ID:          uuid.NewString(),
		ProductLine: line,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}

	s.logger.Debug("Wizard session started",
		zap.String("session_id", sess.ID),
		zap.String("product_line", string(line)))

	return sess, nil
}

// Get retrieves a session by id.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	data, err := s.redis.Get(ctx, sessionKey(id))
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &sess, nil
}

// SetStep writes one step's value into the session selection.
func (s *Store) SetStep(ctx context.Context, id string, key configuration.StepKey, value json.RawMessage) (*Session, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := sess.Selection.ApplyStep(key, value); err != nil {
		return nil, err
	}

	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}

	return sess, nil
}

// Clear removes the session. Called after a successful submission and from
// the explicit abandon endpoint.
func (s *Store) Clear(ctx context.Context, id string) error {
	if err := s.redis.Del(ctx, sessionKey(id)); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (s *Store) save(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.redis.Set(ctx, sessionKey(sess.ID), data, s.ttl); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}
