package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"tefillin-reminder-bot/internal/domain/ports/repository"
)

var _ repository.StateRepository = (*StateRepo)(nil)

// StateRepo manages user conversational state in Redis.
type StateRepo struct {
	client *redClient
	ttl    time.Duration
}

func NewStateRepo(client *redClient) *StateRepo {
	return &StateRepo{
		client: client,
		ttl:    15 * time.Minute, // Give users 15 minutes to complete any conversational flow.
	}
}

func (s *StateRepo) stateKey(userID int64) string {
	return fmt.Sprintf("conv_state:%d", userID)
}

func (s *StateRepo) SetState(ctx context.Context, userID int64, state string) error {
	return s.client.Set(ctx, s.stateKey(userID), state, s.ttl)
}

func (s *StateRepo) GetState(ctx context.Context, userID int64) (string, error) {
	v, err := s.client.Get(ctx, s.stateKey(userID))
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (s *StateRepo) ClearState(ctx context.Context, userID int64) error {
	return s.client.Del(ctx, s.stateKey(userID))
}
