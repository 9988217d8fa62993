package reset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/cropcareapp/cropcare-backend/pkg/redis"
)

// ErrNotFound is returned when a flow has no outstanding code or gate.
var ErrNotFound = errors.New("reset flow state not found")

// FlowState is the per-flow record: the outstanding one-time code and the
// account that requested it. Carrying the username keeps a flow verified
// for one account from resetting another.
type FlowState struct {
	Code     string `json:"code"`
	Username string `json:"username"`
}

// FlowStore persists the per-flow recovery state: the outstanding code and
// the reset-session gate, both owned by one account. Both expire on their
// own.
type FlowStore interface {
	SaveCode(ctx context.Context, flowID string, state FlowState, ttl time.Duration) error
	TakeCode(ctx context.Context, flowID string) (FlowState, error)
	OpenGate(ctx context.Context, flowID, username string, ttl time.Duration) error
	GateOwner(ctx context.Context, flowID string) (string, error)
	CloseGate(ctx context.Context, flowID string) error
}

// RedisFlowStore keeps flow state in Redis under namespaced keys.
type RedisFlowStore struct {
	client *redis.Client
}

// NewRedisFlowStore wraps the shared Redis client.
func NewRedisFlowStore(client *redis.Client) *RedisFlowStore {
	return &RedisFlowStore{client: client}
}

func (s *RedisFlowStore) SaveCode(ctx context.Context, flowID string, state FlowState, ttl time.Duration) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode flow state: %w", err)
	}
	return s.client.Set(ctx, s.client.ResetOTPKey(flowID), payload, ttl)
}

// TakeCode returns the outstanding flow state and removes it, making every
// code single-use regardless of the verification outcome that follows.
func (s *RedisFlowStore) TakeCode(ctx context.Context, flowID string) (FlowState, error) {
	key := s.client.ResetOTPKey(flowID)
	raw, err := s.client.Get(ctx, key)
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return FlowState{}, ErrNotFound
		}
		return FlowState{}, err
	}
	if err := s.client.Del(ctx, key); err != nil {
		return FlowState{}, err
	}

	var state FlowState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return FlowState{}, fmt.Errorf("decode flow state: %w", err)
	}
	return state, nil
}

// OpenGate records the account the gate was opened for.
func (s *RedisFlowStore) OpenGate(ctx context.Context, flowID, username string, ttl time.Duration) error {
	return s.client.Set(ctx, s.client.ResetSessionKey(flowID), username, ttl)
}

// GateOwner returns the account a flow's open gate belongs to, or
// ErrNotFound when the gate is closed.
func (s *RedisFlowStore) GateOwner(ctx context.Context, flowID string) (string, error) {
	owner, err := s.client.Get(ctx, s.client.ResetSessionKey(flowID))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", ErrNotFound
		}
		return "", err
	}
	return owner, nil
}

func (s *RedisFlowStore) CloseGate(ctx context.Context, flowID string) error {
	return s.client.Del(ctx, s.client.ResetSessionKey(flowID))
}
