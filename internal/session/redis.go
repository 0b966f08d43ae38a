package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"mypetsvoice/backend/internal/prompt"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// RedisStore keeps session state in Redis so realtime conversations survive
// process restarts. State is one JSON blob per session; read-modify-write is
// safe because a session is only written by its own connection handler.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) BindPersona(ctx context.Context, id string, persona prompt.PetProfile) error {
	next := uint64(1)
	state, err := s.load(ctx, id)
	switch {
	case err == nil:
		next = state.NextSeq
	case err != ErrNoSession:
		return err
	}
	return s.save(ctx, id, &State{Persona: persona, NextSeq: next})
}

func (s *RedisStore) Persona(ctx context.Context, id string) (prompt.PetProfile, error) {
	state, err := s.load(ctx, id)
	if err != nil {
		return prompt.PetProfile{}, err
	}
	return state.Persona, nil
}

func (s *RedisStore) AppendUserTurn(ctx context.Context, id, text string) (uint64, error) {
	state, err := s.load(ctx, id)
	if err != nil {
		return 0, err
	}
	seq := openTurn(state, text)
	if err := s.save(ctx, id, state); err != nil {
		return 0, err
	}
	return seq, nil
}

func (s *RedisStore) CompleteTurn(ctx context.Context, id string, seq uint64, botText string) error {
	state, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := closeTurn(state, seq, botText); err != nil {
		return err
	}
	return s.save(ctx, id, state)
}

func (s *RedisStore) History(ctx context.Context, id string) ([]Turn, error) {
	state, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return completedTurns(state), nil
}

func (s *RedisStore) RecentTurns(ctx context.Context, id string, n int) ([]Turn, error) {
	turns, err := s.History(ctx, id)
	if err != nil {
		return nil, err
	}
	return latestTurns(turns, n), nil
}

func (s *RedisStore) Reset(ctx context.Context, id string) error {
	state, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	state.Turns = nil
	return s.save(ctx, id, state)
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, keyPrefix+id).Err()
}

func (s *RedisStore) load(ctx context.Context, id string) (*State, error) {
	data, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("session: load %s: %w", id, err)
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("session: decode %s: %w", id, err)
	}
	return &state, nil
}

func (s *RedisStore) save(ctx context.Context, id string, state *State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("session: encode %s: %w", id, err)
	}
	if err := s.client.Set(ctx, keyPrefix+id, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("session: save %s: %w", id, err)
	}
	return nil
}
