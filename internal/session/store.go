package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"mypetsvoice/backend/internal/prompt"
)

var (
	// ErrNoSession means the session has no persona bound yet
	ErrNoSession = errors.New("session: no persona bound")
	// ErrUnknownTurn means the sequence number matches no open turn
	ErrUnknownTurn = errors.New("session: unknown turn sequence")
)

// Turn is one user/bot exchange. A turn opens when the user message is
// appended and completes when the bot reply is paired to it by sequence
// number, so two identical user texts can never collide.
type Turn struct {
	Seq       uint64    `json:"seq"`
	UserText  string    `json:"user_text"`
	BotText   string    `json:"bot_text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

// State is everything kept for one realtime session. NextSeq is monotonic
// for the session's whole lifetime, surviving Reset and rebind; a sequence
// number is never reissued, so a reply whose turn was cleared can only miss,
// never pair to a later turn.
type State struct {
	Persona prompt.PetProfile `json:"persona"`
	Turns   []Turn            `json:"turns"`
	NextSeq uint64            `json:"next_seq"`
}

// Store keeps per-session persona and conversation state for the realtime
// variant. Implementations must be safe for concurrent use; each session is
// only ever written by its own connection handler.
type Store interface {
	// BindPersona attaches a persona to the session and discards any
	// existing conversation
	BindPersona(ctx context.Context, id string, persona prompt.PetProfile) error
	// Persona returns the bound persona or ErrNoSession
	Persona(ctx context.Context, id string) (prompt.PetProfile, error)
	// AppendUserTurn opens a new turn and returns its sequence number
	AppendUserTurn(ctx context.Context, id, text string) (uint64, error)
	// CompleteTurn pairs the bot reply to the turn opened under seq
	CompleteTurn(ctx context.Context, id string, seq uint64, botText string) error
	// History returns completed turns in chronological order
	History(ctx context.Context, id string) ([]Turn, error)
	// RecentTurns returns at most n of the latest completed turns,
	// chronological
	RecentTurns(ctx context.Context, id string, n int) ([]Turn, error)
	// Reset clears the conversation but keeps the persona bound
	Reset(ctx context.Context, id string) error
	// Delete removes the session entirely
	Delete(ctx context.Context, id string) error
}

// MemoryStore is the in-process Store used by default and in tests
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*State)}
}

func (s *MemoryStore) BindPersona(ctx context.Context, id string, persona prompt.PetProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := uint64(1)
	if prev, ok := s.sessions[id]; ok {
		next = prev.NextSeq
	}
	s.sessions[id] = &State{Persona: persona, NextSeq: next}
	return nil
}

func (s *MemoryStore) Persona(ctx context.Context, id string) (prompt.PetProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.sessions[id]
	if !ok {
		return prompt.PetProfile{}, ErrNoSession
	}
	return state.Persona, nil
}

func (s *MemoryStore) AppendUserTurn(ctx context.Context, id, text string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.sessions[id]
	if !ok {
		return 0, ErrNoSession
	}
	return openTurn(state, text), nil
}

func (s *MemoryStore) CompleteTurn(ctx context.Context, id string, seq uint64, botText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.sessions[id]
	if !ok {
		return ErrNoSession
	}
	return closeTurn(state, seq, botText)
}

func (s *MemoryStore) History(ctx context.Context, id string) ([]Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.sessions[id]
	if !ok {
		return nil, ErrNoSession
	}
	return completedTurns(state), nil
}

func (s *MemoryStore) RecentTurns(ctx context.Context, id string, n int) ([]Turn, error) {
	turns, err := s.History(ctx, id)
	if err != nil {
		return nil, err
	}
	return latestTurns(turns, n), nil
}

func (s *MemoryStore) Reset(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.sessions[id]
	if !ok {
		return ErrNoSession
	}
	state.Turns = nil
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// openTurn and closeTurn hold the pairing rules shared by both stores.

func openTurn(state *State, text string) uint64 {
	seq := state.NextSeq
	state.NextSeq++
	state.Turns = append(state.Turns, Turn{
		Seq:       seq,
		UserText:  text,
		CreatedAt: time.Now(),
	})
	return seq
}

func closeTurn(state *State, seq uint64, botText string) error {
	// Open turns cluster at the tail, so scan backwards
	for i := len(state.Turns) - 1; i >= 0; i-- {
		if state.Turns[i].Seq == seq {
			if state.Turns[i].Completed {
				return ErrUnknownTurn
			}
			state.Turns[i].BotText = botText
			state.Turns[i].Completed = true
			return nil
		}
	}
	return ErrUnknownTurn
}

func completedTurns(state *State) []Turn {
	out := make([]Turn, 0, len(state.Turns))
	for _, t := range state.Turns {
		if t.Completed {
			out = append(out, t)
		}
	}
	return out
}

func latestTurns(turns []Turn, n int) []Turn {
	if n >= 0 && len(turns) > n {
		return turns[len(turns)-n:]
	}
	return turns
}

// PromptTurns flattens completed turns into the alternating sender/content
// form the prompt builder takes
func PromptTurns(turns []Turn) []prompt.Turn {
	out := make([]prompt.Turn, 0, len(turns)*2)
	for _, t := range turns {
		out = append(out,
			prompt.Turn{Sender: "user", Content: t.UserText},
			prompt.Turn{Sender: "bot", Content: t.BotText},
		)
	}
	return out
}
