package roster

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/picu-roster/engine/pkg/errors"
	"github.com/picu-roster/engine/pkg/model"
)

// MemoryStore is the reference ProblemSource/RosterSink implementation:
// a process-local map, useful for tests and small one-shot runs. A real
// deployment's persistence layer implements both interfaces against its
// own storage instead.
type MemoryStore struct {
	mu       sync.RWMutex
	problems map[uuid.UUID]model.ProblemInput
	rosters  map[uuid.UUID]model.Roster
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		problems: make(map[uuid.UUID]model.ProblemInput),
		rosters:  make(map[uuid.UUID]model.Roster),
	}
}

// PutProblem registers in under jobID for a later Load call.
func (m *MemoryStore) PutProblem(jobID uuid.UUID, in model.ProblemInput) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.problems[jobID] = in
}

// Load implements ProblemSource.
func (m *MemoryStore) Load(ctx context.Context, jobID uuid.UUID) (model.ProblemInput, error) {
	if err := ctx.Err(); err != nil {
		return model.ProblemInput{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	in, ok := m.problems[jobID]
	if !ok {
		return model.ProblemInput{}, errors.New(errors.CodeInvalidInput, fmt.Sprintf("no problem registered for job %s", jobID))
	}
	return in, nil
}

// Save implements RosterSink.
func (m *MemoryStore) Save(ctx context.Context, jobID uuid.UUID, r model.Roster) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rosters[jobID] = r
	return nil
}

// Roster returns a previously saved roster, if any.
func (m *MemoryStore) Roster(jobID uuid.UUID) (model.Roster, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rosters[jobID]
	return r, ok
}
