package content

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// ErrNotFound is returned for unknown set ids.
var ErrNotFound = errors.New("set not found")

// Store persists question sets. Sets are validated before they reach a store.
type Store interface {
	PutSet(ctx context.Context, s Set) error
	GetSet(ctx context.Context, id string) (Set, error)
	ListSets(ctx context.Context) ([]Summary, error)
}

type memoryStore struct {
	mu   sync.RWMutex
	sets map[string]Set
}

func NewInMemoryStore() Store {
	return &memoryStore{sets: map[string]Set{}}
}

func (m *memoryStore) PutSet(_ context.Context, s Set) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.CreatedAt == 0 {
		s.CreatedAt = time.Now().Unix()
	}
	m.sets[s.ID] = s
	return nil
}

func (m *memoryStore) GetSet(_ context.Context, id string) (Set, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sets[id]
	if !ok {
		return Set{}, errors.Wrap(ErrNotFound, id)
	}
	return s, nil
}

func (m *memoryStore) ListSets(_ context.Context) ([]Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Summary, 0, len(m.sets))
	for _, s := range m.sets {
		out = append(out, s.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Seed stores every set that the store doesn't already have and returns the
// ids it added.
func Seed(ctx context.Context, st Store, sets []Set) ([]string, error) {
	var added []string
	for _, s := range sets {
		_, err := st.GetSet(ctx, s.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return added, err
		}
		if err := st.PutSet(ctx, s); err != nil {
			return added, errors.Wrapf(err, "seed %s", s.ID)
		}
		added = append(added, s.ID)
	}
	return added, nil
}
