package repository

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"synthetic-audience/internal/domain"
)

// ErrArchetypeNotFound se devuelve cuando el catalogo no conoce el id.
var ErrArchetypeNotFound = errors.New("archetype not found")

// ArchetypeRepository es el catalogo de arquetipos reutilizables entre experimentos.
type ArchetypeRepository interface {
	List(ctx context.Context) ([]domain.Archetype, error)
	GetByID(ctx context.Context, id string) (domain.Archetype, error)
	Upsert(ctx context.Context, a domain.Archetype) error
}

type PgArchetypeRepository struct {
	pool *pgxpool.Pool
}

func NewPgArchetypeRepository(pool *pgxpool.Pool) *PgArchetypeRepository {
	return &PgArchetypeRepository{pool: pool}
}

func (r *PgArchetypeRepository) List(ctx context.Context) ([]domain.Archetype, error) {
	const query = `
		SELECT id, name, description, characteristics, default_count
		FROM archetypes
		ORDER BY name, id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	archetypes := []domain.Archetype{}
	for rows.Next() {
		var a domain.Archetype
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.Characteristics, &a.Count); err != nil {
			return nil, err
		}
		archetypes = append(archetypes, a)
	}
	return archetypes, rows.Err()
}

func (r *PgArchetypeRepository) GetByID(ctx context.Context, id string) (domain.Archetype, error) {
	const query = `
		SELECT id, name, description, characteristics, default_count
		FROM archetypes
		WHERE id = $1
	`

	var a domain.Archetype
	err := r.pool.QueryRow(ctx, query, id).Scan(&a.ID, &a.Name, &a.Description, &a.Characteristics, &a.Count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Archetype{}, ErrArchetypeNotFound
		}
		return domain.Archetype{}, err
	}
	return a, nil
}

func (r *PgArchetypeRepository) Upsert(ctx context.Context, a domain.Archetype) error {
	const query = `
		INSERT INTO archetypes (id, name, description, characteristics, default_count)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id)
		DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			characteristics = EXCLUDED.characteristics,
			default_count = EXCLUDED.default_count,
			updated_at = now()
	`

	characteristics := a.Characteristics
	if characteristics == nil {
		characteristics = []string{}
	}
	_, err := r.pool.Exec(ctx, query, a.ID, a.Name, a.Description, characteristics, a.Count)
	return err
}

// MemoryArchetypeRepository es el catalogo en memoria, usado sin base de datos.
type MemoryArchetypeRepository struct {
	mu    sync.RWMutex
	items map[string]domain.Archetype
}

func NewMemoryArchetypeRepository(seed ...domain.Archetype) *MemoryArchetypeRepository {
	r := &MemoryArchetypeRepository{items: make(map[string]domain.Archetype, len(seed))}
	for _, a := range seed {
		r.items[a.ID] = a
	}
	return r
}

func (r *MemoryArchetypeRepository) List(_ context.Context) ([]domain.Archetype, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Archetype, 0, len(r.items))
	for _, a := range r.items {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryArchetypeRepository) GetByID(_ context.Context, id string) (domain.Archetype, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.items[id]
	if !ok {
		return domain.Archetype{}, ErrArchetypeNotFound
	}
	return a, nil
}

func (r *MemoryArchetypeRepository) Upsert(_ context.Context, a domain.Archetype) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[a.ID] = a
	return nil
}
