package recipes

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartdalle/smartdalle/pkg/pg"
)

// PGStore implements RecipeStore on Postgres.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a Postgres-backed store. Panics if pool is nil.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	if pool == nil {
		panic("recipes: pgxpool is required")
	}
	return &PGStore{pool: pool}
}

func (s *PGStore) List(ctx context.Context, includePremium bool) ([]Recipe, error) {
	query := `SELECT id, title, description, calories, protein_g, premium
		 FROM recipes`
	if !includePremium {
		query += ` WHERE premium = false`
	}
	query += ` ORDER BY title`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipes []Recipe
	for rows.Next() {
		var r Recipe
		if err := rows.Scan(&r.ID, &r.Title, &r.Description, &r.Calories, &r.ProteinG, &r.Premium); err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}
	return recipes, rows.Err()
}

func (s *PGStore) Get(ctx context.Context, id uuid.UUID) (*Recipe, error) {
	var r Recipe
	err := s.pool.QueryRow(ctx,
		`SELECT id, title, description, calories, protein_g, premium
		 FROM recipes WHERE id = $1`, id,
	).Scan(&r.ID, &r.Title, &r.Description, &r.Calories, &r.ProteinG, &r.Premium)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	return &r, nil
}
