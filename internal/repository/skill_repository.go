package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/exchange-service/internal/domain"
)

// SkillRepository reads the habilidad taxonomy. Taxonomy writes happen
// through an external catalog collaborator.
type SkillRepository interface {
	List(ctx context.Context) ([]domain.Skill, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Skill, error)
}

type skillRepository struct {
	pool *pgxpool.Pool
}

// NewSkillRepository instantiates repository.
func NewSkillRepository(pool *pgxpool.Pool) SkillRepository {
	return &skillRepository{pool: pool}
}

func (r *skillRepository) List(ctx context.Context) ([]domain.Skill, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, nombre FROM habilidad ORDER BY nombre`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Skill
	for rows.Next() {
		var skill domain.Skill
		if err := rows.Scan(&skill.ID, &skill.Name); err != nil {
			return nil, err
		}
		result = append(result, skill)
	}
	return result, rows.Err()
}

func (r *skillRepository) ListByUser(ctx context.Context, userID string) ([]domain.Skill, error) {
	const query = `SELECT h.id, h.nombre
        FROM habilidad h
        JOIN usuario_habilidad uh ON uh.id_habilidad = h.id
        WHERE uh.id_usuario=$1
        ORDER BY h.nombre`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Skill
	for rows.Next() {
		var skill domain.Skill
		if err := rows.Scan(&skill.ID, &skill.Name); err != nil {
			return nil, err
		}
		result = append(result, skill)
	}
	return result, rows.Err()
}
