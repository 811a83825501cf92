package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/hapkiduki/apnacart/internal/domain/entity"
	"github.com/hapkiduki/apnacart/internal/domain/repository"
	"github.com/hapkiduki/apnacart/internal/domain/valueobject"
)

const vegetableColumns = `id, name, weight_unit, image_url, created_at, updated_at`

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// VegetableRepository stores the catalog in the vegetables table.
type VegetableRepository struct {
	db *DB
}

var _ repository.VegetableRepository = (*VegetableRepository)(nil)

// NewVegetableRepository creates a repository over db.
func NewVegetableRepository(db *DB) *VegetableRepository {
	return &VegetableRepository{db: db}
}

// Create inserts a vegetable and sets its ID.
func (r *VegetableRepository) Create(ctx context.Context, v *entity.Vegetable) error {
	return r.insert(ctx, r.db, v)
}

func (r *VegetableRepository) insert(ctx context.Context, q queryer, v *entity.Vegetable) error {
	d := r.db.dialect
	query := d.Rebind(`INSERT INTO vegetables (name, weight_unit, image_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?) RETURNING id`)

	err := q.QueryRowContext(ctx, query,
		v.Name,
		v.FixedWeight.String(),
		nullString(v.ImageURL),
		d.timeArg(v.CreatedAt),
		d.timeArg(v.UpdatedAt),
	).Scan(&v.ID)
	if err != nil {
		if d.isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", repository.ErrDuplicateVegetable, v.Name)
		}
		return fmt.Errorf("insert vegetable: %w", err)
	}
	return nil
}

// GetByID loads one vegetable.
func (r *VegetableRepository) GetByID(ctx context.Context, id int) (*entity.Vegetable, error) {
	query := r.db.dialect.Rebind(`SELECT ` + vegetableColumns + ` FROM vegetables WHERE id = ?`)

	v, err := scanVegetable(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrVegetableNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get vegetable %d: %w", id, err)
	}
	return v, nil
}

// Update writes name, weight and image of an existing vegetable.
func (r *VegetableRepository) Update(ctx context.Context, v *entity.Vegetable) error {
	d := r.db.dialect
	query := d.Rebind(`UPDATE vegetables
		SET name = ?, weight_unit = ?, image_url = ?, updated_at = ?
		WHERE id = ?`)

	res, err := r.db.ExecContext(ctx, query,
		v.Name,
		v.FixedWeight.String(),
		nullString(v.ImageURL),
		d.timeArg(v.UpdatedAt),
		v.ID,
	)
	if err != nil {
		if d.isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", repository.ErrDuplicateVegetable, v.Name)
		}
		return fmt.Errorf("update vegetable %d: %w", v.ID, err)
	}
	return expectOneRow(res)
}

// Delete removes a vegetable.
func (r *VegetableRepository) Delete(ctx context.Context, id int) error {
	query := r.db.dialect.Rebind(`DELETE FROM vegetables WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete vegetable %d: %w", id, err)
	}
	return expectOneRow(res)
}

// FindAll lists vegetables newest first.
func (r *VegetableRepository) FindAll(ctx context.Context, filter repository.VegetableFilter) ([]*entity.Vegetable, error) {
	where, args := buildWhere(filter)
	query := `SELECT ` + vegetableColumns + ` FROM vegetables` + where + ` ORDER BY created_at DESC, id DESC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		if filter.Limit <= 0 && r.db.dialect == SQLite {
			query += ` LIMIT -1`
		}
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, r.db.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list vegetables: %w", err)
	}
	defer rows.Close()

	vegetables := make([]*entity.Vegetable, 0)
	for rows.Next() {
		v, err := scanVegetable(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vegetable: %w", err)
		}
		vegetables = append(vegetables, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list vegetables: %w", err)
	}
	return vegetables, nil
}

// Count counts vegetables matching the filter.
func (r *VegetableRepository) Count(ctx context.Context, filter repository.VegetableFilter) (int64, error) {
	where, args := buildWhere(filter)
	query := r.db.dialect.Rebind(`SELECT COUNT(*) FROM vegetables` + where)

	var count int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count vegetables: %w", err)
	}
	return count, nil
}

// ReplaceAll swaps the whole catalog inside one transaction.
func (r *VegetableRepository) ReplaceAll(ctx context.Context, vegetables []*entity.Vegetable) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", repository.ErrTransactionFailed, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM vegetables`); err != nil {
		return fmt.Errorf("%w: clear catalog: %v", repository.ErrTransactionFailed, err)
	}
	for _, v := range vegetables {
		if err := r.insert(ctx, tx, v); err != nil {
			return fmt.Errorf("%w: %w", repository.ErrTransactionFailed, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", repository.ErrTransactionFailed, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVegetable(row rowScanner) (*entity.Vegetable, error) {
	var (
		v         entity.Vegetable
		weight    string
		image     sql.NullString
		createdAt timestamp
		updatedAt timestamp
	)
	if err := row.Scan(&v.ID, &v.Name, &weight, &image, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	token, err := valueobject.ParseWeightToken(weight)
	if err != nil {
		return nil, fmt.Errorf("vegetable %d: %w", v.ID, err)
	}
	v.FixedWeight = token
	v.ImageURL = image.String
	v.CreatedAt = createdAt.Time
	v.UpdatedAt = updatedAt.Time
	return &v, nil
}

func buildWhere(filter repository.VegetableFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if term := strings.TrimSpace(filter.SearchTerm); term != "" {
		clauses = append(clauses, `LOWER(name) LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(strings.ToLower(term))+"%")
	}
	if filter.Weight != nil {
		clauses = append(clauses, `weight_unit = ?`)
		args = append(args, filter.Weight.String())
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrVegetableNotFound
	}
	return nil
}
