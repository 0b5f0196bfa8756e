package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Anketa/internal/domain"
)

// FormRepo — репозиторий для работы с forms и form_versions.
type FormRepo struct {
	pool *pgxpool.Pool
}

// NewFormRepo создаёт новый FormRepo.
func NewFormRepo(pool *pgxpool.Pool) *FormRepo {
	return &FormRepo{pool: pool}
}

// --- Form CRUD ---

// Create создаёт новую форму.
func (r *FormRepo) Create(ctx context.Context, form *domain.Form) error {
	query := `
		INSERT INTO forms (id, name, is_active, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.pool.Exec(ctx, query,
		form.ID,
		form.Name,
		form.IsActive,
		form.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert form: %w", err)
	}
	return nil
}

// GetByID возвращает форму по ID.
func (r *FormRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Form, error) {
	query := `
		SELECT id, name, is_active, created_at
		FROM forms
		WHERE id = $1
	`
	var form domain.Form
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&form.ID,
		&form.Name,
		&form.IsActive,
		&form.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get form by id: %w", err)
	}
	return &form, nil
}

// GetByName возвращает форму по имени.
func (r *FormRepo) GetByName(ctx context.Context, name string) (*domain.Form, error) {
	query := `
		SELECT id, name, is_active, created_at
		FROM forms
		WHERE name = $1
	`
	var form domain.Form
	err := r.pool.QueryRow(ctx, query, name).Scan(
		&form.ID,
		&form.Name,
		&form.IsActive,
		&form.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get form by name: %w", err)
	}
	return &form, nil
}

// List возвращает список всех форм.
func (r *FormRepo) List(ctx context.Context) ([]domain.Form, error) {
	query := `
		SELECT id, name, is_active, created_at
		FROM forms
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}
	defer rows.Close()

	var forms []domain.Form
	for rows.Next() {
		var form domain.Form
		if err := rows.Scan(
			&form.ID,
			&form.Name,
			&form.IsActive,
			&form.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan form: %w", err)
		}
		forms = append(forms, form)
	}
	return forms, rows.Err()
}

// Update обновляет форму.
func (r *FormRepo) Update(ctx context.Context, form *domain.Form) error {
	query := `
		UPDATE forms
		SET name = $2, is_active = $3
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query, form.ID, form.Name, form.IsActive)
	if err != nil {
		return fmt.Errorf("update form: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete удаляет форму (каскадно удалит versions и entries).
func (r *FormRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM forms WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete form: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- FormVersion CRUD ---

// CreateVersion публикует новую версию структуры формы.
// Номер версии автоматически инкрементируется.
func (r *FormRepo) CreateVersion(ctx context.Context, formID uuid.UUID, structure domain.Structure) (*domain.FormVersion, error) {
	structureJSON, err := json.Marshal(structure)
	if err != nil {
		return nil, fmt.Errorf("marshal structure: %w", err)
	}

	// Получаем следующий номер версии
	var nextVersion int
	err = r.pool.QueryRow(ctx, `
		SELECT COALESCE(MAX(version), 0) + 1
		FROM form_versions
		WHERE form_id = $1
	`, formID).Scan(&nextVersion)
	if err != nil {
		return nil, fmt.Errorf("get next version: %w", err)
	}

	var version domain.FormVersion
	err = r.pool.QueryRow(ctx, `
		INSERT INTO form_versions (form_id, version, structure, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING form_id, version, structure, created_at
	`, formID, nextVersion, structureJSON).Scan(
		&version.FormID,
		&version.Version,
		&structureJSON,
		&version.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert form version: %w", err)
	}

	if err := json.Unmarshal(structureJSON, &version.Structure); err != nil {
		return nil, fmt.Errorf("unmarshal structure: %w", err)
	}

	return &version, nil
}

// GetVersion возвращает конкретную версию формы.
func (r *FormRepo) GetVersion(ctx context.Context, formID uuid.UUID, version int) (*domain.FormVersion, error) {
	query := `
		SELECT form_id, version, structure, created_at
		FROM form_versions
		WHERE form_id = $1 AND version = $2
	`
	var fv domain.FormVersion
	var structureJSON []byte
	err := r.pool.QueryRow(ctx, query, formID, version).Scan(
		&fv.FormID,
		&fv.Version,
		&structureJSON,
		&fv.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get form version: %w", err)
	}

	if err := json.Unmarshal(structureJSON, &fv.Structure); err != nil {
		return nil, fmt.Errorf("unmarshal structure: %w", err)
	}

	return &fv, nil
}

// GetLatestVersion возвращает последнюю версию формы.
func (r *FormRepo) GetLatestVersion(ctx context.Context, formID uuid.UUID) (*domain.FormVersion, error) {
	query := `
		SELECT form_id, version, structure, created_at
		FROM form_versions
		WHERE form_id = $1
		ORDER BY version DESC
		LIMIT 1
	`
	var fv domain.FormVersion
	var structureJSON []byte
	err := r.pool.QueryRow(ctx, query, formID).Scan(
		&fv.FormID,
		&fv.Version,
		&structureJSON,
		&fv.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get latest form version: %w", err)
	}

	if err := json.Unmarshal(structureJSON, &fv.Structure); err != nil {
		return nil, fmt.Errorf("unmarshal structure: %w", err)
	}

	return &fv, nil
}

// ListVersions возвращает все версии формы.
func (r *FormRepo) ListVersions(ctx context.Context, formID uuid.UUID) ([]domain.FormVersion, error) {
	query := `
		SELECT form_id, version, structure, created_at
		FROM form_versions
		WHERE form_id = $1
		ORDER BY version DESC
	`
	rows, err := r.pool.Query(ctx, query, formID)
	if err != nil {
		return nil, fmt.Errorf("list form versions: %w", err)
	}
	defer rows.Close()

	var versions []domain.FormVersion
	for rows.Next() {
		var fv domain.FormVersion
		var structureJSON []byte
		if err := rows.Scan(
			&fv.FormID,
			&fv.Version,
			&structureJSON,
			&fv.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan form version: %w", err)
		}

		if err := json.Unmarshal(structureJSON, &fv.Structure); err != nil {
			return nil, fmt.Errorf("unmarshal structure: %w", err)
		}

		versions = append(versions, fv)
	}
	return versions, rows.Err()
}

// GetStructure возвращает структуру конкретной версии формы.
// Реализует runtime.StructureProvider.
func (r *FormRepo) GetStructure(ctx context.Context, formID uuid.UUID, version int) (*domain.Structure, error) {
	fv, err := r.GetVersion(ctx, formID, version)
	if err != nil {
		return nil, err
	}
	return &fv.Structure, nil
}
