package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Anketa/internal/domain"
)

// EntryRepo — репозиторий для работы с entries.
//
// История этапов (stages) хранится одним JSONB-полем: этапы всегда
// читаются и пишутся вместе с заявкой, отдельный доступ к ним
// не нужен.
type EntryRepo struct {
	pool *pgxpool.Pool
}

// NewEntryRepo создаёт новый EntryRepo.
func NewEntryRepo(pool *pgxpool.Pool) *EntryRepo {
	return &EntryRepo{pool: pool}
}

// Create создаёт новую заявку.
func (r *EntryRepo) Create(ctx context.Context, entry *domain.Entry) error {
	stagesJSON, err := json.Marshal(entry.Stages)
	if err != nil {
		return fmt.Errorf("marshal stages: %w", err)
	}

	query := `
		INSERT INTO entries (id, public_id, form_id, version, current_stage_id,
			is_complete, stages, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.pool.Exec(ctx, query,
		entry.ID,
		entry.PublicID,
		entry.FormID,
		entry.Version,
		entry.CurrentStageID,
		entry.IsComplete,
		stagesJSON,
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// GetByID возвращает заявку по внутреннему ID.
func (r *EntryRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Entry, error) {
	query := `
		SELECT id, public_id, form_id, version, current_stage_id,
			is_complete, stages, created_at, updated_at
		FROM entries
		WHERE id = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

// GetByPublicID возвращает заявку по публичному идентификатору.
// Реализует runtime.EntryProvider.
func (r *EntryRepo) GetEntryByPublicID(ctx context.Context, publicID string) (*domain.Entry, error) {
	query := `
		SELECT id, public_id, form_id, version, current_stage_id,
			is_complete, stages, created_at, updated_at
		FROM entries
		WHERE public_id = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, publicID))
}

// Update сохраняет текущее состояние заявки (этапы, текущий этап,
// флаг завершения).
func (r *EntryRepo) Update(ctx context.Context, entry *domain.Entry) error {
	stagesJSON, err := json.Marshal(entry.Stages)
	if err != nil {
		return fmt.Errorf("marshal stages: %w", err)
	}

	query := `
		UPDATE entries
		SET current_stage_id = $2, is_complete = $3, stages = $4, updated_at = $5
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.CurrentStageID,
		entry.IsComplete,
		stagesJSON,
		entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByForm возвращает заявки формы, новые первыми.
func (r *EntryRepo) ListByForm(ctx context.Context, formID uuid.UUID, limit int) ([]domain.Entry, error) {
	query := `
		SELECT id, public_id, form_id, version, current_stage_id,
			is_complete, stages, created_at, updated_at
		FROM entries
		WHERE form_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, formID, limit)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		entry, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

// IsValueTaken проверяет занятость значения поля среди заявок формы
// (серверная проверка правила unique). Сравнение по JSON-представлению
// значения в истории этапов.
func (r *EntryRepo) IsValueTaken(ctx context.Context, formID uuid.UUID, fieldID int, value any, excludeEntry uuid.UUID) (bool, error) {
	valueJSON, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("marshal value: %w", err)
	}

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM entries,
				jsonb_array_elements(stages) AS stage
			WHERE entries.form_id = $1
				AND entries.id <> $4
				AND stage->'values'->($2::text) = $3::jsonb
		)
	`
	var taken bool
	err = r.pool.QueryRow(ctx, query,
		formID,
		fmt.Sprintf("%d", fieldID),
		valueJSON,
		excludeEntry,
	).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check value taken: %w", err)
	}
	return taken, nil
}

// DeleteStaleIncomplete удаляет незавершённые заявки, не обновлявшиеся
// дольше ttl. Возвращает число удалённых строк. Используется janitor.
func (r *EntryRepo) DeleteStaleIncomplete(ctx context.Context, ttl time.Duration) (int64, error) {
	query := `
		DELETE FROM entries
		WHERE is_complete = false
			AND updated_at < NOW() - $1::interval
	`
	result, err := r.pool.Exec(ctx, query, ttl.String())
	if err != nil {
		return 0, fmt.Errorf("delete stale entries: %w", err)
	}
	return result.RowsAffected(), nil
}

// --- scan ---

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *EntryRepo) scanOne(row rowScanner) (*domain.Entry, error) {
	entry, err := r.scanRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *EntryRepo) scanRow(row rowScanner) (*domain.Entry, error) {
	var entry domain.Entry
	var stagesJSON []byte
	err := row.Scan(
		&entry.ID,
		&entry.PublicID,
		&entry.FormID,
		&entry.Version,
		&entry.CurrentStageID,
		&entry.IsComplete,
		&stagesJSON,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan entry: %w", err)
	}

	if len(stagesJSON) > 0 {
		if err := json.Unmarshal(stagesJSON, &entry.Stages); err != nil {
			return nil, fmt.Errorf("unmarshal stages: %w", err)
		}
	}
	return &entry, nil
}
