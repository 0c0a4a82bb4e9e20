package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sarafrika/elimika-availability-api/internal/models"
)

const availabilityRuleColumns = `id, owner_id, kind, day_of_week, specific_date, start_time, end_time, all_day,
is_available, block_reason, recurrence_interval, effective_from, effective_until, timezone, created_at, updated_at`

// AvailabilityRuleRepository persists declared availability/block rules.
type AvailabilityRuleRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRuleRepository constructs the repository.
func NewAvailabilityRuleRepository(db *sqlx.DB) *AvailabilityRuleRepository {
	return &AvailabilityRuleRepository{db: db}
}

// List returns rules matching the filter.
func (r *AvailabilityRuleRepository) List(ctx context.Context, filter models.RuleFilter) ([]models.AvailabilityRule, int, error) {
	base := "FROM availability_rules"
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.OwnerID != "" {
		where = append(where, fmt.Sprintf("owner_id = $%d", len(args)+1))
		args = append(args, filter.OwnerID)
	}
	if filter.Kind != "" {
		where = append(where, fmt.Sprintf("kind = $%d", len(args)+1))
		args = append(args, string(filter.Kind))
	}
	if filter.IsAvailable != nil {
		where = append(where, fmt.Sprintf("is_available = $%d", len(args)+1))
		args = append(args, *filter.IsAvailable)
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s
%s WHERE %s ORDER BY created_at ASC, id ASC LIMIT %d OFFSET %d`, availabilityRuleColumns, base, whereClause, size, offset)
	var rules []models.AvailabilityRule
	if err := r.db.SelectContext(ctx, &rules, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list availability rules: %w", err)
	}
	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count availability rules: %w", err)
	}
	return rules, total, nil
}

// ListByOwner returns every rule an owner has declared, unpaged; expansion
// always works from the full rule set.
func (r *AvailabilityRuleRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.AvailabilityRule, error) {
	query := fmt.Sprintf(`SELECT %s FROM availability_rules WHERE owner_id = $1 ORDER BY created_at ASC, id ASC`, availabilityRuleColumns)
	var rules []models.AvailabilityRule
	if err := r.db.SelectContext(ctx, &rules, query, ownerID); err != nil {
		return nil, fmt.Errorf("list availability rules by owner: %w", err)
	}
	return rules, nil
}

// GetByID fetches a single rule.
func (r *AvailabilityRuleRepository) GetByID(ctx context.Context, id string) (*models.AvailabilityRule, error) {
	query := fmt.Sprintf(`SELECT %s FROM availability_rules WHERE id = $1`, availabilityRuleColumns)
	var rule models.AvailabilityRule
	if err := r.db.GetContext(ctx, &rule, query, id); err != nil {
		return nil, err
	}
	return &rule, nil
}

// Create inserts a rule.
func (r *AvailabilityRuleRepository) Create(ctx context.Context, rule *models.AvailabilityRule) error {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	}
	rule.UpdatedAt = now
	query := `INSERT INTO availability_rules (id, owner_id, kind, day_of_week, specific_date, start_time, end_time, all_day,
is_available, block_reason, recurrence_interval, effective_from, effective_until, timezone, created_at, updated_at)
VALUES (:id, :owner_id, :kind, :day_of_week, :specific_date, :start_time, :end_time, :all_day,
:is_available, :block_reason, :recurrence_interval, :effective_from, :effective_until, :timezone, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, rule); err != nil {
		return fmt.Errorf("create availability rule: %w", err)
	}
	return nil
}

// Update modifies a rule.
func (r *AvailabilityRuleRepository) Update(ctx context.Context, rule *models.AvailabilityRule) error {
	rule.UpdatedAt = time.Now().UTC()
	query := `UPDATE availability_rules SET kind = :kind, day_of_week = :day_of_week, specific_date = :specific_date,
start_time = :start_time, end_time = :end_time, all_day = :all_day, is_available = :is_available, block_reason = :block_reason,
recurrence_interval = :recurrence_interval, effective_from = :effective_from, effective_until = :effective_until,
timezone = :timezone, updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, rule); err != nil {
		return fmt.Errorf("update availability rule: %w", err)
	}
	return nil
}

// Delete removes a rule.
func (r *AvailabilityRuleRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM availability_rules WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete availability rule: %w", err)
	}
	return nil
}
