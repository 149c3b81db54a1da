package roster

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"uren/internal/domain/commission"
)

// Store persists the roster (profiles, deduction rules and person entries)
// in Postgres. The calculator never touches it; callers load a snapshot and
// project from that.
type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) ListProfiles(ctx context.Context) ([]commission.Profile, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id::text, name, hourly_cost_rate, created_at, updated_at
    FROM profiles
    ORDER BY created_at, id
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]commission.Profile, 0, 8)
	index := map[string]int{}
	for rows.Next() {
		var p commission.Profile
		if err := rows.Scan(&p.ID, &p.Name, &p.HourlyCostRate, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		index[p.ID] = len(profiles)
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rules, err := s.listRules(ctx)
	if err != nil {
		return nil, err
	}
	for _, rule := range rules {
		if i, ok := index[rule.ProfileID]; ok {
			profiles[i].Rules = append(profiles[i].Rules, rule)
		}
	}
	return profiles, nil
}

func (s *Store) GetProfile(ctx context.Context, profileID string) (*commission.Profile, error) {
	var p commission.Profile
	err := s.DB.QueryRow(ctx, `
    SELECT id::text, name, hourly_cost_rate, created_at, updated_at
    FROM profiles
    WHERE id = $1
  `, profileID).Scan(&p.ID, &p.Name, &p.HourlyCostRate, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	rules, err := s.listProfileRules(ctx, profileID)
	if err != nil {
		return nil, err
	}
	p.Rules = rules
	return &p, nil
}

func (s *Store) CreateProfile(ctx context.Context, name string, hourlyCostRate float64) (*commission.Profile, error) {
	id := uuid.NewString()
	_, err := s.DB.Exec(ctx, `
    INSERT INTO profiles (id, name, hourly_cost_rate)
    VALUES ($1, $2, $3)
  `, id, name, hourlyCostRate)
	if err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, id)
}

func (s *Store) UpdateProfile(ctx context.Context, profileID, name string, hourlyCostRate float64) (*commission.Profile, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE profiles
    SET name = $2, hourly_cost_rate = $3, updated_at = now()
    WHERE id = $1
  `, profileID, name, hourlyCostRate)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrProfileNotFound
	}
	return s.GetProfile(ctx, profileID)
}

// DeleteProfile removes a profile and its rules. Entries created from it keep
// their denormalized name and rates; their active rule ids are pruned so they
// no longer reference rules that cascade away with the profile.
func (s *Store) DeleteProfile(ctx context.Context, profileID string) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ruleIDs := []string{}
	rows, err := tx.Query(ctx, "SELECT id::text FROM deduction_rules WHERE profile_id = $1", profileID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		ruleIDs = append(ruleIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, "DELETE FROM profiles WHERE id = $1", profileID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProfileNotFound
	}

	for _, ruleID := range ruleIDs {
		if err := pruneRuleFromEntries(ctx, tx, ruleID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *Store) listRules(ctx context.Context) ([]commission.DeductionRule, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id::text, profile_id::text, basis, kind, value,
           COALESCE(beneficiary_id::text, ''), position
    FROM deduction_rules
    ORDER BY profile_id, position, id
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRules(rows)
}

func (s *Store) listProfileRules(ctx context.Context, profileID string) ([]commission.DeductionRule, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id::text, profile_id::text, basis, kind, value,
           COALESCE(beneficiary_id::text, ''), position
    FROM deduction_rules
    WHERE profile_id = $1
    ORDER BY position, id
  `, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRules(rows)
}

func scanRules(rows pgx.Rows) ([]commission.DeductionRule, error) {
	var rules []commission.DeductionRule
	for rows.Next() {
		var r commission.DeductionRule
		if err := rows.Scan(&r.ID, &r.ProfileID, &r.Basis, &r.Kind, &r.Value, &r.BeneficiaryID, &r.Position); err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}
