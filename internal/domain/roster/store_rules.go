package roster

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"uren/internal/domain/commission"
)

// RuleParams carries the caller-editable fields of a deduction rule.
type RuleParams struct {
	Basis         string
	Kind          string
	Value         float64
	BeneficiaryID string
}

func (s *Store) CreateRule(ctx context.Context, profileID string, params RuleParams) (*commission.DeductionRule, error) {
	if err := s.profileExists(ctx, profileID); err != nil {
		return nil, err
	}
	if params.BeneficiaryID != "" {
		if err := s.profileExists(ctx, params.BeneficiaryID); err != nil {
			return nil, err
		}
	}

	id := uuid.NewString()
	_, err := s.DB.Exec(ctx, `
    INSERT INTO deduction_rules (id, profile_id, basis, kind, value, beneficiary_id, position)
    VALUES ($1, $2, $3, $4, $5, NULLIF($6, '')::uuid,
            (SELECT COALESCE(MAX(position) + 1, 0) FROM deduction_rules WHERE profile_id = $2))
  `, id, profileID, params.Basis, params.Kind, params.Value, params.BeneficiaryID)
	if err != nil {
		return nil, err
	}
	return s.getRule(ctx, profileID, id)
}

func (s *Store) UpdateRule(ctx context.Context, profileID, ruleID string, params RuleParams) (*commission.DeductionRule, error) {
	if params.BeneficiaryID != "" {
		if err := s.profileExists(ctx, params.BeneficiaryID); err != nil {
			return nil, err
		}
	}

	tag, err := s.DB.Exec(ctx, `
    UPDATE deduction_rules
    SET basis = $3, kind = $4, value = $5, beneficiary_id = NULLIF($6, '')::uuid
    WHERE id = $2 AND profile_id = $1
  `, profileID, ruleID, params.Basis, params.Kind, params.Value, params.BeneficiaryID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrRuleNotFound
	}
	return s.getRule(ctx, profileID, ruleID)
}

// DeleteRule removes a rule and prunes it from every entry's active set, per
// the invariant that active rule ids stay a subset of the profile's rules.
func (s *Store) DeleteRule(ctx context.Context, profileID, ruleID string) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
    DELETE FROM deduction_rules WHERE id = $2 AND profile_id = $1
  `, profileID, ruleID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRuleNotFound
	}

	if err := pruneRuleFromEntries(ctx, tx, ruleID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) getRule(ctx context.Context, profileID, ruleID string) (*commission.DeductionRule, error) {
	var r commission.DeductionRule
	err := s.DB.QueryRow(ctx, `
    SELECT id::text, profile_id::text, basis, kind, value,
           COALESCE(beneficiary_id::text, ''), position
    FROM deduction_rules
    WHERE id = $2 AND profile_id = $1
  `, profileID, ruleID).Scan(&r.ID, &r.ProfileID, &r.Basis, &r.Kind, &r.Value, &r.BeneficiaryID, &r.Position)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRuleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) profileExists(ctx context.Context, profileID string) error {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM profiles WHERE id = $1", profileID).Scan(&count)
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func pruneRuleFromEntries(ctx context.Context, tx pgx.Tx, ruleID string) error {
	_, err := tx.Exec(ctx, `
    UPDATE person_entries
    SET active_rule_ids = array_remove(active_rule_ids, $1), updated_at = now()
    WHERE $1 = ANY(active_rule_ids)
  `, ruleID)
	return err
}
