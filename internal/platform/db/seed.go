package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"uren/internal/domain/commission"
)

// Seed inserts a small demo roster so a fresh instance has something to
// calculate with. Every step is keyed by name so re-running is a no-op.
func Seed(ctx context.Context, pool *pgxpool.Pool) error {
	contractorID, err := ensureProfile(ctx, pool, "Contractor", 40)
	if err != nil {
		return err
	}
	recruiterID, err := ensureProfile(ctx, pool, "Recruiter", 0)
	if err != nil {
		return err
	}
	backofficeID, err := ensureProfile(ctx, pool, "Backoffice", 0)
	if err != nil {
		return err
	}

	rules := []struct {
		basis       string
		kind        string
		value       float64
		beneficiary string
	}{
		{commission.BasisHourly, commission.KindPercentage, 5, backofficeID},
		{commission.BasisMargin, commission.KindFixedAmount, 40, recruiterID},
		{commission.BasisMargin, commission.KindPercentage, 10, backofficeID},
	}
	for pos, r := range rules {
		if err := ensureRule(ctx, pool, contractorID, r.basis, r.kind, r.value, r.beneficiary, pos); err != nil {
			return err
		}
	}

	return nil
}

func ensureProfile(ctx context.Context, pool *pgxpool.Pool, name string, costRate float64) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id::text FROM profiles WHERE name = $1", name).Scan(&id)
	if err == nil {
		return id, nil
	}

	id = uuid.NewString()
	_, err = pool.Exec(ctx,
		"INSERT INTO profiles (id, name, hourly_cost_rate) VALUES ($1, $2, $3)",
		id, name, costRate,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

func ensureRule(ctx context.Context, pool *pgxpool.Pool, profileID, basis, kind string, value float64, beneficiaryID string, position int) error {
	var count int
	err := pool.QueryRow(ctx,
		"SELECT COUNT(1) FROM deduction_rules WHERE profile_id = $1 AND basis = $2 AND kind = $3 AND value = $4",
		profileID, basis, kind, value,
	).Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	_, err = pool.Exec(ctx,
		"INSERT INTO deduction_rules (id, profile_id, basis, kind, value, beneficiary_id, position) VALUES ($1, $2, $3, $4, $5, $6, $7)",
		uuid.NewString(), profileID, basis, kind, value, beneficiaryID, position,
	)
	return err
}
