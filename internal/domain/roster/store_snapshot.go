package roster

import (
	"context"

	"github.com/jackc/pgx/v5"

	"uren/internal/domain/commission"
)

// LoadSnapshot reads the whole roster inside one repeatable-read, read-only
// transaction so a recomputation never observes a partially applied
// mutation. The snapshot is the single atomic unit the calculator works on.
func (s *Store) LoadSnapshot(ctx context.Context) (commission.Snapshot, error) {
	var snapshot commission.Snapshot

	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return snapshot, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	profiles, err := loadProfilesTx(ctx, tx)
	if err != nil {
		return snapshot, err
	}

	rows, err := tx.Query(ctx, "SELECT "+entryColumns+" FROM person_entries ORDER BY created_at, id")
	if err != nil {
		return snapshot, err
	}
	defer rows.Close()

	entries := make([]commission.PersonEntry, 0, 16)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return snapshot, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return snapshot, err
	}

	snapshot.Profiles = profiles
	snapshot.Entries = entries
	return snapshot, tx.Commit(ctx)
}

func loadProfilesTx(ctx context.Context, tx pgx.Tx) ([]commission.Profile, error) {
	rows, err := tx.Query(ctx, `
    SELECT id::text, name, hourly_cost_rate, created_at, updated_at
    FROM profiles
    ORDER BY created_at, id
  `)
	if err != nil {
		return nil, err
	}

	profiles := make([]commission.Profile, 0, 8)
	index := map[string]int{}
	for rows.Next() {
		var p commission.Profile
		if err := rows.Scan(&p.ID, &p.Name, &p.HourlyCostRate, &p.CreatedAt, &p.UpdatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		index[p.ID] = len(profiles)
		profiles = append(profiles, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ruleRows, err := tx.Query(ctx, `
    SELECT id::text, profile_id::text, basis, kind, value,
           COALESCE(beneficiary_id::text, ''), position
    FROM deduction_rules
    ORDER BY profile_id, position, id
  `)
	if err != nil {
		return nil, err
	}
	defer ruleRows.Close()

	rules, err := scanRules(ruleRows)
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
