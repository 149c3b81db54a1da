package roster

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"uren/internal/domain/commission"
)

// EntryParams carries the caller-editable fields of a person entry. Name and
// cost rate are denormalized from the profile at creation time and only
// change through UpdateEntry or RefreshEntry.
type EntryParams struct {
	Name             string
	HourlyCostRate   float64
	ClientHourlyRate float64
	Time             commission.TimeRecord
}

const entryColumns = `
    id::text, profile_id::text, name, hourly_cost_rate, client_hourly_rate,
    start_time, stop_time, total_hours, active_rule_ids, created_at, updated_at`

func (s *Store) ListEntries(ctx context.Context) ([]commission.PersonEntry, error) {
	rows, err := s.DB.Query(ctx, "SELECT "+entryColumns+" FROM person_entries ORDER BY created_at, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]commission.PersonEntry, 0, 16)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *Store) GetEntry(ctx context.Context, entryID string) (*commission.PersonEntry, error) {
	row := s.DB.QueryRow(ctx, "SELECT "+entryColumns+" FROM person_entries WHERE id = $1", entryID)
	entry, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// CreateEntry instantiates a profile for a new assignment, copying its name
// and cost rate. The client rate defaults to 0 until set.
func (s *Store) CreateEntry(ctx context.Context, profileID string, clientHourlyRate float64, record commission.TimeRecord) (*commission.PersonEntry, error) {
	profile, err := s.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	_, err = s.DB.Exec(ctx, `
    INSERT INTO person_entries
      (id, profile_id, name, hourly_cost_rate, client_hourly_rate, start_time, stop_time, total_hours)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
  `, id, profileID, profile.Name, profile.HourlyCostRate, clientHourlyRate,
		record.Start, record.Stop, record.TotalHours)
	if err != nil {
		return nil, err
	}
	return s.GetEntry(ctx, id)
}

func (s *Store) UpdateEntry(ctx context.Context, entryID string, params EntryParams) (*commission.PersonEntry, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE person_entries
    SET name = $2, hourly_cost_rate = $3, client_hourly_rate = $4,
        start_time = $5, stop_time = $6, total_hours = $7, updated_at = now()
    WHERE id = $1
  `, entryID, params.Name, params.HourlyCostRate, params.ClientHourlyRate,
		params.Time.Start, params.Time.Stop, params.Time.TotalHours)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrEntryNotFound
	}
	return s.GetEntry(ctx, entryID)
}

func (s *Store) DeleteEntry(ctx context.Context, entryID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM person_entries WHERE id = $1", entryID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// SetEntryRules replaces the entry's active rule set. Every id must belong to
// the entry's profile as it currently stands.
func (s *Store) SetEntryRules(ctx context.Context, entryID string, ruleIDs []string) (*commission.PersonEntry, error) {
	entry, err := s.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}

	valid, err := s.listProfileRules(ctx, entry.ProfileID)
	if err != nil {
		return nil, err
	}
	known := make(map[string]struct{}, len(valid))
	for _, rule := range valid {
		known[rule.ID] = struct{}{}
	}
	for _, id := range ruleIDs {
		if _, ok := known[id]; !ok {
			return nil, ErrRuleNotOnProfile
		}
	}
	if ruleIDs == nil {
		ruleIDs = []string{}
	}

	_, err = s.DB.Exec(ctx, `
    UPDATE person_entries SET active_rule_ids = $2, updated_at = now() WHERE id = $1
  `, entryID, ruleIDs)
	if err != nil {
		return nil, err
	}
	return s.GetEntry(ctx, entryID)
}

// RefreshEntry re-copies name and cost rate from the entry's current profile
// and drops active rule ids the profile no longer has.
func (s *Store) RefreshEntry(ctx context.Context, entryID string) (*commission.PersonEntry, error) {
	entry, err := s.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	profile, err := s.GetProfile(ctx, entry.ProfileID)
	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(profile.Rules))
	for _, rule := range profile.Rules {
		known[rule.ID] = struct{}{}
	}
	kept := []string{}
	for _, id := range entry.ActiveRuleIDs {
		if _, ok := known[id]; ok {
			kept = append(kept, id)
		}
	}

	_, err = s.DB.Exec(ctx, `
    UPDATE person_entries
    SET name = $2, hourly_cost_rate = $3, active_rule_ids = $4, updated_at = now()
    WHERE id = $1
  `, entryID, profile.Name, profile.HourlyCostRate, kept)
	if err != nil {
		return nil, err
	}
	return s.GetEntry(ctx, entryID)
}

func scanEntry(row pgx.Row) (commission.PersonEntry, error) {
	var entry commission.PersonEntry
	err := row.Scan(
		&entry.ID, &entry.ProfileID, &entry.Name, &entry.HourlyCostRate, &entry.ClientHourlyRate,
		&entry.Time.Start, &entry.Time.Stop, &entry.Time.TotalHours, &entry.ActiveRuleIDs,
		&entry.CreatedAt, &entry.UpdatedAt,
	)
	return entry, err
}
