package roster

import (
	"context"

	"uren/internal/domain/commission"
)

// StoreAPI is the full roster surface the HTTP layer depends on.
type StoreAPI interface {
	ListProfiles(ctx context.Context) ([]commission.Profile, error)
	GetProfile(ctx context.Context, profileID string) (*commission.Profile, error)
	CreateProfile(ctx context.Context, name string, hourlyCostRate float64) (*commission.Profile, error)
	UpdateProfile(ctx context.Context, profileID, name string, hourlyCostRate float64) (*commission.Profile, error)
	DeleteProfile(ctx context.Context, profileID string) error

	CreateRule(ctx context.Context, profileID string, params RuleParams) (*commission.DeductionRule, error)
	UpdateRule(ctx context.Context, profileID, ruleID string, params RuleParams) (*commission.DeductionRule, error)
	DeleteRule(ctx context.Context, profileID, ruleID string) error

	ListEntries(ctx context.Context) ([]commission.PersonEntry, error)
	GetEntry(ctx context.Context, entryID string) (*commission.PersonEntry, error)
	CreateEntry(ctx context.Context, profileID string, clientHourlyRate float64, record commission.TimeRecord) (*commission.PersonEntry, error)
	UpdateEntry(ctx context.Context, entryID string, params EntryParams) (*commission.PersonEntry, error)
	DeleteEntry(ctx context.Context, entryID string) error
	SetEntryRules(ctx context.Context, entryID string, ruleIDs []string) (*commission.PersonEntry, error)
	RefreshEntry(ctx context.Context, entryID string) (*commission.PersonEntry, error)

	LoadSnapshot(ctx context.Context) (commission.Snapshot, error)
}

var _ StoreAPI = (*Store)(nil)
