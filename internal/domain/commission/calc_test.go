package commission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	workerID     = "p-worker"
	recruiterID  = "p-recruiter"
	backofficeID = "p-backoffice"
)

func fixtureProfiles(workerRules ...DeductionRule) []Profile {
	for i := range workerRules {
		workerRules[i].ProfileID = workerID
		workerRules[i].Position = i
	}
	return []Profile{
		{ID: workerID, Name: "Worker", HourlyCostRate: 50, Rules: workerRules},
		{ID: recruiterID, Name: "Recruiter"},
		{ID: backofficeID, Name: "Backoffice"},
	}
}

func allRuleIDs(profiles []Profile) []string {
	var ids []string
	for _, p := range profiles {
		for _, r := range p.Rules {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

func TestEntryFinancialsBasic(t *testing.T) {
	profiles := fixtureProfiles()
	entry := PersonEntry{
		ID:               "e1",
		ProfileID:        workerID,
		HourlyCostRate:   50,
		ClientHourlyRate: 75,
		Time:             TimeRecord{Start: "09:00", Stop: "17:00"},
	}

	fin := ComputeEntryFinancials(entry, profiles)
	assert.Equal(t, 8.0, fin.Hours)
	assert.Equal(t, 400.0, fin.Cost)
	assert.Equal(t, 600.0, fin.Billed)
	assert.Equal(t, 200.0, fin.GrossMargin)
	assert.Equal(t, 0.0, fin.TotalDeductions)
	assert.Equal(t, 200.0, fin.NetMargin)
}

func TestHourlyTierIsNeverCappedByMargin(t *testing.T) {
	profiles := fixtureProfiles(
		DeductionRule{ID: "r1", Basis: BasisHourly, Kind: KindPercentage, Value: 50, BeneficiaryID: recruiterID},
	)
	// Client rate 0: gross margin is -100, yet the hourly tier still charges
	// 50% of cost.
	entry := PersonEntry{
		ID:             "e1",
		ProfileID:      workerID,
		HourlyCostRate: 100,
		Time:           TimeRecord{TotalHours: 1},
		ActiveRuleIDs:  []string{"r1"},
	}

	fin := ComputeEntryFinancials(entry, profiles)
	assert.Equal(t, 100.0, fin.Cost)
	assert.Equal(t, -100.0, fin.GrossMargin)
	assert.Equal(t, 50.0, fin.HourlyDeductions)
	assert.Equal(t, 0.0, fin.MarginDeductions)
	assert.Equal(t, -150.0, fin.NetMargin)
}

func TestMarginTierFixedAmountCapped(t *testing.T) {
	profiles := fixtureProfiles(
		DeductionRule{ID: "r1", Basis: BasisMargin, Kind: KindFixedAmount, Value: 100, BeneficiaryID: recruiterID},
	)
	// 1h, cost 10, billed 50: gross margin 40 with no hourly deductions.
	entry := PersonEntry{
		ID:               "e1",
		ProfileID:        workerID,
		HourlyCostRate:   10,
		ClientHourlyRate: 50,
		Time:             TimeRecord{TotalHours: 1},
		ActiveRuleIDs:    []string{"r1"},
	}

	fin := ComputeEntryFinancials(entry, profiles)
	assert.Equal(t, 40.0, fin.GrossMargin)
	assert.Equal(t, 40.0, fin.MarginDeductions)
	assert.Equal(t, 0.0, fin.NetMargin)
}

func TestMarginTierFixedAmountsCapSequentially(t *testing.T) {
	profiles := fixtureProfiles(
		DeductionRule{ID: "r1", Basis: BasisMargin, Kind: KindFixedAmount, Value: 30, BeneficiaryID: recruiterID},
		DeductionRule{ID: "r2", Basis: BasisMargin, Kind: KindFixedAmount, Value: 30, BeneficiaryID: backofficeID},
	)
	entry := PersonEntry{
		ID:               "e1",
		ProfileID:        workerID,
		HourlyCostRate:   10,
		ClientHourlyRate: 50,
		Time:             TimeRecord{TotalHours: 1},
		ActiveRuleIDs:    []string{"r1", "r2"},
	}

	// Remaining margin is 40: the first rule takes its full 30, the second is
	// capped at the 10 that is left.
	fin := ComputeEntryFinancials(entry, profiles)
	assert.Equal(t, 40.0, fin.MarginDeductions)
}

func TestInactiveRulesAreIgnored(t *testing.T) {
	profiles := fixtureProfiles(
		DeductionRule{ID: "r1", Basis: BasisHourly, Kind: KindFixedAmount, Value: 25, BeneficiaryID: recruiterID},
		DeductionRule{ID: "r2", Basis: BasisHourly, Kind: KindFixedAmount, Value: 10, BeneficiaryID: recruiterID},
	)
	entry := PersonEntry{
		ID:               "e1",
		ProfileID:        workerID,
		HourlyCostRate:   50,
		ClientHourlyRate: 75,
		Time:             TimeRecord{TotalHours: 2},
		ActiveRuleIDs:    []string{"r2"},
	}

	fin := ComputeEntryFinancials(entry, profiles)
	assert.Equal(t, 10.0, fin.HourlyDeductions)
}

func TestEntryWithoutProfileKeepsOwnFigures(t *testing.T) {
	entry := PersonEntry{
		ID:               "e1",
		ProfileID:        "p-deleted",
		HourlyCostRate:   40,
		ClientHourlyRate: 60,
		Time:             TimeRecord{TotalHours: 10},
		ActiveRuleIDs:    []string{"r1"},
	}

	fin := ComputeEntryFinancials(entry, fixtureProfiles())
	assert.Equal(t, 400.0, fin.Cost)
	assert.Equal(t, 600.0, fin.Billed)
	assert.Equal(t, 200.0, fin.GrossMargin)
	assert.Equal(t, 0.0, fin.TotalDeductions)
}

func TestPayoutsProportionalDegradation(t *testing.T) {
	profiles := fixtureProfiles(
		DeductionRule{ID: "r1", Basis: BasisMargin, Kind: KindFixedAmount, Value: 60, BeneficiaryID: recruiterID},
		DeductionRule{ID: "r2", Basis: BasisMargin, Kind: KindFixedAmount, Value: 60, BeneficiaryID: backofficeID},
	)
	// Pool is 90 (1h, cost 10, billed 100) with no hourly tier; desired 120
	// exceeds it, so both claims scale by 90/120.
	entries := []PersonEntry{{
		ID:               "e1",
		ProfileID:        workerID,
		HourlyCostRate:   10,
		ClientHourlyRate: 100,
		Time:             TimeRecord{TotalHours: 1},
		ActiveRuleIDs:    allRuleIDs(profiles),
	}}

	payouts := ComputePayouts(entries, profiles)
	require.Len(t, payouts, 3)
	assert.Equal(t, 10.0, payouts[0].OwnPay)
	assert.InDelta(t, 45.0, payouts[1].ReceivedMargin, 1e-9)
	assert.InDelta(t, 45.0, payouts[2].ReceivedMargin, 1e-9)
}

func TestPayoutsSufficientPoolPassThrough(t *testing.T) {
	profiles := fixtureProfiles(
		DeductionRule{ID: "r1", Basis: BasisMargin, Kind: KindFixedAmount, Value: 60, BeneficiaryID: recruiterID},
		DeductionRule{ID: "r2", Basis: BasisMargin, Kind: KindFixedAmount, Value: 60, BeneficiaryID: backofficeID},
	)
	// Pool is 200; both claims are honored in full and the rest stays
	// undistributed.
	entries := []PersonEntry{{
		ID:               "e1",
		ProfileID:        workerID,
		HourlyCostRate:   10,
		ClientHourlyRate: 210,
		Time:             TimeRecord{TotalHours: 1},
		ActiveRuleIDs:    allRuleIDs(profiles),
	}}

	payouts := ComputePayouts(entries, profiles)
	assert.Equal(t, 60.0, payouts[1].ReceivedMargin)
	assert.Equal(t, 60.0, payouts[2].ReceivedMargin)
}

func TestPayoutsHourlyDistributionClampedByPoolInOrder(t *testing.T) {
	profiles := fixtureProfiles(
		DeductionRule{ID: "r1", Basis: BasisHourly, Kind: KindPercentage, Value: 50, BeneficiaryID: recruiterID},
	)
	// Each entry: cost 100, gross margin 30, hourly claim 50. The pool of 60
	// covers the first claim fully and leaves 10 for the second.
	entry := PersonEntry{
		ProfileID:        workerID,
		HourlyCostRate:   100,
		ClientHourlyRate: 130,
		Time:             TimeRecord{TotalHours: 1},
		ActiveRuleIDs:    []string{"r1"},
	}
	first, second := entry, entry
	first.ID, second.ID = "e1", "e2"

	payouts := ComputePayouts([]PersonEntry{first, second}, profiles)
	assert.InDelta(t, 60.0, payouts[1].ReceivedHourly, 1e-9)
	assert.InDelta(t, 60.0, payouts[1].Total, 1e-9)

	// The per-entry view stays uncapped.
	fin := ComputeEntryFinancials(second, profiles)
	assert.Equal(t, 50.0, fin.HourlyDeductions)
}

func TestPayoutsNegativePoolDistributesNothing(t *testing.T) {
	profiles := fixtureProfiles(
		DeductionRule{ID: "r1", Basis: BasisHourly, Kind: KindPercentage, Value: 50, BeneficiaryID: recruiterID},
		DeductionRule{ID: "r2", Basis: BasisMargin, Kind: KindPercentage, Value: 50, BeneficiaryID: backofficeID},
	)
	entries := []PersonEntry{{
		ID:             "e1",
		ProfileID:      workerID,
		HourlyCostRate: 100,
		Time:           TimeRecord{TotalHours: 1}, // billed 0, margin -100
		ActiveRuleIDs:  []string{"r1", "r2"},
	}}

	payouts := ComputePayouts(entries, profiles)
	assert.Equal(t, 0.0, payouts[1].ReceivedHourly)
	assert.Equal(t, 0.0, payouts[2].ReceivedMargin)
	assert.Equal(t, 100.0, payouts[0].OwnPay)
}

func TestPayoutsEveryProfileAppears(t *testing.T) {
	payouts := ComputePayouts(nil, fixtureProfiles())
	require.Len(t, payouts, 3)
	for _, rec := range payouts {
		assert.Zero(t, rec.OwnPay)
		assert.Zero(t, rec.ReceivedHourly)
		assert.Zero(t, rec.ReceivedMargin)
		assert.Zero(t, rec.Total)
	}
}

func TestPayoutsOrphanBeneficiarySkipped(t *testing.T) {
	profiles := fixtureProfiles(
		DeductionRule{ID: "r1", Basis: BasisHourly, Kind: KindFixedAmount, Value: 25, BeneficiaryID: "p-gone"},
	)
	entries := []PersonEntry{{
		ID:               "e1",
		ProfileID:        workerID,
		HourlyCostRate:   10,
		ClientHourlyRate: 100,
		Time:             TimeRecord{TotalHours: 1},
		ActiveRuleIDs:    []string{"r1"},
	}}

	payouts := ComputePayouts(entries, profiles)
	total := 0.0
	for _, rec := range payouts {
		total += rec.ReceivedHourly + rec.ReceivedMargin
	}
	assert.Equal(t, 0.0, total)
}

func TestComputeTotals(t *testing.T) {
	profiles := fixtureProfiles(
		DeductionRule{ID: "r1", Basis: BasisHourly, Kind: KindPercentage, Value: 10, BeneficiaryID: recruiterID},
	)
	entries := []PersonEntry{
		{
			ID: "e1", ProfileID: workerID, HourlyCostRate: 50, ClientHourlyRate: 75,
			Time: TimeRecord{TotalHours: 8}, ActiveRuleIDs: []string{"r1"},
		},
		{
			ID: "e2", ProfileID: workerID, HourlyCostRate: 50, ClientHourlyRate: 60,
			Time: TimeRecord{TotalHours: 4},
		},
	}

	totals := ComputeTotals(entries, profiles)
	assert.InDelta(t, 840.0, totals.ClientInvoiceTotal, 1e-9) // 600 + 240
	assert.InDelta(t, 40.0, totals.TotalDeductions, 1e-9)     // 10% of 400
}

func TestComputeIsIdempotent(t *testing.T) {
	profiles := fixtureProfiles(
		DeductionRule{ID: "r1", Basis: BasisHourly, Kind: KindPercentage, Value: 15, BeneficiaryID: recruiterID},
		DeductionRule{ID: "r2", Basis: BasisMargin, Kind: KindPercentage, Value: 40, BeneficiaryID: backofficeID},
		DeductionRule{ID: "r3", Basis: BasisMargin, Kind: KindFixedAmount, Value: 120, BeneficiaryID: recruiterID},
	)
	snapshot := Snapshot{
		Profiles: profiles,
		Entries: []PersonEntry{
			{
				ID: "e1", ProfileID: workerID, HourlyCostRate: 50, ClientHourlyRate: 85,
				Time: TimeRecord{Start: "08:00", Stop: "16:30"}, ActiveRuleIDs: allRuleIDs(profiles),
			},
			{
				ID: "e2", ProfileID: workerID, HourlyCostRate: 45, ClientHourlyRate: 45,
				Time: TimeRecord{TotalHours: 6}, ActiveRuleIDs: []string{"r1"},
			},
			{ID: "e3", ProfileID: "p-gone", HourlyCostRate: 40, ClientHourlyRate: 70,
				Time: TimeRecord{TotalHours: 3}},
		},
	}

	first := Compute(snapshot)
	second := Compute(snapshot)
	require.Equal(t, first, second)

	require.Len(t, first.PerEntry, 3)
	require.Len(t, first.Payouts, 3)
}
