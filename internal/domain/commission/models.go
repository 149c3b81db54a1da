package commission

import "time"

// Profile is a worker archetype: a cost rate plus a reusable, ordered set of
// deduction rules that entries instantiated from it may activate.
type Profile struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	HourlyCostRate float64         `json:"hourlyCostRate"`
	Rules          []DeductionRule `json:"rules"`
	CreatedAt      time.Time       `json:"createdAt,omitzero"`
	UpdatedAt      time.Time       `json:"updatedAt,omitzero"`
}

// DeductionRule is a percentage or fixed-amount charge against either hourly
// cost or gross margin, optionally routed to a beneficiary profile.
// A rule without a beneficiary is still computed per entry but never
// distributed in payouts.
type DeductionRule struct {
	ID            string  `json:"id"`
	ProfileID     string  `json:"profileId"`
	Basis         string  `json:"basis"`
	Kind          string  `json:"kind"`
	Value         float64 `json:"value"`
	BeneficiaryID string  `json:"beneficiaryId,omitempty"`
	Position      int     `json:"position"`
}

// TimeRecord holds the raw time input for one entry. Start and Stop are
// same-day wall-clock times in "HH:MM" form; TotalHours is a manual override
// that wins when positive.
type TimeRecord struct {
	Start      string  `json:"start,omitempty"`
	Stop       string  `json:"stop,omitempty"`
	TotalHours float64 `json:"totalHours"`
}

// PersonEntry is one assignment of a profile to a job. Name and cost rate are
// copied from the profile at creation time and only change on an explicit
// refresh, so an entry stays valid even after its profile is deleted.
type PersonEntry struct {
	ID               string     `json:"id"`
	ProfileID        string     `json:"profileId"`
	Name             string     `json:"name"`
	HourlyCostRate   float64    `json:"hourlyCostRate"`
	ClientHourlyRate float64    `json:"clientHourlyRate"`
	Time             TimeRecord `json:"time"`
	ActiveRuleIDs    []string   `json:"activeRuleIds"`
	CreatedAt        time.Time  `json:"createdAt,omitzero"`
	UpdatedAt        time.Time  `json:"updatedAt,omitzero"`
}

// EntryFinancials is the derived money view of a single entry.
type EntryFinancials struct {
	EntryID          string  `json:"entryId"`
	ProfileID        string  `json:"profileId"`
	Name             string  `json:"name"`
	Hours            float64 `json:"hours"`
	Cost             float64 `json:"cost"`
	Billed           float64 `json:"billed"`
	GrossMargin      float64 `json:"grossMargin"`
	HourlyDeductions float64 `json:"hourlyDeductions"`
	MarginDeductions float64 `json:"marginDeductions"`
	TotalDeductions  float64 `json:"totalDeductions"`
	NetMargin        float64 `json:"netMargin"`
}

// PayoutRecord is the derived payout view of one profile: its own earned pay
// plus everything routed to it by other entries' deduction rules.
type PayoutRecord struct {
	ProfileID      string  `json:"profileId"`
	Name           string  `json:"name"`
	OwnPay         float64 `json:"ownPay"`
	ReceivedHourly float64 `json:"receivedHourly"`
	ReceivedMargin float64 `json:"receivedMargin"`
	Total          float64 `json:"total"`
}

// Totals is the invoice-level aggregate over all entries.
type Totals struct {
	ClientInvoiceTotal float64 `json:"clientInvoiceTotal"`
	TotalDeductions    float64 `json:"totalDeductions"`
}

// Snapshot is the full roster state the calculator projects from. It is
// passed by value; the calculator never mutates it.
type Snapshot struct {
	Profiles []Profile     `json:"profiles"`
	Entries  []PersonEntry `json:"entries"`
}

// Result bundles the three projections for the single compute operation.
type Result struct {
	PerEntry []EntryFinancials `json:"perEntry"`
	Payouts  []PayoutRecord    `json:"payouts"`
	Totals   Totals            `json:"totals"`
}
