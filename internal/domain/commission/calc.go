package commission

// The waterfall has two tiers. Hourly-basis rules are obligations tied to
// labor cost: they are computed against cost and never capped by margin.
// Margin-basis rules share whatever margin remains and degrade proportionally
// when the pool runs out, so no beneficiary is starved by registration order.

// ComputeEntryFinancials derives the money view of a single entry against the
// given profiles. It is pure and independent of every other entry; the
// cross-entry pool accounting happens in ComputePayouts.
func ComputeEntryFinancials(entry PersonEntry, profiles []Profile) EntryFinancials {
	fin := EntryFinancials{
		EntryID:   entry.ID,
		ProfileID: entry.ProfileID,
		Name:      entry.Name,
	}

	fin.Hours = ResolveHours(entry.Time)
	fin.Cost = fin.Hours * sanitize(entry.HourlyCostRate)
	fin.Billed = fin.Hours * sanitize(entry.ClientHourlyRate)
	fin.GrossMargin = fin.Billed - fin.Cost

	profile := findProfile(profiles, entry.ProfileID)
	if profile != nil {
		rules := activeRules(*profile, entry)

		for _, rule := range rules {
			if rule.Basis == BasisHourly {
				fin.HourlyDeductions += hourlyAmount(rule, fin.Cost)
			}
		}

		// Margin-basis rules draw from whatever the entry has left after the
		// hourly tier. Fixed amounts are capped by the running remainder, in
		// rule order.
		remaining := fin.GrossMargin - fin.HourlyDeductions
		if remaining < 0 {
			remaining = 0
		}
		for _, rule := range rules {
			if rule.Basis != BasisMargin {
				continue
			}
			switch rule.Kind {
			case KindPercentage:
				fin.MarginDeductions += remaining * ruleValue(rule) / 100
			case KindFixedAmount:
				amount := ruleValue(rule)
				if left := remaining - fin.MarginDeductions; amount > left {
					amount = left
				}
				if amount > 0 {
					fin.MarginDeductions += amount
				}
			}
		}
	}

	fin.TotalDeductions = fin.HourlyDeductions + fin.MarginDeductions
	fin.NetMargin = fin.GrossMargin - fin.TotalDeductions
	return fin
}

// ComputePayouts aggregates every entry into one payout record per profile.
// Profiles without entries still appear, all zero; downstream views rely on
// that. The pass order is load-bearing: own pay, then the system-wide margin
// pool, then hourly-basis distribution clamped against the pool in entry
// order, then margin-basis distribution scaled proportionally when the
// remaining pool is oversubscribed.
func ComputePayouts(entries []PersonEntry, profiles []Profile) []PayoutRecord {
	records := make([]PayoutRecord, len(profiles))
	byID := make(map[string]*PayoutRecord, len(profiles))
	for i, profile := range profiles {
		records[i] = PayoutRecord{ProfileID: profile.ID, Name: profile.Name}
		byID[profile.ID] = &records[i]
	}

	fins := make([]EntryFinancials, len(entries))
	for i, entry := range entries {
		fins[i] = ComputeEntryFinancials(entry, profiles)
	}

	// Pass 1: own earned pay.
	for _, fin := range fins {
		if rec, ok := byID[fin.ProfileID]; ok {
			rec.OwnPay += fin.Cost
			rec.Total += fin.Cost
		}
	}

	// Pass 2: the shareable pool is the gross margin over all entries, not
	// net margin; per-entry deductions do not shrink what the system as a
	// whole can distribute.
	pool := 0.0
	for _, fin := range fins {
		pool += fin.GrossMargin
	}

	// Pass 3: hourly-basis distribution, priority 1. Amounts are computed
	// exactly as in the per-entry tier and clamped against the remaining
	// pool in iteration order. An exhausted or negative pool distributes
	// nothing; it never claws money back.
	remaining := pool
	for i, entry := range entries {
		profile := findProfile(profiles, entry.ProfileID)
		if profile == nil {
			continue
		}
		for _, rule := range activeRules(*profile, entry) {
			if rule.Basis != BasisHourly || rule.BeneficiaryID == "" {
				continue
			}
			beneficiary, ok := byID[rule.BeneficiaryID]
			if !ok {
				continue // beneficiary profile deleted; rule is skipped
			}
			amount := hourlyAmount(rule, fins[i].Cost)
			if amount > remaining {
				amount = remaining
			}
			if amount <= 0 {
				continue
			}
			beneficiary.ReceivedHourly += amount
			beneficiary.Total += amount
			remaining -= amount
		}
	}
	if remaining < 0 {
		remaining = 0
	}

	// Pass 4: margin-basis distribution, priority 2. All claims are tagged
	// with their desired amount against the post-hourly pool, then reduced by
	// a single shared factor if the pool cannot cover them all.
	type claim struct {
		beneficiary *PayoutRecord
		desired     float64
	}
	var claims []claim
	totalDesired := 0.0
	for _, entry := range entries {
		profile := findProfile(profiles, entry.ProfileID)
		if profile == nil {
			continue
		}
		for _, rule := range activeRules(*profile, entry) {
			if rule.Basis != BasisMargin || rule.BeneficiaryID == "" {
				continue
			}
			beneficiary, ok := byID[rule.BeneficiaryID]
			if !ok {
				continue
			}
			desired := ruleValue(rule)
			if rule.Kind == KindPercentage {
				desired = remaining * desired / 100
			}
			if desired <= 0 {
				continue
			}
			claims = append(claims, claim{beneficiary: beneficiary, desired: desired})
			totalDesired += desired
		}
	}
	scale := 1.0
	if totalDesired > remaining && totalDesired > 0 {
		scale = remaining / totalDesired
	}
	for _, c := range claims {
		actual := c.desired * scale
		c.beneficiary.ReceivedMargin += actual
		c.beneficiary.Total += actual
	}

	return records
}

// ComputeTotals sums the client invoice and the per-entry deductions over all
// entries.
func ComputeTotals(entries []PersonEntry, profiles []Profile) Totals {
	var totals Totals
	for _, entry := range entries {
		fin := ComputeEntryFinancials(entry, profiles)
		totals.ClientInvoiceTotal += fin.Billed
		totals.TotalDeductions += fin.TotalDeductions
	}
	return totals
}

// Compute runs the full projection over one snapshot. Calling it twice on an
// unchanged snapshot yields identical results; there is no hidden state.
func Compute(snapshot Snapshot) Result {
	result := Result{
		PerEntry: make([]EntryFinancials, len(snapshot.Entries)),
		Payouts:  ComputePayouts(snapshot.Entries, snapshot.Profiles),
	}
	for i, entry := range snapshot.Entries {
		fin := ComputeEntryFinancials(entry, snapshot.Profiles)
		result.PerEntry[i] = fin
		result.Totals.ClientInvoiceTotal += fin.Billed
		result.Totals.TotalDeductions += fin.TotalDeductions
	}
	return result
}

func hourlyAmount(rule DeductionRule, cost float64) float64 {
	switch rule.Kind {
	case KindPercentage:
		return cost * ruleValue(rule) / 100
	case KindFixedAmount:
		return ruleValue(rule)
	}
	return 0
}

func findProfile(profiles []Profile, id string) *Profile {
	if id == "" {
		return nil
	}
	for i := range profiles {
		if profiles[i].ID == id {
			return &profiles[i]
		}
	}
	return nil
}

// activeRules filters the profile's ordered rules down to the entry's active
// set, preserving profile rule order.
func activeRules(profile Profile, entry PersonEntry) []DeductionRule {
	if len(entry.ActiveRuleIDs) == 0 {
		return nil
	}
	active := make(map[string]struct{}, len(entry.ActiveRuleIDs))
	for _, id := range entry.ActiveRuleIDs {
		active[id] = struct{}{}
	}
	var rules []DeductionRule
	for _, rule := range profile.Rules {
		if _, ok := active[rule.ID]; ok {
			rules = append(rules, rule)
		}
	}
	return rules
}
