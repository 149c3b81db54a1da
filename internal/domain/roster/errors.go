package roster

import "errors"

var (
	ErrProfileNotFound  = errors.New("profile not found")
	ErrRuleNotFound     = errors.New("deduction rule not found")
	ErrEntryNotFound    = errors.New("person entry not found")
	ErrRuleNotOnProfile = errors.New("rule does not belong to the entry's profile")
)
