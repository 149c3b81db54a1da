package commission

const (
	BasisHourly = "hourly"
	BasisMargin = "margin"

	KindPercentage  = "percentage"
	KindFixedAmount = "fixed_amount"
)

var (
	Bases = []string{BasisHourly, BasisMargin}
	Kinds = []string{KindPercentage, KindFixedAmount}
)
