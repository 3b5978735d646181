package usage

// BudgetReader exposes embedding token counters for the current UTC day and
// month. A zero limit is unlimited; Remaining* then report -1.
type BudgetReader interface {
	DailyBudget
	MonthlyBudget
}

// DailyBudget reads the counters of the current UTC day.
type DailyBudget interface {
	DailyLimit() int64
	DailyUsed() int64
	RemainingDaily() int64
}

// MonthlyBudget reads the counters of the current UTC month.
type MonthlyBudget interface {
	MonthlyLimit() int64
	MonthlyUsed() int64
	RemainingMonthly() int64
}
