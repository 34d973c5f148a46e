package models

// Money is a monetary amount in minor units (cents).
// Example: $10.50 is 1050.
type Money = int64

// NewMoney validates a non-negative amount.
func NewMoney(amount int64) (Money, error) {
	if amount < 0 {
		return 0, NewValidationError("amount", "must be non-negative")
	}
	return amount, nil
}

// NewDailyLimit validates a positive daily spending ceiling.
func NewDailyLimit(amount int64) (Money, error) {
	if amount <= 0 {
		return 0, NewValidationError("daily_limit", "must be positive")
	}
	return amount, nil
}
