package models

// AccountState is the activation state of a card.
type AccountState string

const (
	StateActive      AccountState = "ACTIVE"
	StateDeactivated AccountState = "DEACTIVATED"
)

const cardNumberLen = 16

// CardState is the full snapshot of a single card. Commands never mutate a
// snapshot in place; the engine returns a new one.
type CardState struct {
	Number         string       `json:"number"`
	OwnerID        string       `json:"owner_id"`
	HolderName     string       `json:"holder_name"`
	ExpirationDate string       `json:"expiration_date"` // YYMM
	State          AccountState `json:"state"`
	Balance        Money        `json:"balance"`
	DailyLimit     Money        `json:"daily_limit"`
	SpentToday     Money        `json:"spent_today"`
	LastSpentDay   string       `json:"last_spent_day,omitempty"` // YYYY-MM-DD; empty until first payment

	// Version is the storage CAS token; it never crosses the API boundary.
	Version int64 `json:"-"`
}

// ValidateCardNumber checks the fixed 16-digit numeric format. No checksum
// is applied.
func ValidateCardNumber(number string) error {
	if len(number) != cardNumberLen {
		return NewValidationError("number", "must be 16 numeric digits")
	}
	for i := 0; i < len(number); i++ {
		if number[i] < '0' || number[i] > '9' {
			return NewValidationError("number", "must be 16 numeric digits")
		}
	}
	return nil
}

// CreateCard is the payload for issuing a card to an existing user.
type CreateCard struct {
	// Number is optional; when empty a fresh unique number is generated.
	Number         string `json:"number,omitempty"`
	HolderName     string `json:"holder_name"`
	ExpirationDate string `json:"expiration_date"` // card face: MM/YY or MMYY
	// DailyLimit in minor units; zero means the configured default.
	DailyLimit int64 `json:"daily_limit,omitempty"`
}
