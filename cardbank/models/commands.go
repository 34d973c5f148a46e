package models

// Command is a requested card state transition. The set is closed: the
// engine dispatches on the concrete type.
type Command interface {
	command()
}

type Activate struct{}

type Deactivate struct{}

type SetDailyLimit struct {
	Limit Money
}

type ProcessPayment struct {
	Amount Money
}

type TopUp struct {
	Amount Money
}

func (Activate) command()      {}
func (Deactivate) command()    {}
func (SetDailyLimit) command() {}
func (ProcessPayment) command() {}
func (TopUp) command()         {}
