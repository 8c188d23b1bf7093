package calculator

// BalanceDirection describes a signed balance from the viewer's side.
type BalanceDirection string

const (
	YouAreOwed BalanceDirection = "you_are_owed"
	YouOwe     BalanceDirection = "you_owe"
	Settled    BalanceDirection = "settled"
)

// Direction maps a net amount to its direction. It is the only place the
// sign of a balance is interpreted; zero cents is settled.
func Direction(netCents int64) BalanceDirection {
	switch {
	case netCents > 0:
		return YouAreOwed
	case netCents < 0:
		return YouOwe
	default:
		return Settled
	}
}
