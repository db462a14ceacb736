package engine

// TouristMode selects which procedure Tourists run during their phase.
type TouristMode int

const (
	// ModeGreedy moves like a Mover and does not count toward the lifetime.
	ModeGreedy TouristMode = iota
	// ModeIdle stays put and counts.
	ModeIdle
	// ModeRandomWalk steps onto a random vacant neighbor and counts.
	ModeRandomWalk
)

func (m TouristMode) String() string {
	switch m {
	case ModeGreedy:
		return "greedy"
	case ModeIdle:
		return "idle"
	case ModeRandomWalk:
		return "random-walk"
	default:
		return "unknown"
	}
}

// ModeForTurn splits a run of total turns into thirds: the first third is
// greedy, the middle third idle, the rest a random walk. turn is the
// zero-based index of the turn being played.
func ModeForTurn(turn, total int) TouristMode {
	switch {
	case 3*turn <= total:
		return ModeGreedy
	case 3*turn <= 2*total:
		return ModeIdle
	default:
		return ModeRandomWalk
	}
}
