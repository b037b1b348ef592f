package evolution

// Stage names how far a creature has progressed along the confirmation
// thresholds.
type Stage int

const (
	StageNascent Stage = iota
	StageEmerging
	StageDeveloping
	StageMature
	StageEvolved
	StageAscendant
	StageAwakened
	StageTranscendent
)

func (s Stage) String() string {
	switch s {
	case StageNascent:
		return "Nascent"
	case StageEmerging:
		return "Emerging"
	case StageDeveloping:
		return "Developing"
	case StageMature:
		return "Mature"
	case StageEvolved:
		return "Evolved"
	case StageAscendant:
		return "Ascendant"
	case StageAwakened:
		return "Awakened"
	case StageTranscendent:
		return "Transcendent"
	default:
		return "Unknown"
	}
}

// MarshalJSON renders stages by name.
func (s Stage) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Milestones are the confirmation thresholds that guarantee a mutation
// on first crossing, ascending.
var Milestones = []int64{10_000, 25_000, 50_000, 100_000, 250_000, 500_000, 1_000_000}

// milestoneProbabilities pairs each milestone with its mutation
// probability. Below the first milestone the baseline applies.
var milestoneProbabilities = []float64{0.10, 0.25, 0.30, 0.35, 0.40, 0.50, 0.60}

const baselineProbability = 0.01

// MutationProbability returns the per-event mutation probability for a
// confirmation count. The step function is monotonically non-decreasing.
func MutationProbability(confirmations int64) float64 {
	prob := baselineProbability
	for i, m := range Milestones {
		if confirmations >= m {
			prob = milestoneProbabilities[i]
		}
	}
	return prob
}

// StageFor maps a confirmation count to its evolution stage.
func StageFor(confirmations int64) Stage {
	stage := StageNascent
	for i, m := range Milestones {
		if confirmations >= m {
			stage = Stage(i + 1)
		}
	}
	return stage
}

// HighestMilestone returns the largest milestone not exceeding the
// confirmation count, or 0 if none has been reached.
func HighestMilestone(confirmations int64) int64 {
	var highest int64
	for _, m := range Milestones {
		if confirmations >= m {
			highest = m
		}
	}
	return highest
}

// ShouldReceiveGuaranteedMutation reports whether the creature is
// crossing its current highest milestone for the first time. Once an
// entry records a milestone, repeated calls at the same or higher
// confirmation counts (below the next milestone) stay false.
func ShouldReceiveGuaranteedMutation(confirmations int64, history []Entry) bool {
	milestone := HighestMilestone(confirmations)
	if milestone == 0 {
		return false
	}
	for _, entry := range history {
		if entry.Milestone == milestone {
			return false
		}
	}
	return true
}
