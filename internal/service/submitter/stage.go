package submitter

// Stage 是一次提交所处的阶段, 只会向前推进:
// Signing -> Broadcasting -> Polling -> {Confirmed, Reverted, TimedOut}
type Stage int

const (
	StageSigning Stage = iota
	StageBroadcasting
	StagePolling
	StageConfirmed
	StageReverted
	StageTimedOut
)

func (s Stage) String() string {
	switch s {
	case StageSigning:
		return "signing"
	case StageBroadcasting:
		return "broadcasting"
	case StagePolling:
		return "polling"
	case StageConfirmed:
		return "confirmed"
	case StageReverted:
		return "reverted"
	case StageTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s Stage) Terminal() bool {
	return s >= StageConfirmed
}
