package gamescore

const (
	BreakoutCCUFloor   = 500
	BreakoutMinHistory = 7
	BreakoutWindow     = 7
	BreakoutMultiplier = 3.0
	BreakoutBonus      = 50.0
)

// DetectBreakout checks today's peak against the rolling mean of the most
// recent prior entries. prior must be ordered by date ascending and must not
// contain today.
func DetectBreakout(peakCCU int64, prior []HistoryEntry, alreadyAwarded bool) (float64, bool) {
	if alreadyAwarded || peakCCU < BreakoutCCUFloor || len(prior) < BreakoutMinHistory {
		return 0, false
	}

	window := prior[max(0, len(prior)-BreakoutWindow):]
	var sum float64
	for _, e := range window {
		sum += float64(e.CCU)
	}
	mean := sum / float64(len(window))
	if mean <= 0 {
		return 0, false
	}
	if float64(peakCCU) >= mean*BreakoutMultiplier {
		return BreakoutBonus, true
	}
	return 0, false
}
