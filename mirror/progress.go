package mirror

import "fmt"

// EvaluateProgress maps a feature frame against the goal profile.
//
// The percentage is a monotonic mapping of pitch proximity from below:
// clamp(100 * pitch / target, 0, 100). Overshooting the target pitch clamps
// to 100. Unvoiced frames score 0. The function is pure and deterministic:
// identical inputs always produce identical states.
func EvaluateProgress(frame FeatureFrame, goal *GoalProfile) ProgressState {
	if goal == nil || goal.TargetPitch <= 0 {
		return ProgressState{Feedback: "No goal pitch configured"}
	}

	if !frame.Voiced() {
		return ProgressState{
			Percentage: 0,
			Feedback:   "No voice detected - sing or speak into the microphone",
		}
	}

	pct := 100.0 * frame.Pitch / goal.TargetPitch
	if pct > 100.0 {
		pct = 100.0
	}
	if pct < 0.0 {
		pct = 0.0
	}

	// Accuracy buckets keep the message stable while the score moves
	// within a band.
	var msg string
	switch {
	case pct >= 90.0:
		msg = fmt.Sprintf("Pitch match %.0f%% - excellent, hold it steady", pct)
	case pct >= 70.0:
		msg = fmt.Sprintf("Pitch match %.0f%% - good, raise your pitch slightly", pct)
	case pct >= 40.0:
		msg = fmt.Sprintf("Pitch match %.0f%% - getting closer, keep adjusting", pct)
	default:
		msg = fmt.Sprintf("Pitch match %.0f%% - far from the target, listen to the goal again", pct)
	}

	return ProgressState{Percentage: pct, Feedback: msg}
}
