package progress

import "fmt"

// ProgressState is a snapshot of one simulation run.
type ProgressState struct {
	RunID            string  `json:"runId"`
	CurrentStep      int     `json:"currentStep"`
	TotalSteps       int     `json:"totalSteps"`
	MatchedCount     int     `json:"matchedCount"`
	EstimatedCount   int     `json:"estimatedCount"`
	IsComplete       bool    `json:"isComplete"`
	CurrentStepName  string  `json:"currentStepName"`
	StatusMessage    string  `json:"statusMessage"`
	IsWaitingForAPI  bool    `json:"isWaitingForApi"`
	Progress         float64 `json:"progress"`
	ElapsedMs        int64   `json:"elapsedMs"`
	EstimatedTotalMs int64   `json:"estimatedTotalMs"`
}

// Fraction returns Progress scaled to [0,1].
func (s ProgressState) Fraction() float64 {
	return min(max(s.Progress/100, 0), 1)
}

// StepLabel renders "Step n of m".
func (s ProgressState) StepLabel() string {
	n := min(s.CurrentStep+1, s.TotalSteps)
	return fmt.Sprintf("Step %d of %d", n, s.TotalSteps)
}
