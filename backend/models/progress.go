package models

// ProgressState is the position of a track instance in its lifecycle.
type ProgressState string

const (
	StateNotStarted ProgressState = "not_started"
	StateInProgress ProgressState = "in_progress"
	StateCompleted  ProgressState = "completed"
)

func (t *Track) State() ProgressState {
	switch {
	case t.Completed:
		return StateCompleted
	case t.CurrentCheckpoint == "":
		return StateNotStarted
	default:
		return StateInProgress
	}
}

type ProgressOverview struct {
	TotalTracks       int `json:"totalTracks"`
	NotStarted        int `json:"notStarted"`
	InProgress        int `json:"inProgress"`
	CompletedTracks   int `json:"completedTracks"`
	TotalTasks        int `json:"totalTasks"`
	CompletedTasks    int `json:"completedTasks"`
	TotalCheckpoints  int `json:"totalCheckpoints"`
	PassedCheckpoints int `json:"passedCheckpoints"`
}
