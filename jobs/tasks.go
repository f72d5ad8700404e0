package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDepreciationRun posts the monthly depreciation schedule.
	TaskDepreciationRun = "depreciation:run"
)

// DepreciationRunPayload scopes a depreciation run. A zero OrgID means sweep
// every organization that holds active assets; a zero PeriodID means the
// period containing the last day of the previous month.
type DepreciationRunPayload struct {
	OrgID    int64 `json:"org_id,omitempty"`
	PeriodID int64 `json:"period_id,omitempty"`
}

// NewDepreciationRunTask constructs an Asynq task.
func NewDepreciationRunTask(payload DepreciationRunPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDepreciationRun, data), nil
}
