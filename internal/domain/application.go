package domain

import "time"

// Application statuses.
const (
	ApplicationApplied   = "applied"
	ApplicationScreening = "screening"
	ApplicationInterview = "interview"
	ApplicationOffer     = "offer"
	ApplicationHired     = "hired"
	ApplicationRejected  = "rejected"
	ApplicationWithdrawn = "withdrawn"
)

// ApplicationPipeline lists forward stages in order.
var ApplicationPipeline = []string{
	ApplicationApplied,
	ApplicationScreening,
	ApplicationInterview,
	ApplicationOffer,
	ApplicationHired,
}

// ApplicationStatuses lists every status, pipeline first.
var ApplicationStatuses = append(append([]string(nil), ApplicationPipeline...), ApplicationRejected, ApplicationWithdrawn)

// Application links a candidate to a job.
type Application struct {
	ID            string    `json:"id"`
	JobID         string    `json:"job_id"`
	JobTitle      string    `json:"job_title,omitempty"`
	CandidateID   string    `json:"candidate_id"`
	CandidateName string    `json:"candidate_name,omitempty"`
	Status        string    `json:"status"`
	CoverLetter   string    `json:"cover_letter,omitempty"`
	Source        string    `json:"source,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ApplicationEvent records one status change.
type ApplicationEvent struct {
	ID            string    `json:"id"`
	ApplicationID string    `json:"application_id"`
	FromStatus    string    `json:"from_status,omitempty"`
	ToStatus      string    `json:"to_status"`
	Note          string    `json:"note,omitempty"`
	ActorID       string    `json:"actor_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ApplicationFilter narrows application listings.
type ApplicationFilter struct {
	JobID       string
	CandidateID string
	Status      string
	Limit       int
	Offset      int
}

// Terminal reports whether no further transitions are possible from status.
func Terminal(status string) bool {
	switch status {
	case ApplicationHired, ApplicationRejected, ApplicationWithdrawn:
		return true
	}
	return false
}

// CanTransition reports whether an application may move from one status to another.
// Forward moves along the pipeline may skip stages; backward moves are refused.
// Rejection and withdrawal are reachable from every non-terminal status.
func CanTransition(from, to string) bool {
	if from == to || Terminal(from) {
		return false
	}
	if to == ApplicationRejected || to == ApplicationWithdrawn {
		return true
	}
	fromIdx, toIdx := stageIndex(from), stageIndex(to)
	if fromIdx < 0 || toIdx < 0 {
		return false
	}
	return toIdx > fromIdx
}

func stageIndex(status string) int {
	for i, s := range ApplicationPipeline {
		if s == status {
			return i
		}
	}
	return -1
}
