package learning

type SessionStatus string

const (
	NOT_STARTED SessionStatus = "NOT_STARTED"
	IN_PROGRESS SessionStatus = "IN_PROGRESS"
	PAUSED      SessionStatus = "PAUSED"
	COMPLETED   SessionStatus = "COMPLETED"
)

var AllSessionStatuses = []SessionStatus{
	NOT_STARTED,
	IN_PROGRESS,
	PAUSED,
	COMPLETED,
}

func (s SessionStatus) IsValid() bool {
	for _, status := range AllSessionStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type SessionPhase string

const (
	EXPLAINING SessionPhase = "EXPLAINING"
	TESTING    SessionPhase = "TESTING"
)

type TopicStatus string

const (
	TOPIC_IN_PROGRESS TopicStatus = "IN_PROGRESS"
	TOPIC_COMPLETED   TopicStatus = "COMPLETED"
)
