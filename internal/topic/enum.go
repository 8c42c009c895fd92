package topic

type TopicType string

const (
	CORE       TopicType = "CORE"
	SUPPORTING TopicType = "SUPPORTING"
)

var AllTopicTypes = []TopicType{
	CORE,
	SUPPORTING,
}

func (t TopicType) IsValid() bool {
	for _, v := range AllTopicTypes {
		if t == v {
			return true
		}
	}
	return false
}
