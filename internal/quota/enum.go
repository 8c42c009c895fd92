package quota

type Bucket string

const (
	LEARNING_INTERACTIONS Bucket = "learning_interactions"
	FILE_UPLOADS          Bucket = "file_uploads"
)

var AllBuckets = []Bucket{
	LEARNING_INTERACTIONS,
	FILE_UPLOADS,
}

// DefaultLimits are the per-day allowances provisioned at first login.
var DefaultLimits = map[Bucket]int{
	LEARNING_INTERACTIONS: 50,
	FILE_UPLOADS:          10,
}

func (b Bucket) IsValid() bool {
	for _, v := range AllBuckets {
		if b == v {
			return true
		}
	}
	return false
}
