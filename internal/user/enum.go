package user

type Plan string

const (
	FREE Plan = "FREE"
	PRO  Plan = "PRO"
)

var AllPlans = []Plan{
	FREE,
	PRO,
}

func (p Plan) IsValid() bool {
	for _, v := range AllPlans {
		if p == v {
			return true
		}
	}
	return false
}
