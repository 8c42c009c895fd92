package testbank

type QuestionType string

const (
	MULTIPLE_CHOICE QuestionType = "MULTIPLE_CHOICE"
	SHORT_ANSWER    QuestionType = "SHORT_ANSWER"
)

var AllQuestionTypes = []QuestionType{
	MULTIPLE_CHOICE,
	SHORT_ANSWER,
}

func (t QuestionType) IsValid() bool {
	for _, qt := range AllQuestionTypes {
		if t == qt {
			return true
		}
	}
	return false
}
