package aiusage

type Purpose string

const (
	TOPIC_EXTRACTION Purpose = "topic_extraction"
	TEST_GENERATION  Purpose = "test_generation"
	REMEDIATION      Purpose = "remediation"
	EXPLANATION      Purpose = "explanation"
)
