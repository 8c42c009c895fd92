package file

type FileStatus string

const (
	UPLOADED   FileStatus = "UPLOADED"
	PROCESSING FileStatus = "PROCESSING"
	READY      FileStatus = "READY"
	FAILED     FileStatus = "FAILED"
)

var AllFileStatuses = []FileStatus{
	UPLOADED,
	PROCESSING,
	READY,
	FAILED,
}

func (s FileStatus) IsValid() bool {
	for _, status := range AllFileStatuses {
		if s == status {
			return true
		}
	}
	return false
}
