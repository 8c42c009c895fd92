package quota

import "time"

type QuotaResponse struct {
	Bucket    Bucket    `json:"bucket"`
	Used      int       `json:"used"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetsAt  time.Time `json:"resets_at"`
}
