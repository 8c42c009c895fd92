package aiusage

import (
	"time"

	"gorm.io/gorm"
)

// Totals aggregates AI spend over a window.
type Totals struct {
	Calls        int64   `json:"calls"`
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
	CostUSD      float64 `json:"cost_usd"`
}

type Repository interface {
	Create(entry *AIUsageLog) error
	TotalsSince(since time.Time) (*Totals, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(entry *AIUsageLog) error {
	return r.db.Create(entry).Error
}

// TotalsSince sums usage from the given instant. A zero time means all-time.
func (r *repository) TotalsSince(since time.Time) (*Totals, error) {
	q := r.db.Model(&AIUsageLog{}).
		Select("COUNT(*) AS calls, COALESCE(SUM(input_tokens), 0) AS input_tokens, COALESCE(SUM(output_tokens), 0) AS output_tokens, COALESCE(SUM(cost_usd), 0) AS cost_usd")
	if !since.IsZero() {
		q = q.Where("created_at >= ?", since)
	}

	var totals Totals
	if err := q.Scan(&totals).Error; err != nil {
		return nil, err
	}
	return &totals, nil
}
