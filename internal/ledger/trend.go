package ledger

import (
	"fmt"
	"sort"
	"time"

	"sothuchi/internal/core"
)

const (
	Weekly  Granularity = "week"
	Monthly Granularity = "month"
)

type (
	// Granularity selects the trend bucketing window.
	Granularity string

	// TrendBucket is one window of the cash-flow trend. PeriodKey sorts
	// chronologically under plain string comparison: YYYY-MM for months
	// (zero-padded) and the Monday's YYYY-MM-DD for weeks.
	TrendBucket struct {
		PeriodKey string `json:"periodKey"`
		Label     string `json:"label"`
		Income    int64  `json:"income"`
		Expense   int64  `json:"expense"`
	}
)

func (g Granularity) Validate() error {
	switch g {
	case Weekly, Monthly:
		return nil
	}
	return fmt.Errorf("invalid granularity %q", string(g))
}

// TrendBuckets groups transactions into weekly or monthly buckets sorted
// ascending by PeriodKey. Transactions whose date fails to parse cannot be
// bucketed; they are returned in skipped so the caller can log a data-quality
// warning, and the aggregation itself never fails.
func TrendBuckets(txs []core.Transaction, g Granularity) (buckets []TrendBucket, skipped []core.Transaction) {
	byKey := make(map[string]*TrendBucket)

	for _, tx := range txs {
		day, err := tx.Date.Time()
		if err != nil {
			skipped = append(skipped, tx)
			continue
		}

		var key, label string
		if g == Monthly {
			key = fmt.Sprintf("%04d-%02d", day.Year(), int(day.Month()))
			label = fmt.Sprintf("Tháng %d/%d", int(day.Month()), day.Year())
		} else {
			monday := weekMonday(day)
			key = monday.Format(core.DateLayout)
			label = fmt.Sprintf("Tuần %d/%d", monday.Day(), int(monday.Month()))
		}

		b, ok := byKey[key]
		if !ok {
			b = &TrendBucket{PeriodKey: key, Label: label}
			byKey[key] = b
		}
		if tx.Type == core.Income {
			b.Income += tx.Amount.VND
		} else {
			b.Expense += tx.Amount.VND
		}
	}

	buckets = make([]TrendBucket, 0, len(byKey))
	for _, b := range byKey {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].PeriodKey < buckets[j].PeriodKey
	})
	return buckets, skipped
}

// weekMonday returns the Monday of the ISO week containing day. A Sunday
// belongs to the week that started six days earlier, not the next one.
func weekMonday(day time.Time) time.Time {
	offset := int(time.Monday - day.Weekday())
	if day.Weekday() == time.Sunday {
		offset = -6
	}
	return day.AddDate(0, 0, offset)
}
