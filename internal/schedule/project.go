package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/sarafrika/elimika-availability-api/internal/models"
)

// Granularity selects the calendar bucket size.
type Granularity string

const (
	GranularityDay   Granularity = "DAY"
	GranularityWeek  Granularity = "WEEK"
	GranularityMonth Granularity = "MONTH"
)

// Bucket is one calendar cell of the projected view.
type Bucket struct {
	Key       string                    `json:"key"`
	Start     time.Time                 `json:"start"`
	End       time.Time                 `json:"end"`
	Instances []models.ScheduleInstance `json:"instances"`
}

// Project groups instances into day, week or month buckets for the
// calendar UI. Weeks start Monday. Pure grouping; instances keep their
// incoming order inside each bucket.
func Project(instances []models.ScheduleInstance, granularity Granularity, loc *time.Location) ([]Bucket, error) {
	if loc == nil {
		return nil, fmt.Errorf("%w: projection requires a location", ErrInvalidTimezone)
	}

	index := make(map[string]int)
	var buckets []Bucket
	for _, inst := range instances {
		key, start, end := bucketFor(inst.Start.In(loc), granularity)
		if key == "" {
			return nil, fmt.Errorf("unknown granularity %q", granularity)
		}
		at, ok := index[key]
		if !ok {
			index[key] = len(buckets)
			buckets = append(buckets, Bucket{Key: key, Start: start, End: end})
			at = index[key]
		}
		buckets[at].Instances = append(buckets[at].Instances, inst)
	}

	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Start.Before(buckets[j].Start) })
	return buckets, nil
}

func bucketFor(t time.Time, granularity Granularity) (string, time.Time, time.Time) {
	switch granularity {
	case GranularityDay:
		start := midnight(t, t.Location())
		return start.Format("2006-01-02"), start, start.AddDate(0, 0, 1)
	case GranularityWeek:
		// Monday-start weeks, ISO week keys.
		offset := (int(t.Weekday()) + 6) % 7
		start := midnight(t, t.Location()).AddDate(0, 0, -offset)
		year, week := start.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week), start, start.AddDate(0, 0, 7)
	case GranularityMonth:
		start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
		return start.Format("2006-01"), start, start.AddDate(0, 1, 0)
	default:
		return "", time.Time{}, time.Time{}
	}
}
