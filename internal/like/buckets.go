package like

import (
	"encoding/json"
	"sort"
	"time"
)

// DayLayout formats the UTC calendar-day keys used by buckets and tallies.
const DayLayout = "2006-01-02"

// MaxDayBuckets is the number of most recent days a DayBuckets keeps.
const MaxDayBuckets = 7

// DayKey returns the UTC calendar day of t.
func DayKey(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

type dayCount struct {
	day   string
	count int
}

// DayBuckets is an ordered, bounded day→count table. Days are kept in
// ascending order and the oldest days are evicted first once more than
// MaxDayBuckets are present.
type DayBuckets struct {
	days []dayCount
}

// Increment adds one to day, creating the bucket if needed.
func (b *DayBuckets) Increment(day string) {
	i := b.search(day)
	if i == len(b.days) || b.days[i].day != day {
		b.days = append(b.days, dayCount{})
		copy(b.days[i+1:], b.days[i:])
		b.days[i] = dayCount{day: day}
		b.prune()
		i = b.search(day)
		if i == len(b.days) || b.days[i].day != day {
			// older than every retained day
			return
		}
	}
	b.days[i].count++
}

// Count returns the attempts recorded for day.
func (b DayBuckets) Count(day string) int {
	i := b.search(day)
	if i < len(b.days) && b.days[i].day == day {
		return b.days[i].count
	}
	return 0
}

// Days returns the retained days, oldest first.
func (b DayBuckets) Days() []string {
	out := make([]string, len(b.days))
	for i, d := range b.days {
		out[i] = d.day
	}
	return out
}

// Len returns the number of retained days.
func (b DayBuckets) Len() int {
	return len(b.days)
}

func (b *DayBuckets) prune() {
	if over := len(b.days) - MaxDayBuckets; over > 0 {
		b.days = append([]dayCount(nil), b.days[over:]...)
	}
}

func (b DayBuckets) search(day string) int {
	return sort.Search(len(b.days), func(i int) bool { return b.days[i].day >= day })
}

// MarshalJSON encodes the buckets as {"YYYY-MM-DD": count}.
func (b DayBuckets) MarshalJSON() ([]byte, error) {
	m := make(map[string]int, len(b.days))
	for _, d := range b.days {
		m[d.day] = d.count
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes {"YYYY-MM-DD": count}, restoring day order.
func (b *DayBuckets) UnmarshalJSON(data []byte) error {
	var m map[string]int
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	b.days = make([]dayCount, 0, len(m))
	for day, count := range m {
		b.days = append(b.days, dayCount{day: day, count: count})
	}
	sort.Slice(b.days, func(i, j int) bool { return b.days[i].day < b.days[j].day })
	return nil
}
