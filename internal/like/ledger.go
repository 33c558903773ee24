package like

import "time"

// Entry records one anonymous like on an article.
type Entry struct {
	Identifier  string     `json:"identifier"`
	UserAgent   string     `json:"userAgent,omitempty"`
	Fingerprint string     `json:"fingerprint,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// LastTouched returns UpdatedAt, or CreatedAt when the entry was never updated.
func (e Entry) LastTouched() time.Time {
	if e.UpdatedAt != nil {
		return *e.UpdatedAt
	}
	return e.CreatedAt
}

// Ledger is the list of anonymous likes on an article, at most one per identifier.
type Ledger []Entry

// Has reports whether identifier currently likes the article.
func (l Ledger) Has(identifier string) bool {
	return l.index(identifier) >= 0
}

// Remove drops the entry for identifier and reports whether one existed.
func (l *Ledger) Remove(identifier string) bool {
	i := l.index(identifier)
	if i < 0 {
		return false
	}
	*l = append((*l)[:i], (*l)[i+1:]...)
	return true
}

// Append adds e. Callers check Has first.
func (l *Ledger) Append(e Entry) {
	*l = append(*l, e)
}

// Len returns the number of likes.
func (l Ledger) Len() int {
	return len(l)
}

// CountUpdatedOn counts entries of identifier last updated on day.
func (l Ledger) CountUpdatedOn(identifier, day string) int {
	n := 0
	for _, e := range l {
		if e.Identifier == identifier && DayKey(e.LastTouched()) == day {
			n++
		}
	}
	return n
}

func (l Ledger) index(identifier string) int {
	for i, e := range l {
		if e.Identifier == identifier {
			return i
		}
	}
	return -1
}

// DailyTally counts likes added per identifier on a single UTC day.
// Touching it with a different day starts a fresh tally.
type DailyTally struct {
	Day    string         `json:"day,omitempty"`
	Counts map[string]int `json:"counts,omitempty"`
}

// Count returns the likes identifier added on day.
func (t DailyTally) Count(identifier, day string) int {
	if t.Day != day {
		return 0
	}
	return t.Counts[identifier]
}

// Add records one like added by identifier on day.
func (t *DailyTally) Add(identifier, day string) {
	if t.Day != day || t.Counts == nil {
		t.Day = day
		t.Counts = make(map[string]int)
	}
	t.Counts[identifier]++
}
