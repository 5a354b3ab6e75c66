package keeperbot

import (
	"time"

	"github.com/google/btree"
)

const scheduleDegree = 16

// scheduleItem orders strategies by their next check time
type scheduleItem struct {
	due      time.Time
	strategy string
}

// Less implements btree.Item - earliest first, ties broken by address
func (a *scheduleItem) Less(b btree.Item) bool {
	other := b.(*scheduleItem)
	if a.due.Equal(other.due) {
		return a.strategy < other.strategy
	}
	return a.due.Before(other.due)
}

// Schedule is the set of watched strategies keyed by next check time.
// It is not safe for concurrent use; the bot guards it.
type Schedule struct {
	tree  *btree.BTree
	index map[string]time.Time
}

// NewSchedule creates an empty schedule
func NewSchedule() *Schedule {
	return &Schedule{
		tree:  btree.New(scheduleDegree),
		index: make(map[string]time.Time),
	}
}

// Set schedules strategy at due, replacing any earlier entry
func (s *Schedule) Set(strategy string, due time.Time) {
	if prev, ok := s.index[strategy]; ok {
		s.tree.Delete(&scheduleItem{due: prev, strategy: strategy})
	}
	s.tree.ReplaceOrInsert(&scheduleItem{due: due, strategy: strategy})
	s.index[strategy] = due
}

// Add schedules strategy at due unless it is already watched
func (s *Schedule) Add(strategy string, due time.Time) bool {
	if _, ok := s.index[strategy]; ok {
		return false
	}
	s.Set(strategy, due)
	return true
}

// Remove stops watching strategy
func (s *Schedule) Remove(strategy string) {
	if prev, ok := s.index[strategy]; ok {
		s.tree.Delete(&scheduleItem{due: prev, strategy: strategy})
		delete(s.index, strategy)
	}
}

// PopDue removes and returns up to limit strategies due at or before now
func (s *Schedule) PopDue(now time.Time, limit int) []string {
	var due []string
	s.tree.Ascend(func(item btree.Item) bool {
		it := item.(*scheduleItem)
		if it.due.After(now) || len(due) >= limit {
			return false
		}
		due = append(due, it.strategy)
		return true
	})
	for _, strategy := range due {
		s.Remove(strategy)
	}
	return due
}

// Next returns the earliest due time
func (s *Schedule) Next() (time.Time, bool) {
	item := s.tree.Min()
	if item == nil {
		return time.Time{}, false
	}
	return item.(*scheduleItem).due, true
}

// Contains reports whether strategy is watched
func (s *Schedule) Contains(strategy string) bool {
	_, ok := s.index[strategy]
	return ok
}

// Len returns the number of watched strategies
func (s *Schedule) Len() int {
	return s.tree.Len()
}
