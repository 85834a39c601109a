package models

import (
	"fmt"
	"strings"
)

// Slot is a (day, period) pair addressed by position in the configured universe.
type Slot struct {
	Day    int `json:"day"`
	Period int `json:"period"`
}

// Less orders slots by day, then period.
func (s Slot) Less(o Slot) bool {
	if s.Day != o.Day {
		return s.Day < o.Day
	}
	return s.Period < o.Period
}

// SlotUniverse is the finite set of days x periods lectures can be placed in.
// It is immutable after construction.
type SlotUniverse struct {
	days        []string
	periods     []string
	dayIndex    map[string]int
	periodIndex map[string]int
}

func NewSlotUniverse(days, periods []string) (*SlotUniverse, error) {
	if len(days) == 0 {
		return nil, &ValidationError{Detail: "slot universe needs at least one day"}
	}
	if len(periods) == 0 {
		return nil, &ValidationError{Detail: "slot universe needs at least one period"}
	}

	u := &SlotUniverse{
		days:        append([]string(nil), days...),
		periods:     append([]string(nil), periods...),
		dayIndex:    make(map[string]int, len(days)),
		periodIndex: make(map[string]int, len(periods)),
	}
	for i, d := range days {
		key := dayKey(d)
		if key == "" {
			return nil, &ValidationError{Detail: "empty day name"}
		}
		if _, dup := u.dayIndex[key]; dup {
			return nil, &ValidationError{Detail: fmt.Sprintf("duplicate day %q", d)}
		}
		u.dayIndex[key] = i
	}
	for i, p := range periods {
		key := strings.TrimSpace(p)
		if key == "" {
			return nil, &ValidationError{Detail: "empty period"}
		}
		if _, dup := u.periodIndex[key]; dup {
			return nil, &ValidationError{Detail: fmt.Sprintf("duplicate period %q", p)}
		}
		u.periodIndex[key] = i
	}
	return u, nil
}

// Resolve maps a day name (case-insensitive) and a period label to a Slot.
func (u *SlotUniverse) Resolve(day, time string) (Slot, bool) {
	d, ok := u.dayIndex[dayKey(day)]
	if !ok {
		return Slot{}, false
	}
	p, ok := u.periodIndex[strings.TrimSpace(time)]
	if !ok {
		return Slot{}, false
	}
	return Slot{Day: d, Period: p}, true
}

// Label returns the configured day and period names of s.
func (u *SlotUniverse) Label(s Slot) (day, time string) {
	return u.days[s.Day], u.periods[s.Period]
}

func (u *SlotUniverse) Contains(s Slot) bool {
	return s.Day >= 0 && s.Day < len(u.days) && s.Period >= 0 && s.Period < len(u.periods)
}

// Slots lists every slot in (day, period) order.
func (u *SlotUniverse) Slots() []Slot {
	slots := make([]Slot, 0, u.Size())
	for d := range u.days {
		for p := range u.periods {
			slots = append(slots, Slot{Day: d, Period: p})
		}
	}
	return slots
}

func (u *SlotUniverse) Size() int {
	return len(u.days) * len(u.periods)
}

func dayKey(day string) string {
	return strings.ToLower(strings.TrimSpace(day))
}
