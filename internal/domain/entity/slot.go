package entity

import "time"

// SlotStatus represents whether a slot can still be booked
type SlotStatus string

const (
	SlotStatusOpen     SlotStatus = "Open"
	SlotStatusReserved SlotStatus = "Reserved"
)

// Working-day grid: one slot every SlotStride from SlotDayStart through SlotDayEnd inclusive
const (
	SlotDayStart = "08:00"
	SlotDayEnd   = "17:00"
	SlotStride   = 30 * time.Minute
)

// Slot is a bookable half-hour unit of a physician's day
type Slot struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	PhysicianID int        `gorm:"not null;uniqueIndex:uq_slots_physician_date_time,priority:1" json:"physician_id"`
	Date        string     `gorm:"type:char(10);not null;uniqueIndex:uq_slots_physician_date_time,priority:2" json:"date"`
	Time        string     `gorm:"type:char(5);not null;uniqueIndex:uq_slots_physician_date_time,priority:3" json:"time"`
	Status      SlotStatus `gorm:"type:varchar(10);not null;default:'Open'" json:"status"`

	// Relationships
	Physician Physician `gorm:"foreignKey:PhysicianID" json:"-"`
}

func (Slot) TableName() string {
	return "slots"
}

// DaySlotTimes lists every slot time of a working day in ascending order
func DaySlotTimes() []string {
	start, _ := time.Parse(ClockLayout, SlotDayStart)
	end, _ := time.Parse(ClockLayout, SlotDayEnd)

	var times []string
	for t := start; !t.After(end); t = t.Add(SlotStride) {
		times = append(times, t.Format(ClockLayout))
	}
	return times
}

// IsSlotTime reports whether clock lies on the working-day grid
func IsSlotTime(clock string) bool {
	for _, t := range DaySlotTimes() {
		if t == clock {
			return true
		}
	}
	return false
}

// NewDaySlots builds the open slots of one physician's day
func NewDaySlots(physicianID int, date string) []Slot {
	times := DaySlotTimes()
	slots := make([]Slot, len(times))
	for i, t := range times {
		slots[i] = Slot{
			PhysicianID: physicianID,
			Date:        date,
			Time:        t,
			Status:      SlotStatusOpen,
		}
	}
	return slots
}

// UpcomingTimes drops the times of date that are not strictly after now.
// Dates other than today are compared as whole days: past dates yield nothing,
// future dates keep every time.
func UpcomingTimes(now time.Time, date string, times []string) []string {
	upcoming := make([]string, 0, len(times))
	for _, t := range times {
		at, err := CombineDateClock(date, t, now.Location())
		if err != nil {
			continue
		}
		if at.After(now) {
			upcoming = append(upcoming, t)
		}
	}
	return upcoming
}
