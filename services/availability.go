// services/availability.go
package services

import (
	"errors"
	"sort"
	"time"

	"glowdesk-backend/models"
	"glowdesk-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Slot generation policy. Fixed, not caller-configurable.
const (
	slotStepMinutes        = 15
	availabilityWindowDays = 90
)

var ErrNoServicesSelected = errors.New("no services selected")

// StaffChoice selects who performs a service: a specific staff member or
// any qualified one.
type StaffChoice struct {
	staffID uuid.UUID
	any     bool
}

func AnyQualified() StaffChoice {
	return StaffChoice{any: true}
}

func ForStaff(id uuid.UUID) StaffChoice {
	return StaffChoice{staffID: id}
}

func (c StaffChoice) IsAny() bool {
	return c.any
}

func (c StaffChoice) StaffID() uuid.UUID {
	return c.staffID
}

// ServiceSelection is one requested service with its staff choice.
type ServiceSelection struct {
	ServiceID uuid.UUID
	Staff     StaffChoice
}

// SlotSegment is the per-service sub-allocation inside a slot. Services
// run sequentially, each segment starting where the prior one ended.
type SlotSegment struct {
	ServiceID uuid.UUID `json:"serviceId"`
	StaffID   uuid.UUID `json:"staffId"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
}

// Slot is a candidate bookable interval. Ephemeral; generated per request
// and never persisted unless booked.
type Slot struct {
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	Label    string        `json:"label"`
	Duration int           `json:"duration"` // minutes
	Segments []SlotSegment `json:"appointments"`
}

type AvailabilityGenerator struct {
	db *gorm.DB
}

func NewAvailabilityGenerator(db *gorm.DB) *AvailabilityGenerator {
	return &AvailabilityGenerator{db: db}
}

type window struct {
	start time.Time
	end   time.Time
}

// DailySlots produces, for each day in the 90-day window starting at
// startDate, the slots that fit every requested service sequentially
// inside some staff's working hours without touching an existing booking.
// Days with no surviving slots are omitted from the result, which is
// keyed by "2006-01-02".
func (g *AvailabilityGenerator) DailySlots(businessID uuid.UUID, selections []ServiceSelection, startDate time.Time) (map[string][]Slot, error) {
	if len(selections) == 0 {
		return nil, ErrNoServicesSelected
	}

	services, totalDuration, err := g.loadServices(businessID, selections)
	if err != nil {
		return nil, err
	}

	candidates, err := g.candidateStaff(businessID, selections)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return map[string][]Slot{}, nil
	}

	windowStart := utils.BeginningOfDay(startDate)
	windowEnd := windowStart.AddDate(0, 0, availabilityWindowDays)

	bookedByStaff, err := g.loadBookings(businessID, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]Slot)
	for d := 0; d < availabilityWindowDays; d++ {
		day := windowStart.AddDate(0, 0, d)
		weekday := utils.WeekdayName(day)

		var open []window
		staffWindows := make(map[uuid.UUID][]window)
		for _, st := range candidates {
			for _, raw := range st.RangesFor(weekday) {
				cr, err := utils.ParseClockRange(raw)
				if err != nil {
					continue // malformed range contributes nothing
				}
				w := window{utils.AtMinutes(day, cr.Start), utils.AtMinutes(day, cr.End)}
				open = append(open, w)
				staffWindows[st.ID] = append(staffWindows[st.ID], w)
			}
		}
		if len(open) == 0 {
			continue
		}

		var slots []Slot
		for _, w := range mergeWindows(open) {
			for s := w.start; !s.Add(totalDuration).After(w.end); s = s.Add(slotStepMinutes * time.Minute) {
				slot, ok := buildSlot(s, selections, services, candidates, staffWindows)
				if !ok {
					continue
				}
				if slotConflicts(slot, bookedByStaff) {
					continue
				}
				slots = append(slots, slot)
			}
		}
		if len(slots) > 0 {
			out[day.Format("2006-01-02")] = slots
		}
	}
	return out, nil
}

func (g *AvailabilityGenerator) loadServices(businessID uuid.UUID, selections []ServiceSelection) (map[uuid.UUID]models.Service, time.Duration, error) {
	ids := make([]uuid.UUID, 0, len(selections))
	for _, sel := range selections {
		ids = append(ids, sel.ServiceID)
	}

	var rows []models.Service
	if err := g.db.Where("business_id = ? AND id IN ?", businessID, ids).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	byID := make(map[uuid.UUID]models.Service, len(rows))
	for _, svc := range rows {
		byID[svc.ID] = svc
	}

	var total time.Duration
	for _, sel := range selections {
		svc, ok := byID[sel.ServiceID]
		if !ok {
			return nil, 0, errors.New("service not found: " + sel.ServiceID.String())
		}
		total += time.Duration(svc.Duration) * time.Minute
	}
	return byID, total, nil
}

// candidateStaff picks the staff whose working hours seed the open
// windows: the explicit selections when every service names one, or
// every active staff member qualified for all requested services as soon
// as any selection asks for "any qualified".
func (g *AvailabilityGenerator) candidateStaff(businessID uuid.UUID, selections []ServiceSelection) ([]models.Staff, error) {
	anyRequested := false
	explicit := make(map[uuid.UUID]bool)
	for _, sel := range selections {
		if sel.Staff.IsAny() {
			anyRequested = true
		} else {
			explicit[sel.Staff.StaffID()] = true
		}
	}

	if !anyRequested {
		ids := make([]uuid.UUID, 0, len(explicit))
		for id := range explicit {
			ids = append(ids, id)
		}
		var staff []models.Staff
		err := g.db.Preload("Services").
			Where("business_id = ? AND is_active = ? AND id IN ?", businessID, true, ids).
			Find(&staff).Error
		return staff, err
	}

	var all []models.Staff
	if err := g.db.Preload("Services").
		Where("business_id = ? AND is_active = ?", businessID, true).
		Order("created_at").
		Find(&all).Error; err != nil {
		return nil, err
	}

	var qualified []models.Staff
	for _, st := range all {
		ok := true
		for _, sel := range selections {
			if !st.QualifiedFor(sel.ServiceID) {
				ok = false
				break
			}
		}
		if ok {
			qualified = append(qualified, st)
		}
	}
	return qualified, nil
}

func (g *AvailabilityGenerator) loadBookings(businessID uuid.UUID, from, to time.Time) (map[uuid.UUID][]models.Appointment, error) {
	var booked []models.Appointment
	err := g.db.Where(
		"business_id = ? AND status <> ? AND start_time < ? AND end_time > ?",
		businessID, models.AppointmentCancelled, to, from,
	).Find(&booked).Error
	if err != nil {
		return nil, err
	}

	byStaff := make(map[uuid.UUID][]models.Appointment)
	for _, appt := range booked {
		byStaff[appt.StaffID] = append(byStaff[appt.StaffID], appt)
	}
	return byStaff, nil
}

// mergeWindows collapses overlapping or adjacent ranges into a minimal
// set of disjoint open windows.
func mergeWindows(in []window) []window {
	sort.Slice(in, func(i, j int) bool { return in[i].start.Before(in[j].start) })

	merged := make([]window, 0, len(in))
	for _, w := range in {
		if len(merged) == 0 {
			merged = append(merged, w)
			continue
		}
		last := &merged[len(merged)-1]
		if !w.start.After(last.end) { // touching counts as one window
			if w.end.After(last.end) {
				last.end = w.end
			}
			continue
		}
		merged = append(merged, w)
	}
	return merged
}

// buildSlot sub-allocates each service sequentially from start, assigning
// the explicitly selected staff where given, otherwise the first
// qualified candidate whose own working-hour range fully covers the
// segment. Returns false when some segment cannot be staffed.
func buildSlot(start time.Time, selections []ServiceSelection, services map[uuid.UUID]models.Service, candidates []models.Staff, staffWindows map[uuid.UUID][]window) (Slot, bool) {
	cursor := start
	segments := make([]SlotSegment, 0, len(selections))

	for _, sel := range selections {
		svc := services[sel.ServiceID]
		segEnd := cursor.Add(time.Duration(svc.Duration) * time.Minute)

		var staffID uuid.UUID
		if !sel.Staff.IsAny() {
			staffID = sel.Staff.StaffID()
		} else {
			found := false
			for _, st := range candidates {
				if !st.QualifiedFor(sel.ServiceID) {
					continue
				}
				if covers(staffWindows[st.ID], cursor, segEnd) {
					staffID = st.ID
					found = true
					break
				}
			}
			if !found {
				return Slot{}, false
			}
		}

		segments = append(segments, SlotSegment{
			ServiceID: sel.ServiceID,
			StaffID:   staffID,
			Start:     cursor,
			End:       segEnd,
		})
		cursor = segEnd
	}

	return Slot{
		Start:    start,
		End:      cursor,
		Label:    utils.FormatClock(start) + " - " + utils.FormatClock(cursor),
		Duration: int(cursor.Sub(start).Minutes()),
		Segments: segments,
	}, true
}

// covers reports whether some single range fully contains [start, end].
// Bounds are inclusive: a segment equal to a range is covered.
func covers(windows []window, start, end time.Time) bool {
	for _, w := range windows {
		if !start.Before(w.start) && !end.After(w.end) {
			return true
		}
	}
	return false
}

// slotConflicts drops a slot when its interval overlaps an existing
// appointment of any staff member the slot would use.
func slotConflicts(slot Slot, bookedByStaff map[uuid.UUID][]models.Appointment) bool {
	seen := make(map[uuid.UUID]bool, len(slot.Segments))
	for _, seg := range slot.Segments {
		if seen[seg.StaffID] {
			continue
		}
		seen[seg.StaffID] = true
		for _, appt := range bookedByStaff[seg.StaffID] {
			if appt.Overlaps(slot.Start, slot.End) {
				return true
			}
		}
	}
	return false
}
