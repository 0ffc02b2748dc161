package services

import (
	"testing"
	"time"

	"glowdesk-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mondayHours(ranges ...string) models.WeekSchedule {
	return models.WeekSchedule{"Monday": ranges}
}

func slotStarting(slots []Slot, start time.Time) *Slot {
	for i := range slots {
		if slots[i].Start.Equal(start) {
			return &slots[i]
		}
	}
	return nil
}

func TestMergeWindows(t *testing.T) {
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.Local)
	w := func(startHour, endHour int) window {
		return window{at(day, startHour, 0), at(day, endHour, 0)}
	}

	t.Run("adjacent ranges become one window", func(t *testing.T) {
		merged := mergeWindows([]window{w(9, 12), w(12, 17)})
		require.Len(t, merged, 1)
		assert.Equal(t, at(day, 9, 0), merged[0].start)
		assert.Equal(t, at(day, 17, 0), merged[0].end)
	})

	t.Run("overlapping ranges become one window", func(t *testing.T) {
		merged := mergeWindows([]window{w(9, 13), w(11, 17)})
		require.Len(t, merged, 1)
		assert.Equal(t, at(day, 9, 0), merged[0].start)
		assert.Equal(t, at(day, 17, 0), merged[0].end)
	})

	t.Run("disjoint ranges stay separate", func(t *testing.T) {
		merged := mergeWindows([]window{w(13, 17), w(9, 12)})
		require.Len(t, merged, 2)
		assert.Equal(t, at(day, 9, 0), merged[0].start)
		assert.Equal(t, at(day, 12, 0), merged[0].end)
		assert.Equal(t, at(day, 13, 0), merged[1].start)
	})
}

func TestDailySlotsSequentialSegments(t *testing.T) {
	db := newTestDB(t)
	business := createBusiness(t, db, "ON")
	cut := createService(t, db, business.ID, "Haircut", 40, 30)
	color := createService(t, db, business.ID, "Color", 120, 60)
	staff := createStaff(t, db, business.ID, "Priya", mondayHours("9:00 AM - 5:00 PM"), cut, color)

	gen := NewAvailabilityGenerator(db)
	day := monday(t)
	out, err := gen.DailySlots(business.ID, []ServiceSelection{
		{ServiceID: cut.ID, Staff: ForStaff(staff.ID)},
		{ServiceID: color.ID, Staff: ForStaff(staff.ID)},
	}, day)
	require.NoError(t, err)

	slots := out[day.Format("2006-01-02")]
	require.NotEmpty(t, slots)

	// 9:00 through 3:30 PM starts, 15 minutes apart, 90 minutes each.
	assert.Len(t, slots, 27)
	for _, slot := range slots {
		assert.Equal(t, 90, slot.Duration)
		assert.Equal(t, slot.Start.Add(90*time.Minute), slot.End)

		require.Len(t, slot.Segments, 2)
		first, second := slot.Segments[0], slot.Segments[1]
		assert.Equal(t, cut.ID, first.ServiceID)
		assert.Equal(t, color.ID, second.ServiceID)
		assert.Equal(t, slot.Start, first.Start)
		assert.Equal(t, first.End, second.Start)
		assert.Equal(t, slot.End, second.End)
		assert.Equal(t, staff.ID, first.StaffID)
	}

	firstSlot := slots[0]
	assert.Equal(t, at(day, 9, 0), firstSlot.Start)
	assert.Equal(t, "9:00 AM - 10:30 AM", firstSlot.Label)
	assert.Equal(t, at(day, 15, 30), slots[len(slots)-1].Start)
}

func TestDailySlotsMergesAdjacentRanges(t *testing.T) {
	db := newTestDB(t)
	business := createBusiness(t, db, "ON")
	balayage := createService(t, db, business.ID, "Balayage", 250, 180)
	staff := createStaff(t, db, business.ID, "Mei",
		mondayHours("9:00 AM - 12:00 PM", "12:00 PM - 5:00 PM"), balayage)

	gen := NewAvailabilityGenerator(db)
	day := monday(t)
	out, err := gen.DailySlots(business.ID, []ServiceSelection{
		{ServiceID: balayage.ID, Staff: ForStaff(staff.ID)},
	}, day)
	require.NoError(t, err)

	slots := out[day.Format("2006-01-02")]
	// A 3-hour slot straddling the noon boundary only exists because the
	// two touching ranges merge into a single 9-to-5 window.
	straddling := slotStarting(slots, at(day, 10, 30))
	require.NotNil(t, straddling)
	assert.Equal(t, at(day, 13, 30), straddling.End)

	assert.NotNil(t, slotStarting(slots, at(day, 9, 0)))
	assert.NotNil(t, slotStarting(slots, at(day, 14, 0)))
	assert.Nil(t, slotStarting(slots, at(day, 14, 15)))
}

func TestDailySlotsExcludesConflicts(t *testing.T) {
	db := newTestDB(t)
	business := createBusiness(t, db, "ON")
	cut := createService(t, db, business.ID, "Haircut", 40, 60)
	staff := createStaff(t, db, business.ID, "Omar", mondayHours("9:00 AM - 5:00 PM"), cut)

	day := monday(t)
	require.NoError(t, db.Create(&models.Appointment{
		BusinessID: business.ID,
		StaffID:    staff.ID,
		ServiceID:  cut.ID,
		StartTime:  at(day, 10, 0),
		EndTime:    at(day, 11, 0),
		Status:     models.AppointmentBooked,
	}).Error)
	require.NoError(t, db.Create(&models.Appointment{
		BusinessID: business.ID,
		StaffID:    staff.ID,
		ServiceID:  cut.ID,
		StartTime:  at(day, 14, 0),
		EndTime:    at(day, 15, 0),
		Status:     models.AppointmentCancelled,
	}).Error)

	gen := NewAvailabilityGenerator(db)
	out, err := gen.DailySlots(business.ID, []ServiceSelection{
		{ServiceID: cut.ID, Staff: ForStaff(staff.ID)},
	}, day)
	require.NoError(t, err)

	slots := out[day.Format("2006-01-02")]
	require.NotEmpty(t, slots)

	// Back-to-back with the booking is fine; any overlap is not.
	assert.NotNil(t, slotStarting(slots, at(day, 9, 0)))
	assert.Nil(t, slotStarting(slots, at(day, 9, 15)))
	assert.Nil(t, slotStarting(slots, at(day, 10, 0)))
	assert.Nil(t, slotStarting(slots, at(day, 10, 45)))
	assert.NotNil(t, slotStarting(slots, at(day, 11, 0)))

	// Cancelled appointments do not block.
	assert.NotNil(t, slotStarting(slots, at(day, 14, 0)))
}

func TestDailySlotsAnyQualified(t *testing.T) {
	db := newTestDB(t)
	business := createBusiness(t, db, "ON")
	cut := createService(t, db, business.ID, "Haircut", 40, 60)
	facial := createService(t, db, business.ID, "Facial", 90, 45)

	qualified := createStaff(t, db, business.ID, "Ana", mondayHours("9:00 AM - 12:00 PM"), cut)
	createStaff(t, db, business.ID, "Jo", mondayHours("9:00 AM - 5:00 PM"), facial)

	gen := NewAvailabilityGenerator(db)
	day := monday(t)
	out, err := gen.DailySlots(business.ID, []ServiceSelection{
		{ServiceID: cut.ID, Staff: AnyQualified()},
	}, day)
	require.NoError(t, err)

	slots := out[day.Format("2006-01-02")]
	require.NotEmpty(t, slots)

	// Only the qualified staff member's hours open slots, and every
	// segment is assigned to them.
	assert.Equal(t, at(day, 9, 0), slots[0].Start)
	assert.Equal(t, at(day, 11, 0), slots[len(slots)-1].Start)
	for _, slot := range slots {
		assert.Equal(t, qualified.ID, slot.Segments[0].StaffID)
	}
}

func TestDailySlotsNoQualifiedStaff(t *testing.T) {
	db := newTestDB(t)
	business := createBusiness(t, db, "ON")
	cut := createService(t, db, business.ID, "Haircut", 40, 60)
	facial := createService(t, db, business.ID, "Facial", 90, 45)
	createStaff(t, db, business.ID, "Jo", mondayHours("9:00 AM - 5:00 PM"), facial)

	gen := NewAvailabilityGenerator(db)
	out, err := gen.DailySlots(business.ID, []ServiceSelection{
		{ServiceID: cut.ID, Staff: AnyQualified()},
	}, monday(t))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDailySlotsWindowAndDayKeys(t *testing.T) {
	db := newTestDB(t)
	business := createBusiness(t, db, "ON")
	cut := createService(t, db, business.ID, "Haircut", 40, 60)
	staff := createStaff(t, db, business.ID, "Lena", mondayHours("9:00 AM - 5:00 PM"), cut)

	gen := NewAvailabilityGenerator(db)
	day := monday(t)
	out, err := gen.DailySlots(business.ID, []ServiceSelection{
		{ServiceID: cut.ID, Staff: ForStaff(staff.ID)},
	}, day)
	require.NoError(t, err)

	// Lena works Mondays only: 13 of them inside the 90-day window, and
	// no other day appears at all.
	assert.Len(t, out, 13)
	for key := range out {
		parsed, err := time.ParseInLocation("2006-01-02", key, time.Local)
		require.NoError(t, err)
		assert.Equal(t, time.Monday, parsed.Weekday())
		assert.True(t, parsed.Before(day.AddDate(0, 0, 90)))
	}
}

func TestDailySlotsInputErrors(t *testing.T) {
	db := newTestDB(t)
	business := createBusiness(t, db, "ON")
	gen := NewAvailabilityGenerator(db)

	_, err := gen.DailySlots(business.ID, nil, monday(t))
	assert.ErrorIs(t, err, ErrNoServicesSelected)

	staff := createStaff(t, db, business.ID, "Sam", mondayHours("9:00 AM - 5:00 PM"))
	missing := models.Service{BusinessID: business.ID}
	_, err = gen.DailySlots(business.ID, []ServiceSelection{
		{ServiceID: missing.ID, Staff: ForStaff(staff.ID)},
	}, monday(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service not found")
}
