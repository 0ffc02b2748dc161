package services

import (
	"testing"
	"time"

	"glowdesk-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAppointmentsCollectsEveryProblem(t *testing.T) {
	db := newTestDB(t)
	business := createBusiness(t, db, "ON")
	cut := createService(t, db, business.ID, "Haircut", 40, 60)
	staff := createStaff(t, db, business.ID, "Priya", mondayHours("9:00 AM - 5:00 PM"), cut)

	day := monday(t)
	calc := NewBillingCalculator(db, testTaxTable())

	// First appointment references a staff member that does not exist,
	// second one is outside working hours. Both must be reported.
	problems, err := calc.ValidateAppointments(business.ID, []ProposedAppointment{
		{ServiceID: cut.ID, StaffID: uuid.New(), Start: at(day, 10, 0)},
		{ServiceID: cut.ID, StaffID: staff.ID, Start: at(day, 16, 30)},
	})
	require.NoError(t, err)
	require.Len(t, problems, 2)
	assert.Contains(t, problems[0], "appointment 1")
	assert.Contains(t, problems[0], "staff member not found")
	assert.Contains(t, problems[1], "appointment 2")
	assert.Contains(t, problems[1], "outside Priya's working hours")
}

func TestValidateAppointmentsNotFound(t *testing.T) {
	db := newTestDB(t)
	business := createBusiness(t, db, "ON")
	calc := NewBillingCalculator(db, testTaxTable())

	problems, err := calc.ValidateAppointments(business.ID, []ProposedAppointment{
		{ServiceID: uuid.New(), StaffID: uuid.New(), Start: at(monday(t), 10, 0)},
	})
	require.NoError(t, err)
	require.Len(t, problems, 2)
	assert.Contains(t, problems[0], "staff member not found")
	assert.Contains(t, problems[1], "service not found")
}

func TestValidateAppointmentsQualification(t *testing.T) {
	db := newTestDB(t)
	business := createBusiness(t, db, "ON")
	cut := createService(t, db, business.ID, "Haircut", 40, 60)
	facial := createService(t, db, business.ID, "Facial", 90, 45)
	staff := createStaff(t, db, business.ID, "Omar", mondayHours("9:00 AM - 5:00 PM"), cut)
	_ = facial

	calc := NewBillingCalculator(db, testTaxTable())
	problems, err := calc.ValidateAppointments(business.ID, []ProposedAppointment{
		{ServiceID: facial.ID, StaffID: staff.ID, Start: at(monday(t), 10, 0)},
	})
	require.NoError(t, err)
	require.Len(t, problems, 1)
	assert.Equal(t, "appointment 1: Omar is not qualified to perform Facial", problems[0])
}

func TestValidateAppointmentsWorkingHourBounds(t *testing.T) {
	db := newTestDB(t)
	business := createBusiness(t, db, "ON")
	fullDay := createService(t, db, business.ID, "Bridal package", 600, 480)
	staff := createStaff(t, db, business.ID, "Mei", mondayHours("9:00 AM - 5:00 PM"), fullDay)

	day := monday(t)
	calc := NewBillingCalculator(db, testTaxTable())

	// Exactly filling the range is accepted; one step earlier is not.
	problems, err := calc.ValidateAppointments(business.ID, []ProposedAppointment{
		{ServiceID: fullDay.ID, StaffID: staff.ID, Start: at(day, 9, 0)},
	})
	require.NoError(t, err)
	assert.Empty(t, problems)

	problems, err = calc.ValidateAppointments(business.ID, []ProposedAppointment{
		{ServiceID: fullDay.ID, StaffID: staff.ID, Start: at(day, 8, 45)},
	})
	require.NoError(t, err)
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0], "outside Mei's working hours")

	// A start 30 seconds past the hour would end 30 seconds past the
	// range; whole-minute containment would miss it.
	problems, err = calc.ValidateAppointments(business.ID, []ProposedAppointment{
		{ServiceID: fullDay.ID, StaffID: staff.ID, Start: at(day, 9, 0).Add(30 * time.Second)},
	})
	require.NoError(t, err)
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0], "outside Mei's working hours")
}

func TestValidateAppointmentsConflict(t *testing.T) {
	db := newTestDB(t)
	business := createBusiness(t, db, "ON")
	cut := createService(t, db, business.ID, "Haircut", 40, 60)
	staff := createStaff(t, db, business.ID, "Ana", mondayHours("9:00 AM - 5:00 PM"), cut)

	day := monday(t)
	require.NoError(t, db.Create(&models.Appointment{
		BusinessID: business.ID,
		StaffID:    staff.ID,
		ServiceID:  cut.ID,
		StartTime:  at(day, 10, 0),
		EndTime:    at(day, 11, 0),
		Status:     models.AppointmentBooked,
	}).Error)

	calc := NewBillingCalculator(db, testTaxTable())

	problems, err := calc.ValidateAppointments(business.ID, []ProposedAppointment{
		{ServiceID: cut.ID, StaffID: staff.ID, Start: at(day, 10, 30)},
	})
	require.NoError(t, err)
	require.Len(t, problems, 1)
	assert.Equal(t, "appointment 1: Ana is already booked at the requested time", problems[0])

	// Half-open intervals: starting exactly when the booking ends is fine.
	problems, err = calc.ValidateAppointments(business.ID, []ProposedAppointment{
		{ServiceID: cut.ID, StaffID: staff.ID, Start: at(day, 11, 0)},
	})
	require.NoError(t, err)
	assert.Empty(t, problems)
}

func TestPriceAppointmentsHST(t *testing.T) {
	db := newTestDB(t)
	business := createBusiness(t, db, "ON")
	svc := createService(t, db, business.ID, "Signature cut", 100, 60)
	staff := createStaff(t, db, business.ID, "Priya", mondayHours("9:00 AM - 5:00 PM"), svc)

	day := monday(t)
	calc := NewBillingCalculator(db, testTaxTable())

	bill, err := calc.PriceAppointments(business.ID,
		CustomerContact{Name: "Dana", Phone: "+14165550131", Email: "dana@example.com"},
		[]ProposedAppointment{
			{ServiceID: svc.ID, StaffID: staff.ID, Start: at(day, 9, 0)},
			{ServiceID: svc.ID, StaffID: staff.ID, Start: at(day, 10, 0)},
		})
	require.NoError(t, err)

	assert.Equal(t, 200.0, bill.Subtotal)
	assert.Equal(t, 26.0, bill.TaxTotals["HST"])
	assert.Equal(t, 226.0, bill.Total)
	assert.False(t, bill.Paid)
	assert.Contains(t, bill.BillNumber, "BILL-")

	require.Len(t, bill.Items, 2)
	for _, item := range bill.Items {
		assert.Equal(t, 100.0, item.Price)
		assert.Equal(t, 113.0, item.Total)
		require.Len(t, item.Taxes, 1)
		assert.Equal(t, "HST", item.Taxes[0].Type)
		assert.Equal(t, 0.13, item.Taxes[0].Rate)
		assert.Equal(t, 13.0, item.Taxes[0].Amount)
	}
	assert.Equal(t, at(day, 9, 0), bill.Items[0].StartTime)
	assert.Equal(t, at(day, 10, 0), bill.Items[0].EndTime)

	// Unpaid bills carry an expiry in the near future.
	assert.True(t, bill.ExpiresAt.After(time.Now()))
	assert.True(t, bill.ExpiresAt.Before(time.Now().Add(time.Hour)))

	var persisted models.Bill
	require.NoError(t, db.Preload("Items").First(&persisted, "id = ?", bill.ID).Error)
	assert.Equal(t, 226.0, persisted.Total)
	require.Len(t, persisted.Items, 2)
}

func TestPriceAppointmentsRoundsPerLine(t *testing.T) {
	db := newTestDB(t)
	business := createBusiness(t, db, "BC")
	svc := createService(t, db, business.ID, "Quick trim", 19.99, 30)
	staff := createStaff(t, db, business.ID, "Jo", mondayHours("9:00 AM - 5:00 PM"), svc)

	calc := NewBillingCalculator(db, testTaxTable())
	bill, err := calc.PriceAppointments(business.ID,
		CustomerContact{Name: "Sam", Phone: "+16045550100"},
		[]ProposedAppointment{
			{ServiceID: svc.ID, StaffID: staff.ID, Start: at(monday(t), 9, 0)},
		})
	require.NoError(t, err)

	// 19.99 * 5% = 0.9995 -> 1.00, 19.99 * 7% = 1.3993 -> 1.40, each
	// rounded before anything is summed.
	assert.Equal(t, 1.0, bill.TaxTotals["GST"])
	assert.Equal(t, 1.4, bill.TaxTotals["PST"])
	assert.Equal(t, 19.99, bill.Subtotal)
	assert.Equal(t, 22.39, bill.Total)

	require.Len(t, bill.Items, 1)
	assert.Equal(t, 22.39, bill.Items[0].Total)
	require.Len(t, bill.Items[0].Taxes, 2)
	assert.Equal(t, "GST", bill.Items[0].Taxes[0].Type)
	assert.Equal(t, "PST", bill.Items[0].Taxes[1].Type)
}

func TestPriceAppointmentsDeterministic(t *testing.T) {
	db := newTestDB(t)
	business := createBusiness(t, db, "ON")
	svc := createService(t, db, business.ID, "Haircut", 45.50, 60)
	staff := createStaff(t, db, business.ID, "Lena", mondayHours("9:00 AM - 5:00 PM"), svc)

	calc := NewBillingCalculator(db, testTaxTable())
	contact := CustomerContact{Name: "Kim", Phone: "+14165550177"}
	proposed := []ProposedAppointment{
		{ServiceID: svc.ID, StaffID: staff.ID, Start: at(monday(t), 9, 0)},
	}

	first, err := calc.PriceAppointments(business.ID, contact, proposed)
	require.NoError(t, err)
	second, err := calc.PriceAppointments(business.ID, contact, proposed)
	require.NoError(t, err)

	// Pricing has no side effect on availability, so repeating it yields
	// the same figures under a different bill number.
	assert.Equal(t, first.Subtotal, second.Subtotal)
	assert.Equal(t, first.TaxTotals, second.TaxTotals)
	assert.Equal(t, first.Total, second.Total)
	assert.NotEqual(t, first.BillNumber, second.BillNumber)
}

func TestPriceAppointmentsUnknownRegion(t *testing.T) {
	db := newTestDB(t)
	business := createBusiness(t, db, "ZZ")
	svc := createService(t, db, business.ID, "Haircut", 40, 60)
	staff := createStaff(t, db, business.ID, "Sam", mondayHours("9:00 AM - 5:00 PM"), svc)

	calc := NewBillingCalculator(db, testTaxTable())
	_, err := calc.PriceAppointments(business.ID,
		CustomerContact{Name: "Lee"},
		[]ProposedAppointment{
			{ServiceID: svc.ID, StaffID: staff.ID, Start: at(monday(t), 9, 0)},
		})
	assert.ErrorIs(t, err, ErrMissingBusinessContext)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 13.0, Round2(13.000000001))
	assert.Equal(t, 2.6, Round2(19.99*0.13))
	assert.Equal(t, 1.4, Round2(1.3993))
	assert.Equal(t, -2.6, Round2(-2.5987))
}
