// services/billing.go
package services

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"glowdesk-backend/config"
	"glowdesk-backend/models"
	"glowdesk-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Unpaid bills expire and are swept by the notifier's cron job.
const billTTL = 30 * time.Minute

// ErrMissingBusinessContext is returned when the business's region has no
// entry in the tax table.
var ErrMissingBusinessContext = errors.New("no tax rates configured for business region")

// ProposedAppointment is a client-submitted booking request. Duration and
// price always come from the referenced service, never from the client.
type ProposedAppointment struct {
	ServiceID uuid.UUID
	StaffID   uuid.UUID
	Start     time.Time
}

// CustomerContact identifies the booking customer. Public microsite
// bookings carry contact details rather than an account.
type CustomerContact struct {
	Name  string
	Phone string
	Email string
}

type BillingCalculator struct {
	db    *gorm.DB
	taxes config.TaxTable
}

func NewBillingCalculator(db *gorm.DB, taxes config.TaxTable) *BillingCalculator {
	return &BillingCalculator{db: db, taxes: taxes}
}

// Round2 rounds a currency amount to 2 decimal places. Every line amount
// is rounded at the point of computation; aggregates sum already-rounded
// components.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ValidateAppointments checks every proposed appointment and returns the
// complete list of problems in order. It never stops at the first
// failure, so the caller sees everything wrong in one response. A non-nil
// error means the store failed, not that validation did.
func (b *BillingCalculator) ValidateAppointments(businessID uuid.UUID, proposed []ProposedAppointment) ([]string, error) {
	var problems []string

	for i, p := range proposed {
		label := fmt.Sprintf("appointment %d", i+1)

		staff, err := b.findStaff(businessID, p.StaffID)
		if err != nil {
			return nil, err
		}
		if staff == nil {
			problems = append(problems, label+": staff member not found")
		}

		svc, err := b.findService(businessID, p.ServiceID)
		if err != nil {
			return nil, err
		}
		if svc == nil {
			problems = append(problems, label+": service not found")
		}

		if staff == nil || svc == nil {
			continue
		}

		if !staff.QualifiedFor(svc.ID) {
			problems = append(problems, fmt.Sprintf("%s: %s is not qualified to perform %s", label, staff.Name, svc.Name))
			continue
		}

		end := p.Start.Add(time.Duration(svc.Duration) * time.Minute)

		if !withinWorkingHours(staff, p.Start, end) {
			problems = append(problems, fmt.Sprintf("%s: requested time is outside %s's working hours", label, staff.Name))
			continue
		}

		conflict, err := b.hasConflict(staff.ID, p.Start, end)
		if err != nil {
			return nil, err
		}
		if conflict {
			problems = append(problems, fmt.Sprintf("%s: %s is already booked at the requested time", label, staff.Name))
		}
	}

	return problems, nil
}

// PriceAppointments computes the itemized bill for an already-validated
// appointment set and persists it unpaid. The jurisdiction is resolved
// once from the business region; every tax amount and line total is
// rounded as it is computed.
func (b *BillingCalculator) PriceAppointments(businessID uuid.UUID, contact CustomerContact, proposed []ProposedAppointment) (*models.Bill, error) {
	var business models.Business
	if err := b.db.First(&business, "id = ?", businessID).Error; err != nil {
		return nil, err
	}

	rates, ok := b.taxes.RatesFor(business.Region)
	if !ok {
		return nil, ErrMissingBusinessContext
	}

	taxTypes := make([]string, 0, len(rates))
	for taxType := range rates {
		taxTypes = append(taxTypes, taxType)
	}
	sort.Strings(taxTypes)

	var subtotal float64
	taxTotals := models.TaxTotals{}
	items := make([]models.BillItem, 0, len(proposed))

	for _, p := range proposed {
		var svc models.Service
		if err := b.db.Where("business_id = ? AND id = ?", businessID, p.ServiceID).First(&svc).Error; err != nil {
			return nil, err
		}

		price := svc.Price
		subtotal += price

		taxes := make(models.TaxLines, 0, len(taxTypes))
		var itemTax float64
		for _, taxType := range taxTypes {
			amount := Round2(price * rates[taxType])
			taxes = append(taxes, models.TaxLine{Type: taxType, Rate: rates[taxType], Amount: amount})
			taxTotals[taxType] += amount
			itemTax += amount
		}

		items = append(items, models.BillItem{
			ServiceID:   svc.ID,
			ServiceName: svc.Name,
			StaffID:     p.StaffID,
			StartTime:   p.Start,
			EndTime:     p.Start.Add(time.Duration(svc.Duration) * time.Minute),
			Price:       price,
			Taxes:       taxes,
			Total:       Round2(price + itemTax),
		})
	}

	subtotal = Round2(subtotal)
	total := subtotal
	for taxType, amount := range taxTotals {
		taxTotals[taxType] = Round2(amount)
		total += taxTotals[taxType]
	}

	bill := models.Bill{
		BusinessID:    businessID,
		BillNumber:    "BILL-" + time.Now().Format("20060102") + "-" + utils.GenerateRandomString(6),
		CustomerName:  contact.Name,
		CustomerPhone: contact.Phone,
		CustomerEmail: contact.Email,
		Subtotal:      subtotal,
		TaxTotals:     taxTotals,
		Total:         Round2(total),
		Paid:          false,
		ExpiresAt:     time.Now().Add(billTTL),
		Items:         items,
	}

	if err := b.db.Create(&bill).Error; err != nil {
		return nil, err
	}
	return &bill, nil
}

func (b *BillingCalculator) findStaff(businessID, staffID uuid.UUID) (*models.Staff, error) {
	var staff models.Staff
	err := b.db.Preload("Services").
		Where("business_id = ? AND id = ?", businessID, staffID).
		First(&staff).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

func (b *BillingCalculator) findService(businessID, serviceID uuid.UUID) (*models.Service, error) {
	var svc models.Service
	err := b.db.Where("business_id = ? AND id = ?", businessID, serviceID).First(&svc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

func (b *BillingCalculator) hasConflict(staffID uuid.UUID, start, end time.Time) (bool, error) {
	var count int64
	err := b.db.Model(&models.Appointment{}).
		Where("staff_id = ? AND status <> ? AND start_time < ? AND end_time > ?",
			staffID, models.AppointmentCancelled, end, start).
		Count(&count).Error
	return count > 0, err
}

// withinWorkingHours checks [start, end] containment against the staff
// member's declared ranges for the weekday. Bounds are inclusive: an
// appointment exactly filling a range is accepted. Compared in seconds
// so a sub-minute start cannot overrun the range end unnoticed.
func withinWorkingHours(staff *models.Staff, start, end time.Time) bool {
	ranges := staff.RangesFor(utils.WeekdayName(start))
	if len(ranges) == 0 {
		return false
	}

	startSec := (start.Hour()*60+start.Minute())*60 + start.Second()
	endSec := startSec + int(end.Sub(start).Seconds())

	for _, raw := range ranges {
		cr, err := utils.ParseClockRange(raw)
		if err != nil {
			continue
		}
		if startSec >= cr.Start*60 && endSec <= cr.End*60 {
			return true
		}
	}
	return false
}
