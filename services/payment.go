// services/payment.go
package services

import (
	"context"
	"errors"
	"math"
	"os"
	"time"

	"glowdesk-backend/models"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/paymentintent"
	"gorm.io/gorm"
)

var (
	ErrBillNotFound    = errors.New("bill not found")
	ErrBillExpired     = errors.New("bill has expired, please rebook")
	ErrBillAlreadyPaid = errors.New("bill is already paid")
	ErrSlotTaken       = errors.New("a requested time was booked by someone else while the bill was unpaid")
)

// ChargeFunc captures a payment and returns the provider-side reference.
// Swappable so tests don't talk to Stripe.
type ChargeFunc func(amountCents int64, currency, paymentMethodID, description string) (string, error)

type PaymentService struct {
	db     *gorm.DB
	lock   *BookingLock
	charge ChargeFunc
}

func NewPaymentService(db *gorm.DB, lock *BookingLock) *PaymentService {
	return &PaymentService{db: db, lock: lock, charge: stripeCharge}
}

// WithCharge overrides the capture function; used in tests.
func (s *PaymentService) WithCharge(fn ChargeFunc) *PaymentService {
	s.charge = fn
	return s
}

func stripeCharge(amountCents int64, currency, paymentMethodID, description string) (string, error) {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
	if stripe.Key == "" {
		return "", errors.New("STRIPE_SECRET_KEY not set")
	}

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(amountCents),
		Currency:      stripe.String(currency),
		PaymentMethod: stripe.String(paymentMethodID),
		Confirm:       stripe.Bool(true),
		Description:   stripe.String(description),
	}
	intent, err := paymentintent.New(params)
	if err != nil {
		return "", err
	}
	return intent.ID, nil
}

// CaptureBill charges an unpaid bill and, inside one transaction, marks
// it paid and creates the confirmed appointments from its items. The
// booking lock is held across the re-validation and the write so a
// concurrent capture for the same staff/day cannot double-book.
func (s *PaymentService) CaptureBill(ctx context.Context, businessID, billID uuid.UUID, paymentMethodID string) (*models.Bill, error) {
	var bill models.Bill
	err := s.db.Preload("Items").
		Where("business_id = ? AND id = ?", businessID, billID).
		First(&bill).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBillNotFound
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if bill.Paid {
		return nil, ErrBillAlreadyPaid
	}
	if bill.Expired(now) {
		return nil, ErrBillExpired
	}

	proposed := make([]ProposedAppointment, 0, len(bill.Items))
	for _, item := range bill.Items {
		proposed = append(proposed, ProposedAppointment{
			ServiceID: item.ServiceID,
			StaffID:   item.StaffID,
			Start:     item.StartTime,
		})
	}

	release, err := s.lock.Acquire(ctx, proposed)
	if err != nil {
		return nil, err
	}
	defer release()

	// Re-check conflicts under the lock: another bill for the same slot
	// may have been captured since this one was priced.
	for _, item := range bill.Items {
		var count int64
		err := s.db.Model(&models.Appointment{}).
			Where("staff_id = ? AND status <> ? AND start_time < ? AND end_time > ?",
				item.StaffID, models.AppointmentCancelled, item.EndTime, item.StartTime).
			Count(&count).Error
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrSlotTaken
		}
	}

	currency := os.Getenv("PAYMENT_CURRENCY")
	if currency == "" {
		currency = "cad"
	}
	// Round, don't truncate: totals like 19.99 sit fractionally below
	// 1999 in float64 and an int64 cast alone would drop a cent.
	amountCents := int64(math.Round(bill.Total * 100))
	reference, err := s.charge(amountCents, currency, paymentMethodID, "Bill "+bill.BillNumber)
	if err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	bill.Paid = true
	bill.PaidAt = &now
	bill.PaymentReference = reference
	if err := tx.Save(&bill).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	for _, item := range bill.Items {
		var itemTax float64
		for _, line := range item.Taxes {
			itemTax += line.Amount
		}
		appt := models.Appointment{
			BusinessID:    bill.BusinessID,
			StaffID:       item.StaffID,
			ServiceID:     item.ServiceID,
			BillID:        bill.ID,
			CustomerName:  bill.CustomerName,
			CustomerPhone: bill.CustomerPhone,
			CustomerEmail: bill.CustomerEmail,
			StartTime:     item.StartTime,
			EndTime:       item.EndTime,
			Status:        models.AppointmentBooked,
			Price:         item.Price,
			TaxAmount:     Round2(itemTax),
			Total:         item.Total,
		}
		if err := tx.Create(&appt).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := s.upsertCustomerStats(tx, &bill, now); err != nil {
		tx.Rollback()
		return nil, err
	}

	tx.Commit()
	return &bill, nil
}

// upsertCustomerStats records the visit against the clientele record,
// creating it on first booking.
func (s *PaymentService) upsertCustomerStats(tx *gorm.DB, bill *models.Bill, visitedAt time.Time) error {
	if bill.CustomerPhone == "" {
		return nil
	}

	var customer models.Customer
	err := tx.Where("business_id = ? AND phone = ?", bill.BusinessID, bill.CustomerPhone).
		First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		customer = models.Customer{
			BusinessID:  bill.BusinessID,
			Name:        bill.CustomerName,
			Phone:       bill.CustomerPhone,
			Email:       bill.CustomerEmail,
			TotalVisits: 1,
			TotalSpent:  bill.Total,
			LastVisit:   &visitedAt,
		}
		return tx.Create(&customer).Error
	}
	if err != nil {
		return err
	}

	return tx.Model(&customer).Updates(map[string]interface{}{
		"total_visits": gorm.Expr("total_visits + ?", 1),
		"total_spent":  gorm.Expr("total_spent + ?", bill.Total),
		"last_visit":   visitedAt,
	}).Error
}
