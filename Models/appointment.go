package Models

import (
	"errors"
	"fmt"
	"time"
)

type Recurrence string

const (
	RecurrenceNone     Recurrence = "none"
	RecurrenceDaily    Recurrence = "daily"
	RecurrenceWeekly   Recurrence = "weekly"
	RecurrenceBiweekly Recurrence = "biweekly"
	RecurrenceMonthly  Recurrence = "monthly"
)

const (
	RecurrenceEndCount = "count"
	RecurrenceEndNever = "never"
)

// OpenEndedOccurrences is the literal stand-in for an "indefinite" series:
// open-ended recurrences always materialize exactly this many rows.
const OpenEndedOccurrences = 12

// SessionLength is the fixed duration of one therapy session.
const SessionLength = time.Hour

// AppointmentDraft is one scheduling request as submitted by the agenda form.
// A non-empty ID marks an edit of an existing occurrence; recurrence fields
// are only honored for brand-new drafts.
type AppointmentDraft struct {
	ID        string  `json:"id"`
	PatientID string  `json:"patientId" binding:"required"`
	Date      string  `json:"date" binding:"required"`
	Time      string  `json:"time" binding:"required"`
	Value     float64 `json:"value"`
	Notes     string  `json:"notes"`
	Confirmed bool    `json:"confirmed"`

	Recurrence        Recurrence `json:"recurrence"`
	RecurrenceEndMode string     `json:"recurrenceEndMode"`
	RecurrenceCount   int        `json:"recurrenceCount"`

	PaymentReceipt *PaymentReceipt `json:"paymentReceipt"`
}

// IsEdit reports whether the draft targets an already-persisted appointment.
func (draft *AppointmentDraft) IsEdit() bool {
	return draft.ID != ""
}

func (draft *AppointmentDraft) recurring() bool {
	return !draft.IsEdit() && draft.Recurrence != "" && draft.Recurrence != RecurrenceNone
}

// Occurrences returns how many rows the draft expands to. Edits and
// non-recurring drafts produce exactly one; count mode produces the requested
// count with a floor of one; open-ended mode produces OpenEndedOccurrences.
func (draft *AppointmentDraft) Occurrences() int {
	if !draft.recurring() {
		return 1
	}
	if draft.RecurrenceEndMode == RecurrenceEndNever {
		return OpenEndedOccurrences
	}
	if draft.RecurrenceCount < 1 {
		return 1
	}
	return draft.RecurrenceCount
}

// OccurrenceDates expands the draft into the calendar dates of each
// occurrence. The cursor runs at a fixed neutral noon so stepping a day or a
// month never drifts across a timezone boundary.
func (draft *AppointmentDraft) OccurrenceDates() ([]string, error) {
	day, err := time.ParseInLocation("2006-01-02", draft.Date, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid draft date %q: %w", draft.Date, err)
	}
	cursor := time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, time.Local)

	count := draft.Occurrences()
	dates := make([]string, 0, count)
	for i := 0; i < count; i++ {
		dates = append(dates, cursor.Format("2006-01-02"))
		switch draft.Recurrence {
		case RecurrenceDaily:
			cursor = cursor.AddDate(0, 0, 1)
		case RecurrenceWeekly:
			cursor = cursor.AddDate(0, 0, 7)
		case RecurrenceBiweekly:
			cursor = cursor.AddDate(0, 0, 14)
		case RecurrenceMonthly:
			cursor = cursor.AddDate(0, 1, 0)
		}
	}
	return dates, nil
}

// BuildOccurrence combines one expanded date with the draft's time-of-day
// into a persisted appointment payload. End is always start plus one session.
func (draft *AppointmentDraft) BuildOccurrence(date string, patient Patient, recurrenceID string) (Appointment, error) {
	start, err := time.ParseInLocation("2006-01-02 15:04", date+" "+draft.Time, time.Local)
	if err != nil {
		return Appointment{}, fmt.Errorf("invalid draft time %q: %w", draft.Time, err)
	}
	end := start.Add(SessionLength)

	return Appointment{
		PatientID:    patient.ID,
		PatientName:  patient.Name,
		Start:        start.UTC().Format(time.RFC3339),
		End:          end.UTC().Format(time.RFC3339),
		Notes:        draft.Notes,
		Confirmed:    draft.Confirmed,
		RecurrenceID: recurrenceID,
		Value:        draft.Value,
	}, nil
}

// BuildTransaction derives the single ledger entry of a confirmed occurrence.
// With a payment receipt the session is settled income; without one it is a
// pending receivable.
func (draft *AppointmentDraft) BuildTransaction(appointment Appointment) Transaction {
	transaction := Transaction{
		Description:    "Sessão: " + appointment.PatientName,
		Amount:         appointment.Value,
		Type:           TransactionReceivable,
		Status:         TransactionPending,
		Category:       "Consulta",
		Date:           appointment.Start,
		PatientID:      appointment.PatientID,
		PatientName:    appointment.PatientName,
		AppointmentID:  appointment.ID,
		InvoiceEmitted: false,
	}
	if draft.PaymentReceipt != nil && draft.PaymentReceipt.FilePath != "" {
		transaction.Type = TransactionIncome
		transaction.Status = TransactionPaid
		transaction.PaymentReceipt = draft.PaymentReceipt
	}
	return transaction
}

// Validate rejects drafts the agenda form should never submit.
func (draft *AppointmentDraft) Validate() error {
	if draft.PatientID == "" {
		return errors.New("patient is required")
	}
	if draft.Date == "" || draft.Time == "" {
		return errors.New("date and time are required")
	}
	switch draft.Recurrence {
	case "", RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceBiweekly, RecurrenceMonthly:
	default:
		return fmt.Errorf("unknown recurrence %q", draft.Recurrence)
	}
	if draft.recurring() {
		switch draft.RecurrenceEndMode {
		case RecurrenceEndCount, RecurrenceEndNever:
		default:
			return fmt.Errorf("unknown recurrence end mode %q", draft.RecurrenceEndMode)
		}
	}
	return nil
}
