package Models

import (
	"errors"
	"strings"
	"time"
)

// Patient lifecycle stages, mirrored by the kanban board.
const (
	PatientStatusNew         = "Novos Contatos"
	PatientStatusAnamnesis   = "Anamnese"
	PatientStatusTreatment   = "Em Tratamento"
	PatientStatusMaintenance = "Manutenção"
	PatientStatusArchived    = "Arquivado"
)

type ClinicalNote struct {
	ID      string `json:"id,omitempty"`
	Date    string `json:"date,omitempty"`
	Content string `json:"content,omitempty"`
}

type Patient struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Phone  string `json:"phone,omitempty"`
	Status string `json:"status,omitempty"`

	BirthDate string `json:"birthDate,omitempty"`
	CPF       string `json:"cpf,omitempty"`
	RG        string `json:"rg,omitempty"`
	Address   string `json:"address,omitempty"`

	GuardianName      string `json:"guardianName,omitempty"`
	GuardianCPF       string `json:"guardianCpf,omitempty"`
	GuardianRG        string `json:"guardianRg,omitempty"`
	GuardianBirthDate string `json:"guardianBirthDate,omitempty"`

	LastSessionDate string         `json:"lastSessionDate,omitempty"`
	NextSessionDate string         `json:"nextSessionDate,omitempty"`
	LgpdConsent     bool           `json:"lgpdConsent"`
	Notes           string         `json:"notes,omitempty"`
	ClinicalHistory []ClinicalNote `json:"clinicalHistory,omitempty"`
	CreatedAt       string         `json:"createdAt,omitempty"`
}

// FirstName returns the leading word of the patient's name for informal
// message templates.
func (patient *Patient) FirstName() string {
	parts := strings.Fields(patient.Name)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// PhoneDigits strips formatting from the stored phone, leaving wa.me digits.
func (patient *Patient) PhoneDigits() string {
	var digits strings.Builder
	for _, r := range patient.Phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return digits.String()
}

// IsMinor reports whether the patient's birth date puts them under 18 at now.
func (patient *Patient) IsMinor(now time.Time) bool {
	if patient.BirthDate == "" {
		return false
	}
	birth, err := time.Parse("2006-01-02", patient.BirthDate)
	if err != nil {
		return false
	}
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age < 18
}

// Validate re-checks what the form enforces client-side: a name, and guardian
// identification whenever the inferred age is under 18.
func (patient *Patient) Validate(now time.Time) error {
	if strings.TrimSpace(patient.Name) == "" {
		return errors.New("patient name is required")
	}
	if patient.IsMinor(now) && strings.TrimSpace(patient.GuardianName) == "" {
		return errors.New("guardian name is required for patients under 18")
	}
	return nil
}

// Transaction types and statuses of the financial ledger.
const (
	TransactionIncome     = "income"
	TransactionExpense    = "expense"
	TransactionReceivable = "receivable"

	TransactionPaid    = "paid"
	TransactionPending = "pending"
)

type PaymentReceipt struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	FilePath string `json:"filePath"`
}

type Transaction struct {
	ID          string `json:"id,omitempty"`
	Description string `json:"description"`
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"`
	Status      string  `json:"status"`
	Category    string  `json:"category,omitempty"`
	Date        string  `json:"date"`

	PatientID      string          `json:"patientId,omitempty"`
	PatientName    string          `json:"patientName,omitempty"`
	AppointmentID  string          `json:"appointmentId,omitempty"`
	InvoiceEmitted bool            `json:"invoiceEmitted"`
	PaymentReceipt *PaymentReceipt `json:"paymentReceipt,omitempty"`
}

type Appointment struct {
	ID           string  `json:"id,omitempty"`
	PatientID    string  `json:"patientId"`
	PatientName  string  `json:"patientName"`
	Start        string  `json:"start"`
	End          string  `json:"end"`
	Notes        string  `json:"notes,omitempty"`
	Confirmed    bool    `json:"confirmed"`
	RecurrenceID string  `json:"recurrenceId,omitempty"`
	Value        float64 `json:"value"`
}

// StartTime parses the stored RFC3339 start instant.
func (appointment *Appointment) StartTime() (time.Time, error) {
	return time.Parse(time.RFC3339, appointment.Start)
}

type Document struct {
	ID       string  `json:"id,omitempty"`
	Name     string  `json:"name"`
	Type     string  `json:"type,omitempty"`
	Size     float64 `json:"size,omitempty"`
	Date     string  `json:"date,omitempty"`
	FilePath string  `json:"filePath"`
}

type MessageTemplate struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Content string `json:"content"`
}
