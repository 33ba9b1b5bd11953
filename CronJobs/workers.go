package CronJobs

import (
	"fmt"
	"log"
	"time"

	"github.com/RafaelFrancoD/CRM-hol-stico/Models"
	"github.com/RafaelFrancoD/CRM-hol-stico/Whatsapp"

	"github.com/go-co-op/gocron"
	"gorm.io/gorm"
)

// AppointmentReminder asks patients with an unconfirmed session tomorrow to
// confirm via WhatsApp.
type AppointmentReminder struct {
	DB *gorm.DB
}

func NewAppointmentReminder(db *gorm.DB) *AppointmentReminder {
	return &AppointmentReminder{DB: db}
}

func (ar *AppointmentReminder) StartReminderCron() *gocron.Scheduler {
	scheduler := gocron.NewScheduler(time.Local)

	scheduler.Every(1).Day().At("08:00").Do(func() {
		log.Println("Running appointment reminder check...")
		if err := ar.SendAppointmentReminders(); err != nil {
			log.Printf("Error sending appointment reminders: %v", err)
		}
	})

	scheduler.StartAsync()
	log.Println("Appointment reminder cron job started")

	return scheduler
}

func (ar *AppointmentReminder) SendAppointmentReminders() error {
	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")

	var records []Models.Record
	if err := ar.DB.Table(Models.StoreAppointments).Find(&records).Error; err != nil {
		return fmt.Errorf("failed to query appointments: %w", err)
	}

	for i := range records {
		var appointment Models.Appointment
		if err := records[i].Decode(&appointment); err != nil {
			log.Printf("Failed to decode appointment %s: %v", records[i].ID, err)
			continue
		}
		if appointment.Confirmed {
			continue
		}

		start, err := appointment.StartTime()
		if err != nil {
			log.Printf("Failed to parse appointment time for %s: %v", records[i].ID, err)
			continue
		}
		if start.Local().Format("2006-01-02") != tomorrow {
			continue
		}

		patientRecord, err := Models.GetRecord(ar.DB, Models.StorePatients, records[i].OwnerEmail, appointment.PatientID)
		if err != nil {
			log.Printf("Failed to find patient for appointment %s: %v", records[i].ID, err)
			continue
		}
		var patient Models.Patient
		if err := patientRecord.Decode(&patient); err != nil || patient.Phone == "" {
			continue
		}

		message := fmt.Sprintf(
			"Olá %s! Lembrete: você tem uma sessão amanhã às %s. Por favor, confirme sua presença respondendo esta mensagem.",
			patient.FirstName(),
			start.Local().Format("15:04"),
		)

		if err := Whatsapp.SendMessage(patient.Phone, message); err != nil {
			log.Printf("Failed to send reminder to patient %s: %v", patient.Name, err)
			continue
		}

		log.Printf("Reminder sent to %s for appointment at %s", patient.Name, appointment.Start)
	}

	return nil
}
