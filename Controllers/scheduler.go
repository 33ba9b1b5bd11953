package Controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/RafaelFrancoD/CRM-hol-stico/Models"
	"github.com/RafaelFrancoD/CRM-hol-stico/SSE"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DeleteModeSingle   = "single"
	DeleteModeSequence = "sequence"
)

func toJSON(payload interface{}) (datatypes.JSON, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// asPayload round-trips a typed value into the free-form map the record store
// persists. The "id" key is dropped; ids live outside the payload.
func asPayload(value interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	payload := map[string]interface{}{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	delete(payload, "id")
	return payload, nil
}

// linkedTransactions loads the caller's ledger and keeps the entries derived
// from the given appointment. The lookup scans in memory: derived links live
// inside the JSON payload, exactly one entry is expected per appointment.
func linkedTransactions(db *gorm.DB, owner, appointmentID string) ([]Models.Record, error) {
	records, err := Models.ListRecords(db, Models.StoreFinance, owner)
	if err != nil {
		return nil, err
	}
	var linked []Models.Record
	for i := range records {
		var transaction Models.Transaction
		if err := records[i].Decode(&transaction); err != nil {
			continue
		}
		if transaction.AppointmentID == appointmentID {
			linked = append(linked, records[i])
		}
	}
	return linked, nil
}

// deleteAppointmentTx removes one appointment row plus its derived
// transaction(s) inside the caller's transaction.
func deleteAppointmentTx(tx *gorm.DB, owner string, record Models.Record) error {
	linked, err := linkedTransactions(tx, owner, record.ID)
	if err != nil {
		return err
	}
	for i := range linked {
		if _, err := Models.DeleteRecord(tx, Models.StoreFinance, owner, linked[i].ID); err != nil {
			return err
		}
	}
	_, err = Models.DeleteRecord(tx, Models.StoreAppointments, owner, record.ID)
	return err
}

// ScheduleAppointment materializes an appointment draft: one row for a plain
// or edited session, N rows for a recurring series, each confirmed occurrence
// paired with exactly one derived ledger entry. The whole expansion commits or
// rolls back as a unit.
func ScheduleAppointment(c *gin.Context) {
	owner := ownerEmail(c)

	var draft Models.AppointmentDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := draft.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patientRecord, err := Models.GetRecord(Models.DB, Models.StorePatients, owner, draft.PatientID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Patient not found"})
		return
	}
	var patient Models.Patient
	if err := patientRecord.Decode(&patient); err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	patient.ID = patientRecord.ID

	tx := Models.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// Editing replaces the prior row and its ledger entry with a single fresh
	// occurrence, keeping the original series id so group operations still
	// reach it.
	var recurrenceID string
	if draft.IsEdit() {
		existing, err := Models.GetRecord(tx, Models.StoreAppointments, owner, draft.ID)
		if err != nil {
			tx.Rollback()
			recordError(c, err)
			return
		}
		var prior Models.Appointment
		if err := existing.Decode(&prior); err == nil {
			recurrenceID = prior.RecurrenceID
		}
		if err := deleteAppointmentTx(tx, owner, existing); err != nil {
			tx.Rollback()
			log.Println(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to replace appointment"})
			return
		}
	} else if draft.Recurrence != "" && draft.Recurrence != Models.RecurrenceNone {
		recurrenceID = uuid.NewString()
	}

	dates, err := draft.OccurrenceDates()
	if err != nil {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created := make([]map[string]interface{}, 0, len(dates))
	for _, date := range dates {
		appointment, err := draft.BuildOccurrence(date, patient, recurrenceID)
		if err != nil {
			tx.Rollback()
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		payload, err := asPayload(appointment)
		if err != nil {
			tx.Rollback()
			log.Println(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
			return
		}
		record, err := Models.CreateRecord(tx, Models.StoreAppointments, owner, payload)
		if err != nil {
			tx.Rollback()
			log.Println(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create appointment"})
			return
		}
		appointment.ID = record.ID

		if draft.Confirmed {
			transactionPayload, err := asPayload(draft.BuildTransaction(appointment))
			if err != nil {
				tx.Rollback()
				log.Println(err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
				return
			}
			if _, err := Models.CreateRecord(tx, Models.StoreFinance, owner, transactionPayload); err != nil {
				tx.Rollback()
				log.Println(err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create transaction"})
				return
			}
		}

		created = append(created, record.Flat())
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	SSE.Events.Notify(Models.StoreAppointments)
	if draft.Confirmed || draft.IsEdit() {
		SSE.Events.Notify(Models.StoreFinance)
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Appointments scheduled successfully", "appointments": created})
}

// deleteAppointments implements both deletion modes. Sequence mode removes
// the target and every sibling of its series starting at or after it; without
// a series it degrades to single.
func deleteAppointments(owner, id, mode string) error {
	tx := Models.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	target, err := Models.GetRecord(tx, Models.StoreAppointments, owner, id)
	if err != nil {
		tx.Rollback()
		return err
	}
	var targetAppointment Models.Appointment
	if err := target.Decode(&targetAppointment); err != nil {
		tx.Rollback()
		return err
	}

	victims := []Models.Record{target}
	if mode == DeleteModeSequence && targetAppointment.RecurrenceID != "" {
		targetStart, err := targetAppointment.StartTime()
		if err != nil {
			tx.Rollback()
			return err
		}
		all, err := Models.ListRecords(tx, Models.StoreAppointments, owner)
		if err != nil {
			tx.Rollback()
			return err
		}
		victims = victims[:0]
		for i := range all {
			var sibling Models.Appointment
			if err := all[i].Decode(&sibling); err != nil {
				continue
			}
			if sibling.RecurrenceID != targetAppointment.RecurrenceID {
				continue
			}
			start, err := sibling.StartTime()
			if err != nil {
				continue
			}
			if !start.Before(targetStart) {
				victims = append(victims, all[i])
			}
		}
	}

	for i := range victims {
		if err := deleteAppointmentTx(tx, owner, victims[i]); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit().Error
}

func DeleteAppointment(c *gin.Context) {
	var input struct {
		ID   string `json:"id" binding:"required"`
		Mode string `json:"mode"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Mode == "" {
		input.Mode = DeleteModeSingle
	}
	if input.Mode != DeleteModeSingle && input.Mode != DeleteModeSequence {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown delete mode"})
		return
	}

	if err := deleteAppointments(ownerEmail(c), input.ID, input.Mode); err != nil {
		recordError(c, err)
		return
	}

	SSE.Events.Notify(Models.StoreAppointments)
	SSE.Events.Notify(Models.StoreFinance)
	c.JSON(http.StatusOK, gin.H{"message": "Appointments deleted successfully"})
}

// deletePatientCascade removes the patient and every appointment and ledger
// entry referencing them, linked or not, in one transaction.
func deletePatientCascade(owner, patientID string) error {
	tx := Models.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if _, err := Models.GetRecord(tx, Models.StorePatients, owner, patientID); err != nil {
		tx.Rollback()
		return err
	}

	appointments, err := Models.ListRecords(tx, Models.StoreAppointments, owner)
	if err != nil {
		tx.Rollback()
		return err
	}
	for i := range appointments {
		var appointment Models.Appointment
		if err := appointments[i].Decode(&appointment); err != nil {
			continue
		}
		if appointment.PatientID != patientID {
			continue
		}
		if _, err := Models.DeleteRecord(tx, Models.StoreAppointments, owner, appointments[i].ID); err != nil {
			tx.Rollback()
			return err
		}
	}

	transactions, err := Models.ListRecords(tx, Models.StoreFinance, owner)
	if err != nil {
		tx.Rollback()
		return err
	}
	for i := range transactions {
		var transaction Models.Transaction
		if err := transactions[i].Decode(&transaction); err != nil {
			continue
		}
		if transaction.PatientID != patientID {
			continue
		}
		if _, err := Models.DeleteRecord(tx, Models.StoreFinance, owner, transactions[i].ID); err != nil {
			tx.Rollback()
			return err
		}
	}

	if _, err := Models.DeleteRecord(tx, Models.StorePatients, owner, patientID); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

func DeletePatient(c *gin.Context) {
	var input struct {
		PatientID string `json:"patientId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := deletePatientCascade(ownerEmail(c), input.PatientID); err != nil {
		recordError(c, err)
		return
	}

	SSE.Events.Notify(Models.StorePatients)
	SSE.Events.Notify(Models.StoreAppointments)
	SSE.Events.Notify(Models.StoreFinance)
	c.JSON(http.StatusOK, gin.H{"message": "Patient deleted successfully"})
}
