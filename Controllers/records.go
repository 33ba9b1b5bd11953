package Controllers

import (
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/RafaelFrancoD/CRM-hol-stico/Models"
	"github.com/RafaelFrancoD/CRM-hol-stico/SSE"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func ownerEmail(c *gin.Context) string {
	return c.GetString("ownerEmail")
}

// storeParam validates the {store} path segment against the allow-list.
func storeParam(c *gin.Context) (string, bool) {
	store := c.Param("store")
	if !Models.StoreAllowed(store) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
		return "", false
	}
	return store, true
}

func recordError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, Models.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, Models.ErrEmptyPayload):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
	default:
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

func ListStoreRecords(c *gin.Context) {
	store, ok := storeParam(c)
	if !ok {
		return
	}

	records, err := Models.ListRecords(Models.DB, store, ownerEmail(c))
	if err != nil {
		recordError(c, err)
		return
	}

	flat := make([]map[string]interface{}, 0, len(records))
	for i := range records {
		flat = append(flat, records[i].Flat())
	}
	c.JSON(http.StatusOK, flat)
}

func GetStoreRecord(c *gin.Context) {
	store, ok := storeParam(c)
	if !ok {
		return
	}

	record, err := Models.GetRecord(Models.DB, store, ownerEmail(c), c.Param("id"))
	if err != nil {
		recordError(c, err)
		return
	}
	c.JSON(http.StatusOK, record.Flat())
}

// validatePatientPayload re-checks the guardian rule before a patient row is
// written; other stores keep their payloads free-form.
func validatePatientPayload(c *gin.Context, payload map[string]interface{}) bool {
	record := Models.Record{}
	raw, err := toJSON(payload)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return false
	}
	record.Data = raw

	var patient Models.Patient
	if err := record.Decode(&patient); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid patient payload"})
		return false
	}
	if err := patient.Validate(time.Now()); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func CreateStoreRecord(c *gin.Context) {
	store, ok := storeParam(c)
	if !ok {
		return
	}

	var payload map[string]interface{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// A body of literal null binds into a nil map without an error.
	if payload == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	if store == Models.StorePatients && !validatePatientPayload(c, payload) {
		return
	}

	record, err := Models.CreateRecord(Models.DB, store, ownerEmail(c), payload)
	if err != nil {
		recordError(c, err)
		return
	}

	SSE.Events.Notify(store)
	c.JSON(http.StatusCreated, record.Flat())
}

func UpdateStoreRecord(c *gin.Context) {
	store, ok := storeParam(c)
	if !ok {
		return
	}

	var payload map[string]interface{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if payload == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	if store == Models.StorePatients && !validatePatientPayload(c, payload) {
		return
	}

	record, err := Models.UpdateRecord(Models.DB, store, ownerEmail(c), c.Param("id"), payload)
	if err != nil {
		recordError(c, err)
		return
	}

	SSE.Events.Notify(store)
	c.JSON(http.StatusOK, record.Flat())
}

// DeleteStoreRecord removes one record. Patients cascade over their
// appointments and transactions, appointments take their derived transaction
// with them, and documents release their stored file best-effort.
func DeleteStoreRecord(c *gin.Context) {
	store, ok := storeParam(c)
	if !ok {
		return
	}
	owner := ownerEmail(c)
	id := c.Param("id")

	switch store {
	case Models.StorePatients:
		if err := deletePatientCascade(owner, id); err != nil {
			recordError(c, err)
			return
		}
		SSE.Events.Notify(Models.StorePatients)
		SSE.Events.Notify(Models.StoreAppointments)
		SSE.Events.Notify(Models.StoreFinance)

	case Models.StoreAppointments:
		if err := deleteAppointments(owner, id, DeleteModeSingle); err != nil {
			recordError(c, err)
			return
		}
		SSE.Events.Notify(Models.StoreAppointments)
		SSE.Events.Notify(Models.StoreFinance)

	default:
		record, err := Models.DeleteRecord(Models.DB, store, owner, id)
		if err != nil {
			recordError(c, err)
			return
		}
		if store == Models.StoreDocuments {
			removeStoredFile(record)
		}
		SSE.Events.Notify(store)
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// removeStoredFile unlinks the file a document row pointed at. Failures are
// logged only; the row is already gone.
func removeStoredFile(record Models.Record) {
	var document Models.Document
	if err := record.Decode(&document); err != nil || document.FilePath == "" {
		return
	}
	name := filepath.Base(document.FilePath)
	if err := os.Remove(filepath.Join(UploadDir(), name)); err != nil && !os.IsNotExist(err) {
		log.Println("failed to remove stored file:", err)
	}
}
