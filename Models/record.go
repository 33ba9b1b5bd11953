package Models

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	StorePatients         = "patients"
	StoreFinance          = "finance"
	StoreAppointments     = "appointments"
	StoreDocuments        = "documents"
	StoreMessageTemplates = "message_templates"
)

var Stores = []string{StorePatients, StoreFinance, StoreAppointments, StoreDocuments, StoreMessageTemplates}

// ErrNotOwner is returned when a record exists but belongs to another user.
var ErrNotOwner = errors.New("record belongs to another user")

func StoreAllowed(name string) bool {
	for _, store := range Stores {
		if store == name {
			return true
		}
	}
	return false
}

// Record is one row of a store table: a free-form JSON payload scoped to the
// owning practitioner's email. The same shape backs all five store tables.
type Record struct {
	ID         string         `json:"id" gorm:"primaryKey;size:64"`
	Data       datatypes.JSON `json:"data" gorm:"type:jsonb"`
	OwnerEmail string         `json:"owner_email" gorm:"index;size:255"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Decode unmarshals the payload into a typed view (Patient, Appointment, ...).
func (record *Record) Decode(out interface{}) error {
	return json.Unmarshal(record.Data, out)
}

// Flat returns the wire shape of a record: {"id": ..., ...payload fields}.
func (record *Record) Flat() map[string]interface{} {
	flat := map[string]interface{}{}
	if err := json.Unmarshal(record.Data, &flat); err != nil {
		return map[string]interface{}{"id": record.ID}
	}
	// A stored JSON null decodes without error but leaves the map nil.
	if flat == nil {
		flat = map[string]interface{}{}
	}
	flat["id"] = record.ID
	return flat
}

func ListRecords(db *gorm.DB, store, owner string) ([]Record, error) {
	var records []Record
	err := db.Table(store).
		Where("owner_email = ?", owner).
		Order("created_at DESC").
		Find(&records).Error
	return records, err
}

func GetRecord(db *gorm.DB, store, owner, id string) (Record, error) {
	var record Record
	if err := db.Table(store).Where("id = ?", id).First(&record).Error; err != nil {
		return record, err
	}
	if record.OwnerEmail != owner {
		return record, ErrNotOwner
	}
	return record, nil
}

// ErrEmptyPayload is returned when a write carries no payload object at all.
var ErrEmptyPayload = errors.New("payload must be a JSON object")

// CreateRecord stores a payload, assigning a server uuid when the caller did
// not supply one. A client-supplied "id" key is never kept inside the payload.
func CreateRecord(db *gorm.DB, store, owner string, payload map[string]interface{}) (Record, error) {
	if payload == nil {
		return Record{}, ErrEmptyPayload
	}
	id, _ := payload["id"].(string)
	if id == "" {
		id = uuid.NewString()
	}
	delete(payload, "id")

	raw, err := json.Marshal(payload)
	if err != nil {
		return Record{}, err
	}

	record := Record{ID: id, Data: datatypes.JSON(raw), OwnerEmail: owner}
	if err := db.Table(store).Create(&record).Error; err != nil {
		return Record{}, err
	}
	return record, nil
}

// UpdateRecord replaces the payload of an owned record and stamps updated_at.
func UpdateRecord(db *gorm.DB, store, owner, id string, payload map[string]interface{}) (Record, error) {
	if payload == nil {
		return Record{}, ErrEmptyPayload
	}
	record, err := GetRecord(db, store, owner, id)
	if err != nil {
		return record, err
	}

	delete(payload, "id")
	raw, err := json.Marshal(payload)
	if err != nil {
		return record, err
	}
	record.Data = datatypes.JSON(raw)

	err = db.Table(store).Where("id = ?", id).Updates(map[string]interface{}{
		"data":       record.Data,
		"updated_at": time.Now(),
	}).Error
	return record, err
}

// DeleteRecord removes an owned record and returns the row it held, so callers
// can run follow-up cleanup (e.g. unlinking a stored file).
func DeleteRecord(db *gorm.DB, store, owner, id string) (Record, error) {
	record, err := GetRecord(db, store, owner, id)
	if err != nil {
		return record, err
	}
	err = db.Table(store).Where("id = ?", id).Delete(&Record{}).Error
	return record, err
}
