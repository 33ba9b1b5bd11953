package Whatsapp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/RafaelFrancoD/CRM-hol-stico/Models"

	"github.com/gin-gonic/gin"
)

func serviceURL() string {
	return os.Getenv("WHATSAPP_SERVICE_URL")
}

var client = &http.Client{Timeout: 10 * time.Second}

// SendMessage posts one message to the external WhatsApp gateway. The CRM
// treats delivery as fire-and-forget; failures bubble up for logging only.
func SendMessage(phone, message string) error {
	payload, err := json.Marshal(map[string]string{"phone": phone, "message": message})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, serviceURL()+"/send/message", bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	req.Header.Add("Content-Type", "application/json")

	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	if res.StatusCode >= 300 {
		return fmt.Errorf("whatsapp gateway responded %d: %s", res.StatusCode, body)
	}
	return nil
}

// RenderTemplate substitutes the placeholder tokens a message template may
// carry with the patient's data.
func RenderTemplate(content string, patient Models.Patient) string {
	nextSession := "data não definida"
	if patient.NextSessionDate != "" {
		if day, err := time.Parse("2006-01-02", patient.NextSessionDate); err == nil {
			nextSession = day.Format("02/01/2006")
		}
	}

	message := strings.ReplaceAll(content, "{nome}", patient.Name)
	message = strings.ReplaceAll(message, "{primeiro_nome}", patient.FirstName())
	message = strings.ReplaceAll(message, "{data_proxima_sessao}", nextSession)
	return message
}

// Link builds the click-to-chat URL for a rendered message.
func Link(patient Models.Patient, message string) string {
	return fmt.Sprintf("https://wa.me/%s?text=%s", patient.PhoneDigits(), url.QueryEscape(message))
}

// Links renders one message template against a set of patients and returns a
// wa.me link per patient, ready for the mass-messaging panel.
func Links(c *gin.Context) {
	var input struct {
		TemplateID string   `json:"templateId" binding:"required"`
		PatientIDs []string `json:"patientIds" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	owner := c.GetString("ownerEmail")

	templateRecord, err := Models.GetRecord(Models.DB, Models.StoreMessageTemplates, owner, input.TemplateID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		return
	}
	var template Models.MessageTemplate
	if err := templateRecord.Decode(&template); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	type patientLink struct {
		PatientID   string `json:"patientId"`
		PatientName string `json:"patientName"`
		Phone       string `json:"phone"`
		Link        string `json:"link"`
	}

	links := make([]patientLink, 0, len(input.PatientIDs))
	for _, id := range input.PatientIDs {
		record, err := Models.GetRecord(Models.DB, Models.StorePatients, owner, id)
		if err != nil {
			continue
		}
		var patient Models.Patient
		if err := record.Decode(&patient); err != nil {
			continue
		}
		patient.ID = record.ID

		message := RenderTemplate(template.Content, patient)
		links = append(links, patientLink{
			PatientID:   patient.ID,
			PatientName: patient.Name,
			Phone:       patient.Phone,
			Link:        Link(patient, message),
		})
	}

	c.JSON(http.StatusOK, links)
}
