package Controllers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func schedule(t *testing.T, router *gin.Engine, token string, draft map[string]interface{}) []map[string]interface{} {
	t.Helper()
	w := do(t, router, http.MethodPost, "/api/appointments/schedule", draft, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var response struct {
		Appointments []map[string]interface{} `json:"appointments"`
	}
	decodeBody(t, w, &response)
	return response.Appointments
}

func localDate(t *testing.T, record map[string]interface{}) string {
	t.Helper()
	start, err := time.Parse(time.RFC3339, str(record, "start"))
	require.NoError(t, err)
	return start.Local().Format("2006-01-02")
}

func TestScheduleSingleConfirmed(t *testing.T) {
	router := setupRouter(t)
	token := registerAndLogin(t, router, testEmail)
	patientID := createPatient(t, router, token, "Ana Beatriz Costa")

	created := schedule(t, router, token, map[string]interface{}{
		"patientId": patientID,
		"date":      "2026-09-01",
		"time":      "14:30",
		"value":     180.0,
		"confirmed": true,
	})
	require.Len(t, created, 1)

	appointment := created[0]
	assert.Equal(t, patientID, str(appointment, "patientId"))
	assert.Equal(t, "Ana Beatriz Costa", str(appointment, "patientName"))
	assert.Empty(t, str(appointment, "recurrenceId"))

	start, err := time.Parse(time.RFC3339, str(appointment, "start"))
	require.NoError(t, err)
	end, err := time.Parse(time.RFC3339, str(appointment, "end"))
	require.NoError(t, err)
	assert.Equal(t, time.Hour, end.Sub(start))
	assert.Equal(t, "2026-09-01 14:30", start.Local().Format("2006-01-02 15:04"))

	finance := listStore(t, router, token, "finance")
	require.Len(t, finance, 1, "confirmed session must derive one ledger entry")
	transaction := finance[0]
	assert.Equal(t, str(appointment, "id"), str(transaction, "appointmentId"))
	assert.Equal(t, patientID, str(transaction, "patientId"))
	assert.Equal(t, "receivable", str(transaction, "type"))
	assert.Equal(t, "pending", str(transaction, "status"))
	assert.Equal(t, "Sessão: Ana Beatriz Costa", str(transaction, "description"))
	assert.Equal(t, "Consulta", str(transaction, "category"))
	assert.Equal(t, 180.0, transaction["amount"])
}

func TestScheduleConfirmedWithReceipt(t *testing.T) {
	router := setupRouter(t)
	token := registerAndLogin(t, router, testEmail)
	patientID := createPatient(t, router, token, "Bruno Dias")

	schedule(t, router, token, map[string]interface{}{
		"patientId": patientID,
		"date":      "2026-09-02",
		"time":      "10:00",
		"value":     200.0,
		"confirmed": true,
		"paymentReceipt": map[string]interface{}{
			"name":     "pix.png",
			"type":     "image/png",
			"filePath": "/uploads/file-1-pix.png",
		},
	})

	finance := listStore(t, router, token, "finance")
	require.Len(t, finance, 1)
	assert.Equal(t, "income", str(finance[0], "type"))
	assert.Equal(t, "paid", str(finance[0], "status"))
	receipt, ok := finance[0]["paymentReceipt"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "/uploads/file-1-pix.png", str(receipt, "filePath"))
}

func TestScheduleUnconfirmedDerivesNoTransaction(t *testing.T) {
	router := setupRouter(t)
	token := registerAndLogin(t, router, testEmail)
	patientID := createPatient(t, router, token, "Clara Nunes")

	schedule(t, router, token, map[string]interface{}{
		"patientId": patientID,
		"date":      "2026-09-03",
		"time":      "09:00",
		"value":     150.0,
	})

	assert.Empty(t, listStore(t, router, token, "finance"))
}

func TestScheduleWeeklyCount(t *testing.T) {
	router := setupRouter(t)
	token := registerAndLogin(t, router, testEmail)
	patientID := createPatient(t, router, token, "Daniel Rocha")

	created := schedule(t, router, token, map[string]interface{}{
		"patientId":         patientID,
		"date":              "2024-01-01",
		"time":              "08:00",
		"value":             100.0,
		"recurrence":        "weekly",
		"recurrenceEndMode": "count",
		"recurrenceCount":   4,
	})
	require.Len(t, created, 4)

	appointments := appointmentsByStart(t, router, token)
	require.Len(t, appointments, 4)

	recurrenceID := str(appointments[0], "recurrenceId")
	require.NotEmpty(t, recurrenceID)
	wantDates := []string{"2024-01-01", "2024-01-08", "2024-01-15", "2024-01-22"}
	for i, appointment := range appointments {
		assert.Equal(t, recurrenceID, str(appointment, "recurrenceId"), "occurrence %d", i)
		assert.Equal(t, wantDates[i], localDate(t, appointment), "occurrence %d", i)
	}
}

func TestScheduleOpenEndedMonthly(t *testing.T) {
	router := setupRouter(t)
	token := registerAndLogin(t, router, testEmail)
	patientID := createPatient(t, router, token, "Elisa Prado")

	created := schedule(t, router, token, map[string]interface{}{
		"patientId":         patientID,
		"date":              "2026-05-10",
		"time":              "16:00",
		"value":             220.0,
		"recurrence":        "monthly",
		"recurrenceEndMode": "never",
	})
	assert.Len(t, created, 12)

	appointments := appointmentsByStart(t, router, token)
	require.Len(t, appointments, 12)
	assert.Equal(t, "2026-05-10", localDate(t, appointments[0]))
	assert.Equal(t, "2027-04-10", localDate(t, appointments[11]))
}

func TestScheduleConfirmedSeriesDerivesOneTransactionEach(t *testing.T) {
	router := setupRouter(t)
	token := registerAndLogin(t, router, testEmail)
	patientID := createPatient(t, router, token, "Fábio Gomes")

	schedule(t, router, token, map[string]interface{}{
		"patientId":         patientID,
		"date":              "2026-09-07",
		"time":              "11:00",
		"value":             130.0,
		"confirmed":         true,
		"recurrence":        "daily",
		"recurrenceEndMode": "count",
		"recurrenceCount":   3,
	})

	appointments := appointmentsByStart(t, router, token)
	finance := listStore(t, router, token, "finance")
	require.Len(t, appointments, 3)
	require.Len(t, finance, 3)

	linked := map[string]bool{}
	for _, transaction := range finance {
		linked[str(transaction, "appointmentId")] = true
	}
	for _, appointment := range appointments {
		assert.True(t, linked[str(appointment, "id")], "every occurrence has its ledger entry")
	}
}

func TestScheduleEditKeepsSeriesID(t *testing.T) {
	router := setupRouter(t)
	token := registerAndLogin(t, router, testEmail)
	patientID := createPatient(t, router, token, "Gabriela Reis")

	schedule(t, router, token, map[string]interface{}{
		"patientId":         patientID,
		"date":              "2026-10-05",
		"time":              "13:00",
		"value":             160.0,
		"recurrence":        "weekly",
		"recurrenceEndMode": "count",
		"recurrenceCount":   4,
	})

	appointments := appointmentsByStart(t, router, token)
	require.Len(t, appointments, 4)
	recurrenceID := str(appointments[0], "recurrenceId")
	second := appointments[1]

	// Move the second occurrence to another time. Even with a recurrence set
	// on the edit payload, only one row is recreated.
	created := schedule(t, router, token, map[string]interface{}{
		"id":                str(second, "id"),
		"patientId":         patientID,
		"date":              "2026-10-13",
		"time":              "15:00",
		"value":             160.0,
		"recurrence":        "weekly",
		"recurrenceEndMode": "count",
		"recurrenceCount":   4,
	})
	require.Len(t, created, 1)
	assert.Equal(t, recurrenceID, str(created[0], "recurrenceId"))
	assert.NotEqual(t, str(second, "id"), str(created[0], "id"))

	after := appointmentsByStart(t, router, token)
	require.Len(t, after, 4, "edit replaces, never grows the series")

	var dates []string
	for _, appointment := range after {
		assert.Equal(t, recurrenceID, str(appointment, "recurrenceId"))
		dates = append(dates, localDate(t, appointment))
	}
	assert.Equal(t, []string{"2026-10-05", "2026-10-13", "2026-10-19", "2026-10-26"}, dates)
}

func TestScheduleEditReplacesLinkedTransaction(t *testing.T) {
	router := setupRouter(t)
	token := registerAndLogin(t, router, testEmail)
	patientID := createPatient(t, router, token, "Heitor Luz")

	created := schedule(t, router, token, map[string]interface{}{
		"patientId": patientID,
		"date":      "2026-09-10",
		"time":      "10:00",
		"value":     190.0,
		"confirmed": true,
	})
	originalID := str(created[0], "id")

	recreated := schedule(t, router, token, map[string]interface{}{
		"id":        originalID,
		"patientId": patientID,
		"date":      "2026-09-11",
		"time":      "10:00",
		"value":     190.0,
		"confirmed": true,
	})
	require.Len(t, recreated, 1)

	finance := listStore(t, router, token, "finance")
	require.Len(t, finance, 1, "old derived entry must be replaced, not accumulated")
	assert.Equal(t, str(recreated[0], "id"), str(finance[0], "appointmentId"))
}

func TestScheduleRejectsRecurrenceWithoutEndMode(t *testing.T) {
	router := setupRouter(t)
	token := registerAndLogin(t, router, testEmail)
	patientID := createPatient(t, router, token, "Olívia Ramos")

	w := do(t, router, http.MethodPost, "/api/appointments/schedule", map[string]interface{}{
		"patientId":  patientID,
		"date":       "2026-09-01",
		"time":       "10:00",
		"recurrence": "weekly",
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, listStore(t, router, token, "appointments"))
}

func TestScheduleUnknownPatient(t *testing.T) {
	router := setupRouter(t)
	token := registerAndLogin(t, router, testEmail)

	w := do(t, router, http.MethodPost, "/api/appointments/schedule", map[string]interface{}{
		"patientId": "missing",
		"date":      "2026-09-01",
		"time":      "10:00",
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteAppointmentSingle(t *testing.T) {
	router := setupRouter(t)
	token := registerAndLogin(t, router, testEmail)
	patientID := createPatient(t, router, token, "Iara Melo")

	created := schedule(t, router, token, map[string]interface{}{
		"patientId": patientID,
		"date":      "2026-09-15",
		"time":      "12:00",
		"value":     140.0,
		"confirmed": true,
	})

	w := do(t, router, http.MethodPost, "/api/appointments/delete", map[string]interface{}{
		"id": str(created[0], "id"),
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Empty(t, listStore(t, router, token, "appointments"))
	assert.Empty(t, listStore(t, router, token, "finance"), "derived entry goes with the appointment")
}

func TestDeleteAppointmentSequence(t *testing.T) {
	router := setupRouter(t)
	token := registerAndLogin(t, router, testEmail)
	patientID := createPatient(t, router, token, "João Pedro Alves")

	schedule(t, router, token, map[string]interface{}{
		"patientId":         patientID,
		"date":              "2026-11-02",
		"time":              "09:00",
		"value":             170.0,
		"confirmed":         true,
		"recurrence":        "weekly",
		"recurrenceEndMode": "count",
		"recurrenceCount":   4,
	})

	appointments := appointmentsByStart(t, router, token)
	require.Len(t, appointments, 4)

	w := do(t, router, http.MethodPost, "/api/appointments/delete", map[string]interface{}{
		"id":   str(appointments[1], "id"),
		"mode": "sequence",
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	remaining := appointmentsByStart(t, router, token)
	require.Len(t, remaining, 1, "sequence keeps only occurrences before the target")
	assert.Equal(t, str(appointments[0], "id"), str(remaining[0], "id"))

	finance := listStore(t, router, token, "finance")
	require.Len(t, finance, 1)
	assert.Equal(t, str(remaining[0], "id"), str(finance[0], "appointmentId"))
}

func TestDeleteSequenceWithoutSeriesFallsBackToSingle(t *testing.T) {
	router := setupRouter(t)
	token := registerAndLogin(t, router, testEmail)
	patientID := createPatient(t, router, token, "Karen Dias")

	first := schedule(t, router, token, map[string]interface{}{
		"patientId": patientID,
		"date":      "2026-09-20",
		"time":      "10:00",
	})
	schedule(t, router, token, map[string]interface{}{
		"patientId": patientID,
		"date":      "2026-09-21",
		"time":      "10:00",
	})

	w := do(t, router, http.MethodPost, "/api/appointments/delete", map[string]interface{}{
		"id":   str(first[0], "id"),
		"mode": "sequence",
	}, token)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Len(t, listStore(t, router, token, "appointments"), 1)
}

func TestDeleteAppointmentUnknownMode(t *testing.T) {
	router := setupRouter(t)
	token := registerAndLogin(t, router, testEmail)

	w := do(t, router, http.MethodPost, "/api/appointments/delete", map[string]interface{}{
		"id":   "whatever",
		"mode": "cascade",
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeletePatientCascade(t *testing.T) {
	router := setupRouter(t)
	token := registerAndLogin(t, router, testEmail)
	otherToken := registerAndLogin(t, router, "outra@clinic.com")

	patientID := createPatient(t, router, token, "Luana Freitas")
	keeperID := createPatient(t, router, token, "Marcos Vidal")
	otherPatientID := createPatient(t, router, otherToken, "Paciente Alheio")

	schedule(t, router, token, map[string]interface{}{
		"patientId":         patientID,
		"date":              "2026-09-22",
		"time":              "10:00",
		"confirmed":         true,
		"recurrence":        "daily",
		"recurrenceEndMode": "count",
		"recurrenceCount":   2,
	})
	schedule(t, router, token, map[string]interface{}{
		"patientId": keeperID,
		"date":      "2026-09-22",
		"time":      "14:00",
		"confirmed": true,
	})
	schedule(t, router, otherToken, map[string]interface{}{
		"patientId": otherPatientID,
		"date":      "2026-09-22",
		"time":      "15:00",
		"confirmed": true,
	})

	// An unlinked manual ledger entry referencing the patient goes too.
	w := do(t, router, http.MethodPost, "/api/data/finance", map[string]interface{}{
		"description": "Pacote avulso",
		"amount":      300.0,
		"type":        "income",
		"status":      "paid",
		"date":        "2026-09-20T12:00:00Z",
		"patientId":   patientID,
	}, token)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, router, http.MethodPost, "/api/patients/delete", map[string]interface{}{
		"patientId": patientID,
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	patients := listStore(t, router, token, "patients")
	require.Len(t, patients, 1)
	assert.Equal(t, keeperID, str(patients[0], "id"))

	appointments := listStore(t, router, token, "appointments")
	require.Len(t, appointments, 1)
	assert.Equal(t, keeperID, str(appointments[0], "patientId"))

	finance := listStore(t, router, token, "finance")
	require.Len(t, finance, 1)
	assert.Equal(t, keeperID, str(finance[0], "patientId"))

	assert.Len(t, listStore(t, router, otherToken, "patients"), 1)
	assert.Len(t, listStore(t, router, otherToken, "appointments"), 1)
	assert.Len(t, listStore(t, router, otherToken, "finance"), 1)
}

func TestGatewayDeleteDelegates(t *testing.T) {
	router := setupRouter(t)
	token := registerAndLogin(t, router, testEmail)
	patientID := createPatient(t, router, token, "Nina Torres")

	created := schedule(t, router, token, map[string]interface{}{
		"patientId": patientID,
		"date":      "2026-09-25",
		"time":      "10:00",
		"confirmed": true,
	})

	// DELETE on the appointments store behaves like a single-mode delete.
	w := do(t, router, http.MethodDelete, "/api/data/appointments/"+str(created[0], "id"), nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, listStore(t, router, token, "finance"))

	// DELETE on the patients store cascades.
	w = do(t, router, http.MethodDelete, "/api/data/patients/"+patientID, nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, listStore(t, router, token, "patients"))
}
