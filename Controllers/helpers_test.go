package Controllers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/RafaelFrancoD/CRM-hol-stico/Models"
	"github.com/RafaelFrancoD/CRM-hol-stico/Routes"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testEmail    = "dra@clinic.com"
	testPassword = "Str0ng!Pass"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	t.Setenv("API_SECRET", "test-secret")
	t.Setenv("UPLOAD_DIR", t.TempDir())

	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, Models.MigrateSchema(db))
	Models.DB = db

	router := gin.New()
	Routes.ConfigRoutes(router)
	return router
}

func do(t *testing.T, router *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func registerAndLogin(t *testing.T, router *gin.Engine, email string) string {
	t.Helper()
	credentials := map[string]string{"email": email, "password": testPassword}

	w := do(t, router, http.MethodPost, "/api/auth/register", credentials, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, router, http.MethodPost, "/api/auth/login", credentials, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response struct {
		Token string `json:"token"`
	}
	decodeBody(t, w, &response)
	require.NotEmpty(t, response.Token)
	return response.Token
}

func createPatient(t *testing.T, router *gin.Engine, token, name string) string {
	t.Helper()
	w := do(t, router, http.MethodPost, "/api/data/patients", map[string]interface{}{
		"name":   name,
		"phone":  "(11) 98765-4321",
		"status": Models.PatientStatusTreatment,
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created map[string]interface{}
	decodeBody(t, w, &created)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func listStore(t *testing.T, router *gin.Engine, token, store string) []map[string]interface{} {
	t.Helper()
	w := do(t, router, http.MethodGet, "/api/data/"+store, nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var records []map[string]interface{}
	decodeBody(t, w, &records)
	return records
}

// appointmentsByStart returns the caller's appointments ordered by start
// instant, the way the calendar renders them.
func appointmentsByStart(t *testing.T, router *gin.Engine, token string) []map[string]interface{} {
	t.Helper()
	appointments := listStore(t, router, token, "appointments")
	sort.Slice(appointments, func(i, j int) bool {
		si, _ := appointments[i]["start"].(string)
		sj, _ := appointments[j]["start"].(string)
		return si < sj
	})
	return appointments
}

func str(record map[string]interface{}, key string) string {
	value, _ := record[key].(string)
	return value
}
