package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/chaiadda/backend/controllers"
	"github.com/chaiadda/backend/models"
	"github.com/chaiadda/backend/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// captureMailer records the last OTP instead of sending mail.
type captureMailer struct {
	lastTo  string
	lastOTP string
}

func (m *captureMailer) SendOTP(to, otp string) error {
	m.lastTo = to
	m.lastOTP = otp
	return nil
}

func setupAuthTest(t *testing.T) (*gin.Engine, *gorm.DB, *captureMailer) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Admin{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	mailer := &captureMailer{}
	authCtrl := controllers.NewAuthController(db, mailer)

	r := gin.New()
	r.POST("/api/auth/signup", authCtrl.Signup)
	r.POST("/api/auth/verify-otp", authCtrl.VerifySignupOTP)
	r.POST("/api/auth/login", authCtrl.Login)
	r.POST("/api/auth/admin/login", authCtrl.AdminLogin)
	return r, db, mailer
}

func postJSON(t *testing.T, r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	assert.NoError(t, err)

	req, err := http.NewRequest("POST", path, bytes.NewBuffer(payload))
	assert.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSignupVerifyLoginFlow(t *testing.T) {
	r, _, mailer := setupAuthTest(t)

	w := postJSON(t, r, "/api/auth/signup", gin.H{
		"name":          "Asha",
		"enrollment_no": "EN-001",
		"email":         "asha@student.rishihood.edu.in",
		"password":      "secret123",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "asha@student.rishihood.edu.in", mailer.lastTo)
	assert.Len(t, mailer.lastOTP, 6)

	// Login before verification re-sends an OTP instead of a token.
	w = postJSON(t, r, "/api/auth/login", gin.H{
		"email":    "asha@student.rishihood.edu.in",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Wrong OTP is rejected.
	w = postJSON(t, r, "/api/auth/verify-otp", gin.H{
		"email": "asha@student.rishihood.edu.in",
		"otp":   "000000",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// The freshly mailed OTP verifies the account and logs in.
	w = postJSON(t, r, "/api/auth/verify-otp", gin.H{
		"email": "asha@student.rishihood.edu.in",
		"otp":   mailer.lastOTP,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "user", data["role"])
	assert.NotEmpty(t, data["token"])

	// Normal login now works.
	w = postJSON(t, r, "/api/auth/login", gin.H{
		"email":    "asha@student.rishihood.edu.in",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// Bad password does not.
	w = postJSON(t, r, "/api/auth/login", gin.H{
		"email":    "asha@student.rishihood.edu.in",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSignupRejectsNonCampusEmail(t *testing.T) {
	r, _, _ := setupAuthTest(t)

	w := postJSON(t, r, "/api/auth/signup", gin.H{
		"name":          "Mallory",
		"enrollment_no": "EN-666",
		"email":         "mallory@gmail.com",
		"password":      "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminLogin(t *testing.T) {
	r, db, _ := setupAuthTest(t)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("adminpass"), bcrypt.DefaultCost)
	db.Create(&models.Admin{Name: "Staff", Email: "staff@rishihood.edu.in", Password: string(hashed)})

	w := postJSON(t, r, "/api/auth/admin/login", gin.H{
		"email":    "staff@rishihood.edu.in",
		"password": "adminpass",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "admin", data["role"])
	assert.NotEmpty(t, data["token"])

	w = postJSON(t, r, "/api/auth/admin/login", gin.H{
		"email":    "staff@rishihood.edu.in",
		"password": "nope",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
