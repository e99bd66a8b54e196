package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/chaiadda/backend/models"
	"github.com/chaiadda/backend/realtime"
	"github.com/chaiadda/backend/router"
	"github.com/chaiadda/backend/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// otpMailer hands the OTP back to the test instead of sending mail.
type otpMailer struct {
	lastOTP string
}

func (m *otpMailer) SendOTP(to, otp string) error {
	m.lastOTP = otp
	return nil
}

func setupTestApp(t *testing.T) (*gin.Engine, *gorm.DB, *otpMailer) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Admin{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	hashed, _ := bcrypt.GenerateFromPassword([]byte("adminpass"), bcrypt.DefaultCost)
	db.Create(&models.Admin{Name: "Canteen Staff", Email: "staff@rishihood.edu.in", Password: string(hashed)})

	mailer := &otpMailer{}
	return router.SetupRouter(db, realtime.NewHub(), mailer), db, mailer
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func dataOf(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v (%s)", err, w.Body.String())
	}
	data, _ := resp["data"].(map[string]interface{})
	return data
}

// TestEndToEndOrderFlow walks the main path:
// admin login -> menu item created -> student signs up and verifies ->
// order placed -> accepted -> ready -> completed -> daily stats.
func TestEndToEndOrderFlow(t *testing.T) {
	r, _, mailer := setupTestApp(t)

	// Admin login.
	w := doJSON(t, r, "POST", "/api/auth/admin/login", "", gin.H{
		"email": "staff@rishihood.edu.in", "password": "adminpass",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	adminToken := dataOf(t, w)["token"].(string)

	// Admin creates a menu item.
	w = doJSON(t, r, "POST", "/api/menu", adminToken, gin.H{
		"name":        "Masala Chai",
		"description": "Hot spiced tea",
		"price":       49,
		"category":    "Beverages",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	itemID := uint(dataOf(t, w)["id"].(float64))

	// Student signs up and verifies via OTP.
	w = doJSON(t, r, "POST", "/api/auth/signup", "", gin.H{
		"name":          "Asha",
		"enrollment_no": "EN-001",
		"email":         "asha@student.rishihood.edu.in",
		"password":      "secret123",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, "POST", "/api/auth/verify-otp", "", gin.H{
		"email": "asha@student.rishihood.edu.in",
		"otp":   mailer.lastOTP,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	userToken := dataOf(t, w)["token"].(string)

	// Student places an order for two chais.
	w = doJSON(t, r, "POST", "/api/orders", userToken, gin.H{
		"items": []gin.H{{"menu_item_id": itemID, "quantity": 2}},
		"notes": "less sugar",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	placed := dataOf(t, w)
	assert.Equal(t, 98.0, placed["total_price"])
	assert.Equal(t, "Pending", placed["status"])
	assert.Equal(t, false, placed["is_scheduled"])
	orderID := uint(placed["id"].(float64))

	// Student cannot reach admin endpoints.
	w = doJSON(t, r, "GET", "/api/orders?status=Pending", userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Admin sees the pending order.
	w = doJSON(t, r, "GET", "/api/orders?status=Pending", adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Admin accepts with a 15 minute prep window.
	w = doJSON(t, r, "PATCH", fmt.Sprintf("/api/orders/%d/accept", orderID), adminToken, gin.H{
		"prep_minutes": 15,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Accepted", dataOf(t, w)["status"])
	assert.NotEmpty(t, dataOf(t, w)["pickup_time"])

	// Accepting twice fails: the precondition is status Pending.
	w = doJSON(t, r, "PATCH", fmt.Sprintf("/api/orders/%d/accept", orderID), adminToken, gin.H{
		"prep_minutes": 15,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Ready, then completed.
	w = doJSON(t, r, "PATCH", fmt.Sprintf("/api/orders/%d/status", orderID), adminToken, gin.H{
		"status": "Ready",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, "PATCH", fmt.Sprintf("/api/orders/%d/status", orderID), adminToken, gin.H{
		"status": "Completed",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, dataOf(t, w)["completed_at"])

	// Today's stats reflect the completed order.
	w = doJSON(t, r, "GET", "/api/orders/stats/daily", adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	stats := dataOf(t, w)
	assert.Equal(t, 98.0, stats["total_sales"])
	assert.Equal(t, 1.0, stats["order_count"])

	// The student sees it under my-orders.
	w = doJSON(t, r, "GET", "/api/orders/my-orders", userToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// A completed order cannot be cancelled.
	w = doJSON(t, r, "POST", fmt.Sprintf("/api/orders/%d/cancel", orderID), userToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCancelPendingOrder(t *testing.T) {
	r, db, mailer := setupTestApp(t)

	db.Create(&models.MenuItem{
		Name: "Samosa", Description: "Crispy", Price: 20,
		Category: models.CategorySnacks, ImageURL: models.DefaultMenuImageURL, IsAvailable: true,
	})

	doJSON(t, r, "POST", "/api/auth/signup", "", gin.H{
		"name": "Ravi", "enrollment_no": "EN-002",
		"email": "ravi@student.rishihood.edu.in", "password": "secret123",
	})
	w := doJSON(t, r, "POST", "/api/auth/verify-otp", "", gin.H{
		"email": "ravi@student.rishihood.edu.in", "otp": mailer.lastOTP,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	token := dataOf(t, w)["token"].(string)

	w = doJSON(t, r, "POST", "/api/orders", token, gin.H{
		"items": []gin.H{{"menu_item_id": 1, "quantity": 1}},
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	orderID := uint(dataOf(t, w)["id"].(float64))

	w = doJSON(t, r, "POST", fmt.Sprintf("/api/orders/%d/cancel", orderID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Cancelled", dataOf(t, w)["status"])
}
