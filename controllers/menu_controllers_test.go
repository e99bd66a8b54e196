package controllers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/chaiadda/backend/controllers"
	"github.com/chaiadda/backend/models"
)

func setupMenuTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.MenuItem{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	menuCtrl := controllers.NewMenuController(db)

	r := gin.New()
	r.POST("/api/menu", menuCtrl.CreateMenuItem)
	r.PATCH("/api/menu/:item_id/availability", menuCtrl.ToggleAvailability)
	return r, db
}

func doRequest(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateMenuItemValidatesCategory(t *testing.T) {
	r, _ := setupMenuTest(t)

	w := postJSON(t, r, "/api/menu", gin.H{
		"name":        "Mystery Dish",
		"description": "???",
		"price":       10,
		"category":    "Experimental",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateMenuItemDefaultsImage(t *testing.T) {
	r, db := setupMenuTest(t)

	w := postJSON(t, r, "/api/menu", gin.H{
		"name":        "Masala Chai",
		"description": "Hot spiced tea",
		"price":       49,
		"category":    "Beverages",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var item models.MenuItem
	assert.NoError(t, db.First(&item).Error)
	assert.Equal(t, models.DefaultMenuImageURL, item.ImageURL)
	assert.True(t, item.IsAvailable)
}

func TestToggleAvailability(t *testing.T) {
	r, db := setupMenuTest(t)

	db.Create(&models.MenuItem{
		Name: "Samosa", Description: "Crispy", Price: 20,
		Category: models.CategorySnacks, ImageURL: models.DefaultMenuImageURL, IsAvailable: true,
	})

	req, _ := http.NewRequest("PATCH", "/api/menu/1/availability", nil)
	w := doRequest(r, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var item models.MenuItem
	assert.NoError(t, db.First(&item, 1).Error)
	assert.False(t, item.IsAvailable)
}
