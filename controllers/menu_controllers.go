package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/chaiadda/backend/models"
	"github.com/chaiadda/backend/utils"
)

type MenuController struct {
	DB *gorm.DB
}

func NewMenuController(db *gorm.DB) *MenuController {
	return &MenuController{DB: db}
}

// GetAllMenuItems -> every item, available or not (admin menu management).
func (mc *MenuController) GetAllMenuItems(c *gin.Context) {
	var items []models.MenuItem
	if err := mc.DB.Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu items", items)
}

// GetAvailableMenuItems -> what students can order right now, with an
// optional name search.
func (mc *MenuController) GetAvailableMenuItems(c *gin.Context) {
	q := mc.DB.Where("is_available = ?", true)
	if search := c.Query("search"); search != "" {
		q = q.Where("name LIKE ?", "%"+search+"%")
	}

	var items []models.MenuItem
	if err := q.Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Available menu items", items)
}

// GetMenuItem -> detail of one item.
func (mc *MenuController) GetMenuItem(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("item_id"))

	var item models.MenuItem
	if err := mc.DB.First(&item, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("menu item not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item detail", item)
}

// CreateMenuItem -> admin adds a sellable item.
func (mc *MenuController) CreateMenuItem(c *gin.Context) {
	type request struct {
		Name        string  `json:"name" binding:"required"`
		Description string  `json:"description" binding:"required"`
		Price       float64 `json:"price"`
		Category    string  `json:"category" binding:"required"`
		ImageURL    string  `json:"image_url"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Price < 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("price must not be negative"))
		return
	}
	if !models.ValidCategory(req.Category) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid category"))
		return
	}
	if req.ImageURL == "" {
		req.ImageURL = models.DefaultMenuImageURL
	}

	item := models.MenuItem{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		IsAvailable: true,
	}
	if err := mc.DB.Create(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Menu item created", item)
}

// UpdateMenuItem -> admin edits fields; omitted fields keep their value.
func (mc *MenuController) UpdateMenuItem(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("item_id"))

	var item models.MenuItem
	if err := mc.DB.First(&item, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("menu item not found"))
		return
	}

	type request struct {
		Name        *string  `json:"name"`
		Description *string  `json:"description"`
		Price       *float64 `json:"price"`
		Category    *string  `json:"category"`
		ImageURL    *string  `json:"image_url"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("price must not be negative"))
			return
		}
		item.Price = *req.Price
	}
	if req.Category != nil {
		if !models.ValidCategory(*req.Category) {
			utils.RespondError(c, http.StatusBadRequest, errors.New("invalid category"))
			return
		}
		item.Category = *req.Category
	}
	if req.ImageURL != nil {
		item.ImageURL = *req.ImageURL
	}

	if err := mc.DB.Save(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item updated", item)
}

// ToggleAvailability -> admin flips whether the item can be ordered.
func (mc *MenuController) ToggleAvailability(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("item_id"))

	var item models.MenuItem
	if err := mc.DB.First(&item, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("menu item not found"))
		return
	}

	item.IsAvailable = !item.IsAvailable
	if err := mc.DB.Save(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item availability updated", item)
}

// DeleteMenuItem -> admin removes an item; no history kept.
func (mc *MenuController) DeleteMenuItem(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("item_id"))

	var item models.MenuItem
	if err := mc.DB.First(&item, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("menu item not found"))
		return
	}

	if err := mc.DB.Delete(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item removed", gin.H{"item_id": item.ID})
}
