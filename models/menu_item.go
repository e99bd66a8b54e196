package models

import "time"

const (
	CategoryBeverages = "Beverages"
	CategorySnacks    = "Snacks"
	CategoryMeals     = "Meals"
	CategoryDesserts  = "Desserts"
	CategoryOther     = "Other"
)

// DefaultMenuImageURL is used when an item is created without an image.
const DefaultMenuImageURL = "https://images.unsplash.com/photo-1546069901-ba9599a7e63c?w=400"

// ValidCategory reports whether c is one of the known menu categories.
func ValidCategory(c string) bool {
	switch c {
	case CategoryBeverages, CategorySnacks, CategoryMeals, CategoryDesserts, CategoryOther:
		return true
	}
	return false
}

type MenuItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Price       float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	Category    string    `gorm:"type:varchar(20);not null;index" json:"category"`
	ImageURL    string    `gorm:"type:varchar(255);not null" json:"image_url"`
	IsAvailable bool      `gorm:"not null;default:true;index" json:"is_available"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}
