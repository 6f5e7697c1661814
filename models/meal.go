package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Meal is one logged food entry. Identifiers are UUID strings assigned on
// create so clients never have to care whether a record came from this
// server or was generated locally while offline.
type Meal struct {
	ID          string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID      uint      `json:"-" gorm:"index;not null"`
	Name        string    `json:"name" gorm:"not null"`
	Category    string    `json:"category" gorm:"not null"` // Breakfast|Lunch|Dinner|Snack
	Calories    float64   `json:"calories"`
	Protein     float64   `json:"protein"`
	Carbs       float64   `json:"carbs"`
	Fat         float64   `json:"fat"`
	Date        time.Time `json:"date" gorm:"index"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

func (m *Meal) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Date.IsZero() {
		m.Date = time.Now()
	}
	return nil
}
