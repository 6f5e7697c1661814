package services

import (
	"time"

	"github.com/abhishek02004/MAD-Project/models"

	"gorm.io/gorm"
)

type MealService struct {
	db *gorm.DB
}

func NewMealService(db *gorm.DB) *MealService {
	return &MealService{db: db}
}

// MealInput is the create-request body.
type MealInput struct {
	Name        string    `json:"name" binding:"required"`
	Category    string    `json:"category" binding:"required,oneof=Breakfast Lunch Dinner Snack"`
	Calories    float64   `json:"calories" binding:"gte=0"`
	Protein     float64   `json:"protein" binding:"gte=0"`
	Carbs       float64   `json:"carbs" binding:"gte=0"`
	Fat         float64   `json:"fat" binding:"gte=0"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
}

// MealUpdate carries a partial update; nil fields are left untouched.
type MealUpdate struct {
	Name        *string    `json:"name"`
	Category    *string    `json:"category" binding:"omitempty,oneof=Breakfast Lunch Dinner Snack"`
	Calories    *float64   `json:"calories" binding:"omitempty,gte=0"`
	Protein     *float64   `json:"protein" binding:"omitempty,gte=0"`
	Carbs       *float64   `json:"carbs" binding:"omitempty,gte=0"`
	Fat         *float64   `json:"fat" binding:"omitempty,gte=0"`
	Date        *time.Time `json:"date"`
	Description *string    `json:"description"`
}

func (s *MealService) AddMeal(userID uint, in MealInput) (*models.Meal, error) {
	meal := &models.Meal{
		UserID:      userID,
		Name:        in.Name,
		Category:    in.Category,
		Calories:    in.Calories,
		Protein:     in.Protein,
		Carbs:       in.Carbs,
		Fat:         in.Fat,
		Date:        in.Date,
		Description: in.Description,
	}
	if err := s.db.Create(meal).Error; err != nil {
		return nil, err
	}
	return meal, nil
}

func (s *MealService) ListMeals(userID uint) ([]models.Meal, error) {
	var meals []models.Meal
	err := s.db.
		Where("user_id = ?", userID).
		Order("date DESC").
		Find(&meals).Error
	return meals, err
}

// ListMealsByDate returns the meals logged on the calendar day starting at
// day, oldest first.
func (s *MealService) ListMealsByDate(userID uint, day time.Time) ([]models.Meal, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	var meals []models.Meal
	err := s.db.
		Where("user_id = ? AND date >= ? AND date < ?", userID, start, end).
		Order("date ASC").
		Find(&meals).Error
	return meals, err
}

// GetMeal loads by id alone; ownership is the controller's call so that a
// missing record and a foreign record produce different statuses.
func (s *MealService) GetMeal(mealID string) (*models.Meal, error) {
	var meal models.Meal
	if err := s.db.First(&meal, "id = ?", mealID).Error; err != nil {
		return nil, err
	}
	return &meal, nil
}

func (s *MealService) UpdateMeal(meal *models.Meal, in MealUpdate) (*models.Meal, error) {
	if in.Name != nil {
		meal.Name = *in.Name
	}
	if in.Category != nil {
		meal.Category = *in.Category
	}
	if in.Calories != nil {
		meal.Calories = *in.Calories
	}
	if in.Protein != nil {
		meal.Protein = *in.Protein
	}
	if in.Carbs != nil {
		meal.Carbs = *in.Carbs
	}
	if in.Fat != nil {
		meal.Fat = *in.Fat
	}
	if in.Date != nil {
		meal.Date = *in.Date
	}
	if in.Description != nil {
		meal.Description = *in.Description
	}

	if err := s.db.Save(meal).Error; err != nil {
		return nil, err
	}
	return meal, nil
}

func (s *MealService) DeleteMeal(mealID string) error {
	return s.db.Delete(&models.Meal{}, "id = ?", mealID).Error
}
