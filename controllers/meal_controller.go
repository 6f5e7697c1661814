package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/abhishek02004/MAD-Project/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type MealController struct {
	Meals *services.MealService
	RT    *services.RealtimeHub
}

func NewMealController(meals *services.MealService, rt *services.RealtimeHub) *MealController {
	return &MealController{Meals: meals, RT: rt}
}

func (mc *MealController) CreateMeal(c *gin.Context) {
	var input services.MealInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	userID := c.GetUint("userID")
	meal, err := mc.Meals.AddMeal(userID, input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	mc.RT.BroadcastMealEvent(userID, services.MealEvent{Event: "created", Meal: meal})
	c.JSON(http.StatusCreated, meal)
}

func (mc *MealController) ListMeals(c *gin.Context) {
	userID := c.GetUint("userID")
	meals, err := mc.Meals.ListMeals(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, meals)
}

func (mc *MealController) MealsByDate(c *gin.Context) {
	day, err := time.Parse("2006-01-02", c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid date format. Use YYYY-MM-DD"})
		return
	}

	userID := c.GetUint("userID")
	meals, err := mc.Meals.ListMealsByDate(userID, day)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, meals)
}

func (mc *MealController) UpdateMeal(c *gin.Context) {
	var input services.MealUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	meal, err := mc.Meals.GetMeal(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Meal not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	userID := c.GetUint("userID")
	if meal.UserID != userID {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
		return
	}

	updated, err := mc.Meals.UpdateMeal(meal, input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	mc.RT.BroadcastMealEvent(userID, services.MealEvent{Event: "updated", Meal: updated})
	c.JSON(http.StatusOK, updated)
}

func (mc *MealController) DeleteMeal(c *gin.Context) {
	meal, err := mc.Meals.GetMeal(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Meal not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	userID := c.GetUint("userID")
	if meal.UserID != userID {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
		return
	}

	if err := mc.Meals.DeleteMeal(meal.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	mc.RT.BroadcastMealEvent(userID, services.MealEvent{Event: "deleted", MealID: meal.ID})
	c.JSON(http.StatusOK, gin.H{"message": "Meal removed"})
}
