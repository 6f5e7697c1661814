package routes

import (
	"github.com/abhishek02004/MAD-Project/config"
	"github.com/abhishek02004/MAD-Project/controllers"
	"github.com/abhishek02004/MAD-Project/middlewares"
	"github.com/abhishek02004/MAD-Project/services"

	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	hub := services.NewRealtimeHub()
	mealCtl := controllers.NewMealController(services.NewMealService(config.DB), hub)
	rtCtl := controllers.NewRealtimeController(hub)

	// Public auth routes
	users := r.Group("/api/users")
	{
		users.POST("", controllers.Register)
		users.POST("/login", controllers.Login)
		users.POST("/forgot-password", controllers.ForgotPassword)
		users.POST("/reset-password", controllers.ResetPassword)
	}

	// Protected meal routes
	meals := r.Group("/api/meals")
	meals.Use(middlewares.AuthMiddleware())
	{
		meals.POST("", mealCtl.CreateMeal)
		meals.GET("", mealCtl.ListMeals)
		meals.GET("/date/:date", mealCtl.MealsByDate)
		meals.PUT("/:id", mealCtl.UpdateMeal)
		meals.DELETE("/:id", mealCtl.DeleteMeal)
		meals.GET("/ws", rtCtl.MealsWS)
	}

	return r
}
