package main

import (
	"os"

	"github.com/abhishek02004/MAD-Project/config"
	"github.com/abhishek02004/MAD-Project/routes"
)

func main() {
	config.InitDB()
	r := routes.SetupRouter()

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}
	r.Run(":" + port)
}
