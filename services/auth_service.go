package services

import (
	"errors"

	"github.com/abhishek02004/MAD-Project/config"
	"github.com/abhishek02004/MAD-Project/models"
	"github.com/abhishek02004/MAD-Project/utils"
)

// RegisterUser creates the account and issues a session token in one step so
// a fresh registration is immediately logged in.
func RegisterUser(name, email, password string) (*models.User, string, error) {
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	user := models.User{
		Name:     name,
		Email:    email,
		Password: hashedPassword,
	}

	if err := config.DB.Create(&user).Error; err != nil {
		return nil, "", errors.New("email already registered")
	}

	token, err := utils.GenerateJWT(user.Email)
	if err != nil {
		return nil, "", err
	}

	return &user, token, nil
}

func AuthenticateUser(email, password string) (*models.User, string, error) {
	var user models.User
	result := config.DB.Where("email = ?", email).First(&user)
	if result.Error != nil {
		return nil, "", errors.New("Invalid email or password")
	}

	if !utils.CheckPasswordHash(password, user.Password) {
		return nil, "", errors.New("Invalid email or password")
	}

	token, err := utils.GenerateJWT(user.Email)
	if err != nil {
		return nil, "", err
	}

	return &user, token, nil
}

func FindUserByEmail(email string) (*models.User, error) {
	var user models.User
	result := config.DB.Where("email = ?", email).First(&user)
	if result.Error != nil {
		return nil, errors.New("user not found")
	}
	return &user, nil
}
