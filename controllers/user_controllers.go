package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/global-bites/middlewares"
	"github.com/yeremiapane/global-bites/services"
	"github.com/yeremiapane/global-bites/utils"
)

type UserController struct {
	Auth *services.AuthService
}

func NewUserController(auth *services.AuthService) *UserController {
	return &UserController{Auth: auth}
}

// Login user -> return JWT
func (uc *UserController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if !bindJSON(c, &input) {
		return
	}

	result, err := uc.Auth.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Login successful", result)
}

// Logout -> revoke the current token
func (uc *UserController) Logout(c *gin.Context) {
	token, claims, ok := middlewares.ClaimsFromContext(c)
	if !ok {
		utils.RespondAppError(c, utils.NewUnauthorized("not logged in"))
		return
	}
	uc.Auth.Logout(token, claims)
	utils.RespondJSON(c, http.StatusOK, "Logged out", nil)
}

// Session -> the user behind the token
func (uc *UserController) Session(c *gin.Context) {
	user, err := uc.Auth.CurrentUser(c.Request.Context(), c.GetString(middlewares.ContextUserID))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Active session", user)
}

func (uc *UserController) UpdateProfile(c *gin.Context) {
	var input services.ProfileInput
	if !bindJSON(c, &input) {
		return
	}
	user, err := uc.Auth.UpdateProfile(c.Request.Context(), c.GetString(middlewares.ContextUserID), input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Profile updated", user)
}

// CreateUser -> admin only; new accounts default to the staff role
func (uc *UserController) CreateUser(c *gin.Context) {
	var input services.CreateUserInput
	if !bindJSON(c, &input) {
		return
	}
	user, err := uc.Auth.CreateUser(c.Request.Context(), input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "User registered", user)
}
