package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/global-bites/services"
	"github.com/yeremiapane/global-bites/utils"
)

type AIController struct {
	AI *services.AIService
}

func NewAIController(ai *services.AIService) *AIController {
	return &AIController{AI: ai}
}

// GenerateSuggestions -> draft description, tags and pairing for the dish editor
func (ac *AIController) GenerateSuggestions(c *gin.Context) {
	var req services.SuggestionRequest
	if !bindJSON(c, &req) {
		return
	}
	suggestion, err := ac.AI.GenerateDishSuggestions(c.Request.Context(), req)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Suggestions generated", suggestion)
}

func (ac *AIController) LogAction(c *gin.Context) {
	var req services.LogActionRequest
	if !bindJSON(c, &req) {
		return
	}
	entry, err := ac.AI.LogAction(c.Request.Context(), req)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "AI action logged", entry)
}

func (ac *AIController) Chat(c *gin.Context) {
	var req struct {
		Message string `json:"message"`
	}
	if !bindJSON(c, &req) {
		return
	}
	reply, err := ac.AI.Chat(c.Request.Context(), req.Message)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Chat reply", gin.H{"reply": reply})
}
