package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cineflex-backend/internal/models"
	"cineflex-backend/internal/persist"
)

// CharactersHandler is the narrow accessor used by the character board; it
// follows the same persist-then-upsert pattern as the full document save,
// scoped to one collection.
type CharactersHandler struct {
	service *persist.Service
}

func NewCharactersHandler(service *persist.Service) *CharactersHandler {
	return &CharactersHandler{service: service}
}

func (h *CharactersHandler) GetCharacters(c *gin.Context) {
	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}

	characters, err := h.service.GetCharacters(projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to load characters",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, models.CharactersResponse{Characters: characters})
}

func (h *CharactersHandler) SaveCharacters(c *gin.Context) {
	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}

	var req models.SaveCharactersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid characters payload",
			Message: err.Error(),
		})
		return
	}

	if err := h.service.SaveCharacters(projectID, req.Characters); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to save characters",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, models.SaveResponse{ProjectID: projectID, Status: "saved"})
}
