package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cineflex-backend/internal/models"
	"cineflex-backend/internal/persist"
)

type ProjectsHandler struct {
	service   *persist.Service
	scheduler *persist.Scheduler
}

func NewProjectsHandler(service *persist.Service, scheduler *persist.Scheduler) *ProjectsHandler {
	return &ProjectsHandler{
		service:   service,
		scheduler: scheduler,
	}
}

// GetProject returns the persisted project document in application key form.
func (h *ProjectsHandler) GetProject(c *gin.Context) {
	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}

	doc, found, err := h.service.GetProjectData(projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to load project",
			Message: err.Error(),
		})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "project not found"})
		return
	}

	c.JSON(http.StatusOK, doc)
}

// SaveProject schedules a coalesced save of the submitted document. The save
// is optimistic: the response reports acceptance, persistence failures are
// observable through logs only.
func (h *ProjectsHandler) SaveProject(c *gin.Context) {
	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}

	var doc models.ProjectDocument
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid project document",
			Message: err.Error(),
		})
		return
	}

	h.scheduler.ScheduleSave(projectID, &doc)
	c.JSON(http.StatusAccepted, models.SaveResponse{ProjectID: projectID, Status: "scheduled"})
}

// SaveProjectNow bypasses the quiescence window. Used by the client on
// navigation-away so the last edit is not lost.
func (h *ProjectsHandler) SaveProjectNow(c *gin.Context) {
	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}

	var doc models.ProjectDocument
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid project document",
			Message: err.Error(),
		})
		return
	}

	if err := h.scheduler.SaveNow(projectID, &doc); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to save project",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, models.SaveResponse{ProjectID: projectID, Status: "saved"})
}

// ListAssets returns every stored blob under the project's namespace.
func (h *ProjectsHandler) ListAssets(c *gin.Context) {
	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}

	assets, err := h.service.ListAssets(projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list assets",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, models.AssetsResponse{Assets: assets})
}

// DeleteProject removes the project's rows and purges its blob namespace.
func (h *ProjectsHandler) DeleteProject(c *gin.Context) {
	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}

	if err := h.service.DeleteProject(projectID); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to delete project",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "project deleted successfully"})
}

func projectIDParam(c *gin.Context) (string, bool) {
	projectID := c.Param("project_id")
	if _, err := uuid.Parse(projectID); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid project id"})
		return "", false
	}
	return projectID, true
}
