package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/site-engineer-app/services"
	"github.com/yeremiapane/site-engineer-app/utils"
)

type AssignmentController struct {
	Scope     *services.ScopeService
	Directory *services.DirectoryService
}

func NewAssignmentController(scope *services.ScopeService, directory *services.DirectoryService) *AssignmentController {
	return &AssignmentController{Scope: scope, Directory: directory}
}

func (ac *AssignmentController) ListAssignments(c *gin.Context) {
	caller, ok := callerOf(c)
	if !ok {
		return
	}
	q, err := listQuery(c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	rows, err := ac.Scope.ListAssignments(c.Request.Context(), caller, q)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of assignments", rows)
}

func (ac *AssignmentController) CreateAssignment(c *gin.Context) {
	caller, ok := callerOf(c)
	if !ok {
		return
	}
	var req struct {
		EngineerID   string  `json:"engineerId" binding:"required"`
		ClientID     string  `json:"clientId" binding:"required"`
		SiteID       *string `json:"siteId"`
		AssignedDate string  `json:"assignedDate"`
		Active       *bool   `json:"active"`
	}
	if !bindJSON(c, &req) {
		return
	}

	a, err := ac.Directory.CreateAssignment(c.Request.Context(), caller, services.AssignmentInput{
		EngineerID:   req.EngineerID,
		ClientID:     req.ClientID,
		SiteID:       req.SiteID,
		AssignedDate: req.AssignedDate,
		Active:       req.Active,
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Assignment created", a)
}

func (ac *AssignmentController) UpdateAssignment(c *gin.Context) {
	caller, ok := callerOf(c)
	if !ok {
		return
	}
	var req struct {
		Active *bool   `json:"active"`
		SiteID *string `json:"siteId"`
	}
	if !bindJSON(c, &req) {
		return
	}

	a, err := ac.Directory.UpdateAssignment(c.Request.Context(), caller, c.Param("id"), services.AssignmentPatch{
		Active: req.Active,
		SiteID: req.SiteID,
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Assignment updated", a)
}
