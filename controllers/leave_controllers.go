package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/site-engineer-app/models"
	"github.com/yeremiapane/site-engineer-app/services"
	"github.com/yeremiapane/site-engineer-app/utils"
)

type LeaveController struct {
	Scope  *services.ScopeService
	Leaves *services.LeaveService
}

func NewLeaveController(scope *services.ScopeService, leaves *services.LeaveService) *LeaveController {
	return &LeaveController{Scope: scope, Leaves: leaves}
}

func (lc *LeaveController) ListLeaves(c *gin.Context) {
	caller, ok := callerOf(c)
	if !ok {
		return
	}
	q, err := listQuery(c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	rows, err := lc.Scope.ListLeaves(c.Request.Context(), caller, q)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of leave requests", rows)
}

func (lc *LeaveController) GetLeave(c *gin.Context) {
	caller, ok := callerOf(c)
	if !ok {
		return
	}
	row, err := lc.Scope.GetLeave(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Leave request", row)
}

func (lc *LeaveController) RequestLeave(c *gin.Context) {
	caller, ok := callerOf(c)
	if !ok {
		return
	}
	var req struct {
		EngineerID string `json:"engineerId"`
		LeaveType  string `json:"leaveType"`
		StartDate  string `json:"startDate" binding:"required"`
		EndDate    string `json:"endDate" binding:"required"`
		Reason     string `json:"reason"`
	}
	if !bindJSON(c, &req) {
		return
	}

	row, err := lc.Leaves.Request(c.Request.Context(), caller, services.LeaveInput{
		EngineerID: req.EngineerID,
		LeaveType:  models.LeaveType(req.LeaveType),
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Reason:     req.Reason,
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Leave request submitted", row)
}

func (lc *LeaveController) ApproveLeave(c *gin.Context) {
	caller, ok := callerOf(c)
	if !ok {
		return
	}
	var req struct {
		BackupEngineerID *string `json:"backupEngineerId"`
	}
	if !bindOptionalJSON(c, &req) {
		return
	}

	row, err := lc.Leaves.Approve(c.Request.Context(), caller, c.Param("id"), req.BackupEngineerID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Leave request approved", row)
}

func (lc *LeaveController) RejectLeave(c *gin.Context) {
	caller, ok := callerOf(c)
	if !ok {
		return
	}
	var req struct {
		Reason *string `json:"reason"`
	}
	if !bindOptionalJSON(c, &req) {
		return
	}

	row, err := lc.Leaves.Reject(c.Request.Context(), caller, c.Param("id"), req.Reason)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Leave request rejected", row)
}
