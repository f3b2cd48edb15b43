package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/site-engineer-app/services"
	"github.com/yeremiapane/site-engineer-app/utils"
)

type CheckInController struct {
	Scope    *services.ScopeService
	CheckIns *services.CheckInService
}

func NewCheckInController(scope *services.ScopeService, checkIns *services.CheckInService) *CheckInController {
	return &CheckInController{Scope: scope, CheckIns: checkIns}
}

func (cc *CheckInController) ListCheckIns(c *gin.Context) {
	caller, ok := callerOf(c)
	if !ok {
		return
	}
	q, err := listQuery(c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	rows, err := cc.Scope.ListCheckIns(c.Request.Context(), caller, q)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of check-ins", rows)
}

func (cc *CheckInController) GetCheckIn(c *gin.Context) {
	caller, ok := callerOf(c)
	if !ok {
		return
	}
	row, err := cc.Scope.GetCheckIn(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Check-in", row)
}

func (cc *CheckInController) CheckIn(c *gin.Context) {
	caller, ok := callerOf(c)
	if !ok {
		return
	}
	var req struct {
		Latitude     *float64 `json:"latitude"`
		Longitude    *float64 `json:"longitude"`
		LocationName *string  `json:"locationName"`
	}
	if !bindOptionalJSON(c, &req) {
		return
	}

	row, err := cc.CheckIns.CheckIn(c.Request.Context(), caller, services.CheckInInput{
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		LocationName: req.LocationName,
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Checked in", row)
}

func (cc *CheckInController) CheckOut(c *gin.Context) {
	caller, ok := callerOf(c)
	if !ok {
		return
	}
	row, err := cc.CheckIns.CheckOut(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Checked out", row)
}
