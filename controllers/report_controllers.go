package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/site-engineer-app/services"
	"github.com/yeremiapane/site-engineer-app/utils"
)

type ReportController struct {
	Scope   *services.ScopeService
	Reports *services.ReportService
}

func NewReportController(scope *services.ScopeService, reports *services.ReportService) *ReportController {
	return &ReportController{Scope: scope, Reports: reports}
}

func (rc *ReportController) ListReports(c *gin.Context) {
	caller, ok := callerOf(c)
	if !ok {
		return
	}
	q, err := listQuery(c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	reports, err := rc.Scope.ListReports(c.Request.Context(), caller, q)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of daily reports", reports)
}

func (rc *ReportController) GetReport(c *gin.Context) {
	caller, ok := callerOf(c)
	if !ok {
		return
	}
	report, err := rc.Scope.GetReport(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Daily report", report)
}

func (rc *ReportController) SubmitReport(c *gin.Context) {
	caller, ok := callerOf(c)
	if !ok {
		return
	}
	var req struct {
		ClientID   string  `json:"clientId" binding:"required"`
		SiteID     *string `json:"siteId"`
		WorkDone   string  `json:"workDone" binding:"required"`
		Issues     *string `json:"issues"`
		ReportDate string  `json:"reportDate"`
	}
	if !bindJSON(c, &req) {
		return
	}

	report, err := rc.Reports.Submit(c.Request.Context(), caller, services.ReportInput{
		ClientID:   req.ClientID,
		SiteID:     req.SiteID,
		WorkDone:   req.WorkDone,
		Issues:     req.Issues,
		ReportDate: req.ReportDate,
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Daily report submitted", report)
}

// ExportReports streams the visible reports as a CSV download.
func (rc *ReportController) ExportReports(c *gin.Context) {
	caller, ok := callerOf(c)
	if !ok {
		return
	}
	q, err := listQuery(c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	data, filename, err := rc.Reports.Export(c.Request.Context(), caller, q)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// SendReportEmail queues the report for delivery. The mail itself goes out
// in the background, so 202 only means it was accepted.
func (rc *ReportController) SendReportEmail(c *gin.Context) {
	caller, ok := callerOf(c)
	if !ok {
		return
	}
	var req struct {
		Recipients []string `json:"recipients"`
		Note       string   `json:"note"`
	}
	if !bindOptionalJSON(c, &req) {
		return
	}

	recipients, err := rc.Reports.SendEmail(c.Request.Context(), caller, c.Param("id"), services.SendReportInput{
		Recipients: req.Recipients,
		Note:       req.Note,
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusAccepted, "Report email queued", gin.H{"recipients": recipients})
}
