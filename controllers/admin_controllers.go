package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/site-engineer-app/services"
	"github.com/yeremiapane/site-engineer-app/utils"
)

// AdminController serves the dashboard counters and the company profile.
type AdminController struct {
	Dashboard *services.DashboardService
	Directory *services.DirectoryService
}

func NewAdminController(dashboard *services.DashboardService, directory *services.DirectoryService) *AdminController {
	return &AdminController{Dashboard: dashboard, Directory: directory}
}

// GetDashboardStats -> counters scoped to the caller's role
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	caller, ok := callerOf(c)
	if !ok {
		return
	}
	stats, err := ac.Dashboard.Stats(c.Request.Context(), caller)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dashboard statistics", stats)
}

func (ac *AdminController) GetCompanyProfile(c *gin.Context) {
	cp, err := ac.Directory.GetCompanyProfile(c.Request.Context())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Company profile", cp)
}

func (ac *AdminController) SaveCompanyProfile(c *gin.Context) {
	caller, ok := callerOf(c)
	if !ok {
		return
	}
	var req struct {
		Name    string `json:"name" binding:"required"`
		Address string `json:"address"`
		Phone   string `json:"phone"`
		Email   string `json:"email"`
		Website string `json:"website"`
		LogoURL string `json:"logoUrl"`
	}
	if !bindJSON(c, &req) {
		return
	}

	cp, err := ac.Directory.SaveCompanyProfile(c.Request.Context(), caller, services.CompanyProfileInput{
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
		Email:   req.Email,
		Website: req.Website,
		LogoURL: req.LogoURL,
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Company profile saved", cp)
}
