package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/site-engineer-app/services"
	"github.com/yeremiapane/site-engineer-app/utils"
)

// ClientController serves clients and their sites.
type ClientController struct {
	Scope     *services.ScopeService
	Directory *services.DirectoryService
}

func NewClientController(scope *services.ScopeService, directory *services.DirectoryService) *ClientController {
	return &ClientController{Scope: scope, Directory: directory}
}

func (cc *ClientController) ListClients(c *gin.Context) {
	caller, ok := callerOf(c)
	if !ok {
		return
	}
	clients, err := cc.Scope.ListClients(c.Request.Context(), caller)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of clients", clients)
}

func (cc *ClientController) GetClient(c *gin.Context) {
	caller, ok := callerOf(c)
	if !ok {
		return
	}
	client, err := cc.Scope.GetClient(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Client", client)
}

func (cc *ClientController) CreateClient(c *gin.Context) {
	caller, ok := callerOf(c)
	if !ok {
		return
	}
	var req struct {
		Name          string  `json:"name" binding:"required"`
		ContactPerson string  `json:"contactPerson"`
		ContactEmail  string  `json:"contactEmail"`
		ProfileID     *string `json:"profileId"`
	}
	if !bindJSON(c, &req) {
		return
	}

	client, err := cc.Directory.CreateClient(c.Request.Context(), caller, services.ClientInput{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		ContactEmail:  req.ContactEmail,
		ProfileID:     req.ProfileID,
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Client created", client)
}

func (cc *ClientController) UpdateClient(c *gin.Context) {
	caller, ok := callerOf(c)
	if !ok {
		return
	}
	var req struct {
		Name          *string `json:"name"`
		ContactPerson *string `json:"contactPerson"`
		ContactEmail  *string `json:"contactEmail"`
		ProfileID     *string `json:"profileId"`
	}
	if !bindJSON(c, &req) {
		return
	}

	client, err := cc.Directory.UpdateClient(c.Request.Context(), caller, c.Param("id"), services.ClientPatch{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		ContactEmail:  req.ContactEmail,
		ProfileID:     req.ProfileID,
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Client updated", client)
}

func (cc *ClientController) ListSites(c *gin.Context) {
	caller, ok := callerOf(c)
	if !ok {
		return
	}
	sites, err := cc.Scope.ListSites(c.Request.Context(), caller, c.Query("client_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of sites", sites)
}

func (cc *ClientController) GetSite(c *gin.Context) {
	caller, ok := callerOf(c)
	if !ok {
		return
	}
	site, err := cc.Scope.GetSite(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Site", site)
}

func (cc *ClientController) CreateSite(c *gin.Context) {
	caller, ok := callerOf(c)
	if !ok {
		return
	}
	var req struct {
		ClientID string `json:"clientId" binding:"required"`
		Name     string `json:"name" binding:"required"`
		Location string `json:"location"`
	}
	if !bindJSON(c, &req) {
		return
	}

	site, err := cc.Directory.CreateSite(c.Request.Context(), caller, services.SiteInput{
		ClientID: req.ClientID,
		Name:     req.Name,
		Location: req.Location,
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Site created", site)
}
