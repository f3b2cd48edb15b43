package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/site-engineer-app/middlewares"
	"github.com/yeremiapane/site-engineer-app/models"
	"github.com/yeremiapane/site-engineer-app/services"
	"github.com/yeremiapane/site-engineer-app/utils"
)

type UserController struct {
	Auth         *services.AuthService
	Scope        *services.ScopeService
	Directory    *services.DirectoryService
	SecureCookie bool
}

func NewUserController(auth *services.AuthService, scope *services.ScopeService, directory *services.DirectoryService, secureCookie bool) *UserController {
	return &UserController{Auth: auth, Scope: scope, Directory: directory, SecureCookie: secureCookie}
}

// Login -> session token in the body and in an HttpOnly cookie
func (uc *UserController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if !bindJSON(c, &input) {
		return
	}

	res, err := uc.Auth.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	maxAge := int(time.Until(res.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middlewares.SessionCookieName, res.Token, maxAge, "/", "", uc.SecureCookie, true)

	utils.RespondJSON(c, http.StatusOK, "Login successful", res)
}

func (uc *UserController) Logout(c *gin.Context) {
	if err := uc.Auth.Logout(c.Request.Context(), middlewares.SessionToken(c)); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middlewares.SessionCookieName, "", -1, "/", "", uc.SecureCookie, true)
	utils.RespondJSON(c, http.StatusOK, "Logged out", nil)
}

// Me -> the profile behind the current session
func (uc *UserController) Me(c *gin.Context) {
	caller, ok := callerOf(c)
	if !ok {
		return
	}
	p, err := uc.Scope.GetProfile(c.Request.Context(), caller, caller.ProfileID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Current user", p)
}

func (uc *UserController) ListProfiles(c *gin.Context) {
	caller, ok := callerOf(c)
	if !ok {
		return
	}
	var role *models.Role
	if raw := c.Query("role"); raw != "" {
		r, valid := models.ParseRole(raw)
		if !valid {
			utils.RespondAppError(c, utils.ErrValidation("unknown role %q", raw))
			return
		}
		role = &r
	}

	profiles, err := uc.Scope.ListProfiles(c.Request.Context(), caller, role)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of profiles", profiles)
}

func (uc *UserController) GetProfile(c *gin.Context) {
	caller, ok := callerOf(c)
	if !ok {
		return
	}
	p, err := uc.Scope.GetProfile(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Profile", p)
}

type profileRequest struct {
	Email       string  `json:"email" binding:"required"`
	FullName    string  `json:"fullName" binding:"required"`
	Role        string  `json:"role"`
	Password    string  `json:"password" binding:"required"`
	Phone       *string `json:"phone"`
	Designation *string `json:"designation"`
	ClientID    *string `json:"clientId"`
}

func (r profileRequest) input() services.ProfileInput {
	return services.ProfileInput{
		Email:       r.Email,
		FullName:    r.FullName,
		Role:        r.Role,
		Password:    r.Password,
		Phone:       r.Phone,
		Designation: r.Designation,
		ClientID:    r.ClientID,
	}
}

func (uc *UserController) CreateProfile(c *gin.Context) {
	uc.createProfile(c, "")
}

// CreateEngineer is CreateProfile with the role fixed to engineer.
func (uc *UserController) CreateEngineer(c *gin.Context) {
	uc.createProfile(c, models.RoleEngineer)
}

func (uc *UserController) createProfile(c *gin.Context, role models.Role) {
	caller, ok := callerOf(c)
	if !ok {
		return
	}
	var req profileRequest
	if !bindJSON(c, &req) {
		return
	}
	in := req.input()
	if role != "" {
		in.Role = string(role)
	}

	p, err := uc.Directory.CreateProfile(c.Request.Context(), caller, in)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Profile created", p)
}

func (uc *UserController) UpdateProfile(c *gin.Context) {
	caller, ok := callerOf(c)
	if !ok {
		return
	}
	var req struct {
		FullName    *string `json:"fullName"`
		Phone       *string `json:"phone"`
		Designation *string `json:"designation"`
	}
	if !bindJSON(c, &req) {
		return
	}

	p, err := uc.Directory.UpdateProfile(c.Request.Context(), caller, c.Param("id"), services.ProfilePatch{
		FullName:    req.FullName,
		Phone:       req.Phone,
		Designation: req.Designation,
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Profile updated", p)
}

func (uc *UserController) ListEngineers(c *gin.Context) {
	caller, ok := callerOf(c)
	if !ok {
		return
	}
	engineers, err := uc.Scope.ListEngineers(c.Request.Context(), caller)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of engineers", engineers)
}
