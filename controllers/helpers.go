package controllers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/site-engineer-app/middlewares"
	"github.com/yeremiapane/site-engineer-app/models"
	"github.com/yeremiapane/site-engineer-app/services"
	"github.com/yeremiapane/site-engineer-app/utils"
)

// bindJSON decodes the body into dst, answering 400 itself on failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.RespondAppError(c, utils.ErrValidation("invalid request body: %v", err))
		return false
	}
	return true
}

// bindOptionalJSON accepts an empty body.
func bindOptionalJSON(c *gin.Context, dst interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return bindJSON(c, dst)
}

// callerOf returns the authenticated caller. Routes using it sit behind
// SessionAuth, so a missing caller is a wiring bug.
func callerOf(c *gin.Context) (models.Caller, bool) {
	caller, ok := middlewares.CallerFrom(c)
	if !ok {
		utils.RespondAppError(c, utils.ErrUnauthenticated())
		return models.Caller{}, false
	}
	return caller, true
}

func queryBool(c *gin.Context, key string) (bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, utils.ErrValidation("%s must be true or false", key)
	}
	return v, nil
}

// listQuery reads the shared listing filters from the query string.
func listQuery(c *gin.Context) (services.ListQuery, error) {
	q := services.ListQuery{
		EngineerID: strings.TrimSpace(c.Query("engineer_id")),
		ClientID:   strings.TrimSpace(c.Query("client_id")),
		Date:       strings.TrimSpace(c.Query("date")),
		Status:     models.LeaveStatus(strings.ToLower(strings.TrimSpace(c.Query("status")))),
	}
	var err error
	if q.ActiveOnly, err = queryBool(c, "active"); err != nil {
		return q, err
	}
	if q.OpenOnly, err = queryBool(c, "open"); err != nil {
		return q, err
	}
	return q, q.Validate()
}
