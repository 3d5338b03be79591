// internal/handlers/common.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/rights-backend/internal/i18n"
	"github.com/javajoker/rights-backend/internal/services"
	"github.com/javajoker/rights-backend/internal/utils"
)

// respondError maps service errors onto the API's status codes. notFoundKey
// is the translation used for ErrNotFound.
func respondError(c *gin.Context, err error, notFoundKey string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.ValidationErrorResponse(c, verr.Fields)
	case errors.Is(err, services.ErrNotFound):
		utils.NotFoundResponse(c, notFoundKey)
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.UnauthorizedResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyAuthInvalidCredentials))
	case errors.Is(err, services.ErrTokenExpired):
		utils.UnauthorizedResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyAuthTokenExpired))
	case errors.Is(err, services.ErrForbidden):
		utils.ForbiddenResponse(c, err.Error())
	case errors.Is(err, services.ErrConflict), errors.Is(err, services.ErrInvalidTransition):
		utils.ConflictResponse(c, err.Error())
	case errors.Is(err, services.ErrDataIntegrity):
		utils.IntegrityViolationResponse(c, err.Error())
	case errors.Is(err, services.ErrPaymentsDisabled):
		utils.BadRequestResponse(c, err.Error(), nil)
	default:
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("Request failed")
		utils.InternalErrorResponse(c, "")
	}
}

// bindJSON decodes the body; a malformed body is answered with 400.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}
	return true
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, name), nil)
		return uuid.Nil, false
	}
	return id, true
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	idStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}
	return id, true
}

// actor identifies the caller for the audit trail.
func actor(c *gin.Context) services.Actor {
	a := services.Actor{IPAddress: c.ClientIP()}
	if idStr, ok := utils.GetUserIDFromContext(c); ok {
		if id, err := uuid.Parse(idStr); err == nil {
			a.UserID = &id
		}
	}
	return a
}

func messageResponse(c *gin.Context, key string) {
	utils.SuccessResponse(c, gin.H{"message": i18n.T(utils.GetLangFromContext(c), key)})
}
