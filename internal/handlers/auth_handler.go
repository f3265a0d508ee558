package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"totestore/internal/auth"
	"totestore/internal/models"
)

const (
	sessionUserID  = "user_id"
	currentUserKey = "currentUser"
)

type AuthHandler struct {
	auth *auth.Service
	log  zerolog.Logger
}

func NewAuthHandler(svc *auth.Service, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{auth: svc, log: log}
}

// Login exchanges credentials for the user's API token and also starts a
// cookie session.
func (h *AuthHandler) Login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		respondError(c, h.log, bindError(err))
		return
	}

	u, tok, err := h.auth.Login(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	sess := sessions.Default(c)
	sess.Set(sessionUserID, u.ID)
	if err := sess.Save(); err != nil {
		h.log.Warn().Err(err).Uint("user_id", u.ID).Msg("failed to save session")
	}
	h.log.Info().Uint("user_id", u.ID).Msg("user logged in")

	c.JSON(http.StatusOK, LoginResponse{Token: tok.Key, UserID: u.ID, Email: u.Email})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	_ = sess.Save()
	c.Status(http.StatusNoContent)
}

// currentUser returns the user mustStaff authenticated, or nil on public routes.
func currentUser(c *gin.Context) *models.User {
	v, _ := c.Get(currentUserKey)
	u, _ := v.(*models.User)
	return u
}

// mustStaff lets a request through when it carries "Authorization: Token <key>"
// or a login session of a staff or admin user.
func mustStaff(svc *auth.Service, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var u *models.User
		if header := c.GetHeader("Authorization"); header != "" {
			scheme, key, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "Token") || strings.TrimSpace(key) == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token header"})
				return
			}
			var err error
			u, err = svc.UserForToken(ctx, strings.TrimSpace(key))
			if errors.Is(err, auth.ErrInvalidToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
			if err != nil {
				log.Error().Err(err).Msg("token lookup failed")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
				return
			}
		} else {
			id, _ := sessions.Default(c).Get(sessionUserID).(uint)
			if id == 0 {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication credentials were not provided"})
				return
			}
			var err error
			if u, err = svc.User(ctx, id); err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication credentials were not provided"})
				return
			}
		}

		if !u.Role.CanManageCatalog() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "you do not have permission to perform this action"})
			return
		}
		c.Set(currentUserKey, u)
		c.Next()
	}
}
