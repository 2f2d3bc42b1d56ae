package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Delyplott/DelyPlot-Web/internal/middleware"
	"github.com/Delyplott/DelyPlot-Web/internal/models"
)

type AuthHandler struct {
	secret string
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewAuthHandler(secret string, logger *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{secret: secret, logger: logger, now: time.Now}
}

// SignInAnonymously godoc
// @Summary     Anonymous sign-in
// @Description Creates a fresh anonymous identity and returns a bearer token for it
// @Tags        auth
// @Produce     json
// @Success     200 {object} models.AuthResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /auth/anonymous [post]
func (h *AuthHandler) SignInAnonymously(c *gin.Context) {
	uid := uuid.NewString()
	token, err := middleware.IssueToken(h.secret, uid, h.now())
	if err != nil {
		h.logger.Errorw("failed to issue token", "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{UID: uid, Token: token})
}
