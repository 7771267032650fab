package handlers

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"

	"github.com/openclub/bulletin/internal/config"
	"github.com/openclub/bulletin/internal/stats"
	"github.com/openclub/bulletin/pkg/logger"
)

// names must be at least two Han characters, as every prior deployment
// required
var namePattern = regexp.MustCompile(`^\p{Han}{2,}$`)

// AuthHandler implements the login stub: a role answer backed by nothing but
// the shared admin password. No session, no token.
type AuthHandler struct {
	cfg     *config.Config
	statLog *stats.Log
}

func NewAuthHandler(cfg *config.Config, statLog *stats.Log) *AuthHandler {
	return &AuthHandler{cfg: cfg, statLog: statLog}
}

func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/login", h.Login)
}

type loginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "msg": err.Error()})
		return
	}
	if !namePattern.MatchString(req.Name) {
		c.JSON(http.StatusOK, gin.H{"success": false, "msg": "姓名须为中文且至少2个字"})
		return
	}

	role := "user"
	if req.Name == h.cfg.Admin.User {
		if req.Password != h.cfg.Admin.Password {
			// reported, not fatal: the previous deployment answered 200
			c.JSON(http.StatusOK, gin.H{"success": false, "msg": "管理员密码错误"})
			return
		}
		role = "admin"
	}

	if err := h.statLog.Append(c.Request.Context(), stats.Record{Type: stats.ActionLogin, User: req.Name}); err != nil {
		logger.Warnf("stat append: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "role": role})
}
