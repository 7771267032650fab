package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclub/bulletin/internal/config"
	"github.com/openclub/bulletin/internal/stats"
)

func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	cfg.Admin.User = "管理员"
	cfg.Admin.Password = "adminpass"
	r := gin.New()
	NewAuthHandler(cfg, stats.NewLog(t.TempDir())).Register(r.Group("/"))
	return r
}

func postLogin(t *testing.T, r *gin.Engine, body string) (int, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestLogin_PlainUser(t *testing.T) {
	r := newAuthRouter(t)
	code, resp := postLogin(t, r, `{"name":"张三"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "user", resp["role"])
}

func TestLogin_AdminPassword(t *testing.T) {
	r := newAuthRouter(t)

	// wrong password is reported, not an HTTP error
	code, resp := postLogin(t, r, `{"name":"管理员","password":"nope"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, resp["success"])

	code, resp = postLogin(t, r, `{"name":"管理员","password":"adminpass"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "admin", resp["role"])
}

func TestLogin_RejectsNonHanNames(t *testing.T) {
	r := newAuthRouter(t)
	for _, name := range []string{"bob", "张", "", "张three"} {
		_, resp := postLogin(t, r, `{"name":"`+name+`"}`)
		assert.Equal(t, false, resp["success"], "name %q should be rejected", name)
	}
}
