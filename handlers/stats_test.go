package handlers

import (
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclub/bulletin/internal/stats"
)

func requestRaw(t *testing.T, e *testEnv, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	e.router.ServeHTTP(w, req)
	return w
}

func TestStatsMonth_ReturnsPublishedActions(t *testing.T) {
	e := newTestEnv(t)

	code, _ := e.do(t, http.MethodPost, "/news", `{"title":"标题","content":"正文","author":"张三"}`)
	require.Equal(t, http.StatusOK, code)

	period := stats.Period(time.Now().UTC())
	code, resp := e.do(t, http.MethodGet, "/stats/month?month="+period, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, resp["success"])
	records := resp["records"].([]interface{})
	require.Len(t, records, 1)
	rec := records[0].(map[string]interface{})
	assert.Equal(t, stats.ActionPublish, rec["type"])
	assert.Equal(t, "张三", rec["user"])
	assert.Equal(t, "标题", rec["title"])
}

func TestStatsMonth_DefaultsToCurrentPeriod(t *testing.T) {
	e := newTestEnv(t)

	code, _ := e.do(t, http.MethodPost, "/wish", `{"name":"李四","text":"愿望"}`)
	require.Equal(t, http.StatusOK, code)

	code, resp := e.do(t, http.MethodGet, "/stats/month", "")
	require.Equal(t, http.StatusOK, code)
	require.Len(t, resp["records"].([]interface{}), 1)
}

func TestStatsToday_FiltersToCurrentDay(t *testing.T) {
	e := newTestEnv(t)

	code, _ := e.do(t, http.MethodPost, "/news", `{"title":"今天","content":"c"}`)
	require.Equal(t, http.StatusOK, code)

	code, resp := e.do(t, http.MethodGet, "/stats/today", "")
	require.Equal(t, http.StatusOK, code)
	require.Len(t, resp["records"].([]interface{}), 1)
}

func TestStatsMonth_BadPeriod(t *testing.T) {
	e := newTestEnv(t)
	code, resp := e.do(t, http.MethodGet, "/stats/month?month=2026-1", "")
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, resp["success"])
}

func TestStatsExport_CSVAttachment(t *testing.T) {
	e := newTestEnv(t)

	code, _ := e.do(t, http.MethodPost, "/news", `{"title":"导出","content":"c"}`)
	require.Equal(t, http.StatusOK, code)

	w := requestRaw(t, e, "/stats/export")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")

	rows, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"date", "type", "user", "contentType", "contentId", "title", "extra"}, rows[0])
	assert.Equal(t, stats.ActionPublish, rows[1][1])
}

func TestStatsExport_EmptyMonthHeaderOnly(t *testing.T) {
	e := newTestEnv(t)
	w := requestRaw(t, e, "/stats/export?month=2020-01")
	require.Equal(t, http.StatusOK, w.Code)
	rows, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
