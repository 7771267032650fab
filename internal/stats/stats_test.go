package stats

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndReadPeriod(t *testing.T) {
	l := NewLog(t.TempDir())
	ctx := context.Background()

	require.NoError(t, l.Append(ctx, Record{Type: ActionLogin, User: "张三"}))
	require.NoError(t, l.Append(ctx, Record{
		Type: ActionPublish, User: "张三", ContentType: "news", ContentID: "1", Title: "标题",
	}))

	period := Period(time.Now().UTC())
	records, err := l.ReadPeriod(ctx, period)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, ActionLogin, records[0].Type)
	assert.False(t, records[0].Date.IsZero(), "append must stamp the time")
	assert.Equal(t, "标题", records[1].Title)
}

func TestReadPeriod_EmptyMonth(t *testing.T) {
	l := NewLog(t.TempDir())
	records, err := l.ReadPeriod(context.Background(), "1999-01")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestExportCSV(t *testing.T) {
	l := NewLog(t.TempDir())
	ctx := context.Background()
	require.NoError(t, l.Append(ctx, Record{
		Type: ActionLike, User: "李四", ContentType: "wishes", ContentID: "w1",
	}))

	out, err := l.ExportCSV(ctx, Period(time.Now().UTC()))
	require.NoError(t, err)

	r := csv.NewReader(strings.NewReader(string(out)))
	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"date", "type", "user", "contentType", "contentId", "title", "extra"}, rows[0])
	assert.Equal(t, ActionLike, rows[1][1])
	assert.Equal(t, "李四", rows[1][2])
	// extra column embeds the full record
	assert.Contains(t, rows[1][6], `"contentId":"w1"`)
}

func TestExportCSV_EmptyMonthHeaderOnly(t *testing.T) {
	l := NewLog(t.TempDir())
	out, err := l.ExportCSV(context.Background(), "1999-01")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 1)
	assert.Equal(t, "date,type,user,contentType,contentId,title,extra", lines[0])
}
