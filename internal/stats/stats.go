package stats

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/openclub/bulletin/pkg/metrics"
)

// Action types recorded in the log.
const (
	ActionLogin         = "login"
	ActionPublish       = "publish"
	ActionLike          = "like"
	ActionComment       = "comment"
	ActionReply         = "reply"
	ActionLikeComment   = "likeComment"
	ActionPin           = "pin"
	ActionDelete        = "delete"
	ActionDeleteComment = "deleteComment"
)

// Record is one logged user action. Date is stamped at append time.
type Record struct {
	Type        string    `json:"type"`
	User        string    `json:"user,omitempty"`
	ContentType string    `json:"contentType,omitempty"`
	ContentID   string    `json:"contentId,omitempty"`
	CommentID   string    `json:"commentId,omitempty"`
	ReplyID     string    `json:"replyId,omitempty"`
	Title       string    `json:"title,omitempty"`
	Date        time.Time `json:"date"`
}

// Log is an append-only action log partitioned by calendar month: one JSON
// file per YYYY-MM period under dir, so no single file grows unbounded.
type Log struct {
	mu  sync.Mutex
	dir string
}

func NewLog(dir string) *Log {
	return &Log{dir: dir}
}

func (l *Log) path(period string) string {
	return filepath.Join(l.dir, "stats-"+period+".json")
}

// Period returns the partition key for a point in time.
func Period(t time.Time) string {
	return t.Format("2006-01")
}

// Append stamps rec with the current time and appends it to the current
// month's partition.
func (l *Log) Append(ctx context.Context, rec Record) error {
	rec.Date = time.Now().UTC()
	period := Period(rec.Date)

	l.mu.Lock()
	defer l.mu.Unlock()
	records, err := l.readLocked(period)
	if err != nil {
		return err
	}
	records = append(records, rec)
	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode stats %s: %w", period, err)
	}
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", l.dir, err)
	}
	if err := os.WriteFile(l.path(period), b, 0o644); err != nil {
		return fmt.Errorf("write stats %s: %w", period, err)
	}
	metrics.StatAppendsTotal.Inc()
	return nil
}

// ReadPeriod returns all records of a YYYY-MM period, oldest first. A period
// with no recorded events yields an empty slice, not an error.
func (l *Log) ReadPeriod(ctx context.Context, period string) ([]Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readLocked(period)
}

func (l *Log) readLocked(period string) ([]Record, error) {
	b, err := os.ReadFile(l.path(period))
	if err != nil {
		if os.IsNotExist(err) {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("read stats %s: %w", period, err)
	}
	var records []Record
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, fmt.Errorf("decode stats %s: %w", period, err)
	}
	return records, nil
}

// ExportCSV renders a period as delimited text for download. The extra column
// carries the full record as embedded JSON, so nothing is lost in the flat
// projection. An empty period exports the header row alone.
func (l *Log) ExportCSV(ctx context.Context, period string) ([]byte, error) {
	records, err := l.ReadPeriod(ctx, period)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"date", "type", "user", "contentType", "contentId", "title", "extra"}); err != nil {
		return nil, err
	}
	for _, rec := range records {
		extra, err := json.Marshal(rec)
		if err != nil {
			return nil, err
		}
		row := []string{
			rec.Date.Format(time.RFC3339),
			rec.Type,
			rec.User,
			rec.ContentType,
			rec.ContentID,
			rec.Title,
			string(extra),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
