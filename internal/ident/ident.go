package ident

import (
	"fmt"
	"time"

	"github.com/lithammer/shortuuid/v3"
)

// New returns a time-prefixed identifier: "<unix-millis>-<6 shortuuid chars>".
// The millisecond prefix keeps ids roughly sortable by creation time (as the
// previous deployment's plain Date.now() ids were) while the random suffix
// makes collisions under rapid concurrent creation a non-issue.
func New() string {
	return NewAt(time.Now())
}

// NewAt is New with an explicit timestamp, for tests.
func NewAt(t time.Time) string {
	return fmt.Sprintf("%d-%s", t.UnixMilli(), shortuuid.New()[:6])
}
