package board

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Collection selectors used by like/comment/pin/delete requests.
const (
	CollectionNews   = "news"
	CollectionMedia  = "media"
	CollectionWishes = "wishes"
)

// ID is an item/comment/reply identifier. Stored and compared as a string;
// decoding accepts bare JSON numbers too, so data files and clients from the
// previous deployment (which used numeric Date.now() ids) keep working.
type ID string

func (v *ID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil || n == "" {
		// n stays empty on JSON null
		return fmt.Errorf("id must be a string or number, got %s", strings.TrimSpace(string(b)))
	}
	*v = ID(n)
	return nil
}

// Equals reports whether the id matches the given request-side value.
func (v ID) Equals(other string) bool {
	return string(v) == strings.TrimSpace(other)
}

// LikeCounter carries the idempotent like state shared by items, comments and
// replies: a count plus the set of names that produced it.
type LikeCounter struct {
	Likes  int      `json:"likes" bson:"likes"`
	Likers []string `json:"likers" bson:"likers"`
}

// AddLiker records a like by name. Returns false (and changes nothing) when
// the name already liked this entry.
func (l *LikeCounter) AddLiker(name string) bool {
	for _, n := range l.Likers {
		if n == name {
			return false
		}
	}
	if l.Likers == nil {
		l.Likers = []string{}
	}
	l.Likers = append(l.Likers, name)
	l.Likes++
	return true
}

// Document is the single persistent aggregate: every post, upload and wish
// lives in one of its three newest-first lists. The lists are always non-nil.
type Document struct {
	News   []*NewsItem  `json:"news" bson:"news"`
	Media  []*MediaItem `json:"media" bson:"media"`
	Wishes []*WishItem  `json:"wishes" bson:"wishes"`
}

// NewDocument returns an empty document with all three lists initialized.
func NewDocument() *Document {
	return &Document{News: []*NewsItem{}, Media: []*MediaItem{}, Wishes: []*WishItem{}}
}

// Normalize ensures no top-level list is nil (e.g. after decoding a
// hand-edited or older data file).
func (d *Document) Normalize() {
	if d.News == nil {
		d.News = []*NewsItem{}
	}
	if d.Media == nil {
		d.Media = []*MediaItem{}
	}
	if d.Wishes == nil {
		d.Wishes = []*WishItem{}
	}
}

// NewsItem is a published bulletin post. Tag, Author and Pinned arrived in
// later deployments and default to zero values on older records.
type NewsItem struct {
	ID          ID         `json:"id" bson:"id"`
	Title       string     `json:"title" bson:"title"`
	Content     string     `json:"content,omitempty" bson:"content,omitempty"`
	Image       string     `json:"image,omitempty" bson:"image,omitempty"`
	Tag         string     `json:"tag,omitempty" bson:"tag,omitempty"`
	Author      string     `json:"author,omitempty" bson:"author,omitempty"`
	Pinned      bool       `json:"pinned,omitempty" bson:"pinned,omitempty"`
	Date        time.Time  `json:"date" bson:"date"`
	LikeCounter `bson:",inline"`
	Comments    []*Comment `json:"comments" bson:"comments"`
}

// MediaItem references one uploaded file. Filename is the served path
// (/uploads/...), Original the client-side name of the upload.
type MediaItem struct {
	ID          ID         `json:"id" bson:"id"`
	Kind        string     `json:"type" bson:"type"` // "image" | "video"
	Filename    string     `json:"filename" bson:"filename"`
	Original    string     `json:"original,omitempty" bson:"original,omitempty"`
	Date        time.Time  `json:"date" bson:"date"`
	LikeCounter `bson:",inline"`
	Comments    []*Comment `json:"comments" bson:"comments"`
}

// WishItem is one entry in the wish pool.
type WishItem struct {
	ID          ID         `json:"id" bson:"id"`
	Name        string     `json:"name,omitempty" bson:"name,omitempty"`
	Text        string     `json:"text" bson:"text"`
	Anonymous   bool       `json:"anonymous,omitempty" bson:"anonymous,omitempty"`
	Date        time.Time  `json:"date" bson:"date"`
	LikeCounter `bson:",inline"`
	Comments    []*Comment `json:"comments" bson:"comments"`
}

// Comment hangs off a news/media/wish item and may carry replies one level
// deep. Pinned is only meaningful on wish comments.
type Comment struct {
	ID          ID        `json:"id" bson:"id"`
	Name        string    `json:"name" bson:"name"`
	Text        string    `json:"text" bson:"text"`
	Date        time.Time `json:"date" bson:"date"`
	LikeCounter `bson:",inline"`
	Replies     []*Reply `json:"replies" bson:"replies"`
	Pinned      bool     `json:"pinned,omitempty" bson:"pinned,omitempty"`
}

// Reply is a flat response to a comment. No nesting below this.
type Reply struct {
	ID          ID        `json:"id" bson:"id"`
	Name        string    `json:"name" bson:"name"`
	Text        string    `json:"text" bson:"text"`
	Date        time.Time `json:"date" bson:"date"`
	LikeCounter `bson:",inline"`
}
