package board

import (
	"strings"
	"time"

	"github.com/openclub/bulletin/internal/ident"
)

// NewsInput carries the fields of a POST /news request.
type NewsInput struct {
	Title   string
	Content string
	Image   string
	Tag     string
	Author  string
}

// WishInput carries the fields of a POST /wish request.
type WishInput struct {
	Name      string
	Text      string
	Anonymous bool
}

// MediaInput describes an already-stored upload.
type MediaInput struct {
	Kind     string
	Filename string
	Original string
}

// AddNews validates and inserts a news post at the head of the list.
func (d *Document) AddNews(in NewsInput) (*NewsItem, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, missingField("title")
	}
	item := &NewsItem{
		ID:          ID(ident.New()),
		Title:       in.Title,
		Content:     in.Content,
		Image:       in.Image,
		Tag:         in.Tag,
		Author:      in.Author,
		Date:        time.Now().UTC(),
		LikeCounter: LikeCounter{Likers: []string{}},
		Comments:    []*Comment{},
	}
	d.News = append([]*NewsItem{item}, d.News...)
	return item, nil
}

// AddWish validates and inserts a wish at the head of the list.
func (d *Document) AddWish(in WishInput) (*WishItem, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, missingField("text")
	}
	item := &WishItem{
		ID:          ID(ident.New()),
		Name:        in.Name,
		Text:        in.Text,
		Anonymous:   in.Anonymous,
		Date:        time.Now().UTC(),
		LikeCounter: LikeCounter{Likers: []string{}},
		Comments:    []*Comment{},
	}
	d.Wishes = append([]*WishItem{item}, d.Wishes...)
	return item, nil
}

// AddMedia inserts a stored upload at the head of the media list.
func (d *Document) AddMedia(in MediaInput) (*MediaItem, error) {
	if strings.TrimSpace(in.Filename) == "" {
		return nil, missingField("filename")
	}
	kind := in.Kind
	if kind == "" {
		kind = "image"
	}
	item := &MediaItem{
		ID:          ID(ident.New()),
		Kind:        kind,
		Filename:    in.Filename,
		Original:    in.Original,
		Date:        time.Now().UTC(),
		LikeCounter: LikeCounter{Likers: []string{}},
		Comments:    []*Comment{},
	}
	d.Media = append([]*MediaItem{item}, d.Media...)
	return item, nil
}

// findEntry resolves (collection, id) to the entry's like state and comment
// list. The comment slice pointer lets callers append in place.
func (d *Document) findEntry(typ, id string) (*LikeCounter, *[]*Comment, error) {
	switch typ {
	case CollectionNews:
		for _, n := range d.News {
			if n.ID.Equals(id) {
				return &n.LikeCounter, &n.Comments, nil
			}
		}
	case CollectionMedia:
		for _, m := range d.Media {
			if m.ID.Equals(id) {
				return &m.LikeCounter, &m.Comments, nil
			}
		}
	case CollectionWishes:
		for _, w := range d.Wishes {
			if w.ID.Equals(id) {
				return &w.LikeCounter, &w.Comments, nil
			}
		}
	}
	return nil, nil, ErrNotFound
}

func findComment(comments []*Comment, commentID string) (*Comment, error) {
	for _, c := range comments {
		if c.ID.Equals(commentID) {
			return c, nil
		}
	}
	return nil, ErrNotFound
}

// Like records an idempotent like by name on the addressed item and returns
// the resulting like state.
func (d *Document) Like(typ, id, name string) (*LikeCounter, error) {
	lc, _, err := d.findEntry(typ, id)
	if err != nil {
		return nil, err
	}
	lc.AddLiker(name)
	return lc, nil
}

// AddComment appends a comment to the addressed item.
func (d *Document) AddComment(typ, id, name, text string) (*Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, missingField("text")
	}
	_, comments, err := d.findEntry(typ, id)
	if err != nil {
		return nil, err
	}
	c := &Comment{
		ID:          ID(ident.New()),
		Name:        name,
		Text:        text,
		Date:        time.Now().UTC(),
		LikeCounter: LikeCounter{Likers: []string{}},
		Replies:     []*Reply{},
	}
	*comments = append(*comments, c)
	return c, nil
}

// AddReply appends a reply to the addressed comment.
func (d *Document) AddReply(typ, id, commentID, name, text string) (*Reply, error) {
	if strings.TrimSpace(text) == "" {
		return nil, missingField("text")
	}
	_, comments, err := d.findEntry(typ, id)
	if err != nil {
		return nil, err
	}
	c, err := findComment(*comments, commentID)
	if err != nil {
		return nil, err
	}
	r := &Reply{
		ID:          ID(ident.New()),
		Name:        name,
		Text:        text,
		Date:        time.Now().UTC(),
		LikeCounter: LikeCounter{Likers: []string{}},
	}
	c.Replies = append(c.Replies, r)
	return r, nil
}

// LikeComment records an idempotent like on a comment, or on one of its
// replies when replyID is non-empty.
func (d *Document) LikeComment(typ, id, commentID, replyID, name string) (*LikeCounter, error) {
	_, comments, err := d.findEntry(typ, id)
	if err != nil {
		return nil, err
	}
	c, err := findComment(*comments, commentID)
	if err != nil {
		return nil, err
	}
	if replyID != "" {
		for _, r := range c.Replies {
			if r.ID.Equals(replyID) {
				r.AddLiker(name)
				return &r.LikeCounter, nil
			}
		}
		return nil, ErrNotFound
	}
	c.AddLiker(name)
	return &c.LikeCounter, nil
}

// PinNews sets the pinned flag on a news post; pinning relocates the post to
// the head of the list, unpinning leaves the order alone.
func (d *Document) PinNews(id string, pinned bool) error {
	for i, n := range d.News {
		if n.ID.Equals(id) {
			n.Pinned = pinned
			if pinned && i > 0 {
				d.News = append(d.News[:i], d.News[i+1:]...)
				d.News = append([]*NewsItem{n}, d.News...)
			}
			return nil
		}
	}
	return ErrNotFound
}

// PinComment sets the pinned flag on a comment without reordering anything.
func (d *Document) PinComment(typ, id, commentID string, pinned bool) error {
	_, comments, err := d.findEntry(typ, id)
	if err != nil {
		return err
	}
	c, err := findComment(*comments, commentID)
	if err != nil {
		return err
	}
	c.Pinned = pinned
	return nil
}

// DeleteItem removes the addressed item by id filter. Removing an id that is
// not present is not an error. For media, the removed item is returned so the
// caller can clean up the backing file.
func (d *Document) DeleteItem(typ, id string) (*MediaItem, error) {
	switch typ {
	case CollectionNews:
		out := d.News[:0]
		for _, n := range d.News {
			if !n.ID.Equals(id) {
				out = append(out, n)
			}
		}
		d.News = out
		return nil, nil
	case CollectionMedia:
		var removed *MediaItem
		out := d.Media[:0]
		for _, m := range d.Media {
			if m.ID.Equals(id) {
				removed = m
				continue
			}
			out = append(out, m)
		}
		d.Media = out
		return removed, nil
	case CollectionWishes:
		out := d.Wishes[:0]
		for _, w := range d.Wishes {
			if !w.ID.Equals(id) {
				out = append(out, w)
			}
		}
		d.Wishes = out
		return nil, nil
	}
	return nil, ErrNotFound
}

// DeleteComment removes a comment by id filter from the addressed item.
// A missing comment id is not an error, a missing item is.
func (d *Document) DeleteComment(typ, id, commentID string) error {
	_, comments, err := d.findEntry(typ, id)
	if err != nil {
		return err
	}
	out := (*comments)[:0]
	for _, c := range *comments {
		if !c.ID.Equals(commentID) {
			out = append(out, c)
		}
	}
	*comments = out
	return nil
}
