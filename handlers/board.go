package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"

	"github.com/openclub/bulletin/internal/board"
	"github.com/openclub/bulletin/internal/board/service"
	"github.com/openclub/bulletin/internal/board/store"
	"github.com/openclub/bulletin/internal/presence"
	"github.com/openclub/bulletin/internal/stats"
	"github.com/openclub/bulletin/internal/storage"
	"github.com/openclub/bulletin/pkg/logger"
	"github.com/openclub/bulletin/pkg/metrics"
)

// BoardHandler carries the content and interaction endpoints.
type BoardHandler struct {
	svc       *service.Service
	statLog   *stats.Log
	blobs     storage.BlobStore
	tracker   *presence.Tracker
	maxUpload int64
}

func NewBoardHandler(svc *service.Service, statLog *stats.Log, blobs storage.BlobStore, tracker *presence.Tracker, maxUploadBytes int64) *BoardHandler {
	return &BoardHandler{svc: svc, statLog: statLog, blobs: blobs, tracker: tracker, maxUpload: maxUploadBytes}
}

func (h *BoardHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/data", h.Data)
	rg.GET("/online", h.Online)
	rg.POST("/news", h.PostNews)
	rg.POST("/wish", h.PostWish)
	rg.POST("/upload", h.Upload)
	rg.POST("/like", h.Like)
	rg.POST("/likeComment", h.LikeComment)
	rg.POST("/comment", h.Comment)
	rg.POST("/reply", h.Reply)
	rg.POST("/pin", h.Pin)
	rg.DELETE("/news/:id", h.deleteItem(board.CollectionNews))
	rg.DELETE("/wish/:id", h.deleteItem(board.CollectionWishes))
	rg.DELETE("/media/:id", h.DeleteMedia)
	rg.DELETE("/comment/:type/:id/:commentId", h.DeleteComment)
}

// respondErr maps the error taxonomy to HTTP answers in the body shape the
// existing clients expect.
func respondErr(c *gin.Context, err error) {
	var ve *board.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "msg": ve.Error()})
	case errors.Is(err, board.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "msg": "not found"})
	case errors.Is(err, store.ErrStorageUnavailable):
		logger.Errorf("storage: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "msg": "storage unavailable"})
	default:
		logger.Errorf("mutation: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "msg": "internal error"})
	}
}

func (h *BoardHandler) stat(c *gin.Context, rec stats.Record) {
	if err := h.statLog.Append(c.Request.Context(), rec); err != nil {
		logger.Warnf("stat append: %v", err)
	}
}

func (h *BoardHandler) Data(c *gin.Context) {
	doc, err := h.svc.Document(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *BoardHandler) Online(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"online": h.tracker.Roster()})
}

func (h *BoardHandler) PostNews(c *gin.Context) {
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		Image   string `json:"image"`
		Tag     string `json:"tag"`
		Author  string `json:"author"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "msg": err.Error()})
		return
	}
	var item *board.NewsItem
	err := h.svc.Update(c.Request.Context(), func(d *board.Document) error {
		var err error
		item, err = d.AddNews(board.NewsInput{Title: req.Title, Content: req.Content, Image: req.Image, Tag: req.Tag, Author: req.Author})
		return err
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	metrics.MutationsTotal.WithLabelValues("news").Inc()
	h.stat(c, stats.Record{Type: stats.ActionPublish, User: req.Author, ContentType: board.CollectionNews, ContentID: string(item.ID), Title: item.Title})
	c.JSON(http.StatusOK, gin.H{"success": true, "item": item})
}

func (h *BoardHandler) PostWish(c *gin.Context) {
	var req struct {
		Name      string `json:"name"`
		Text      string `json:"text"`
		Anonymous bool   `json:"anonymous"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "msg": err.Error()})
		return
	}
	var item *board.WishItem
	err := h.svc.Update(c.Request.Context(), func(d *board.Document) error {
		var err error
		item, err = d.AddWish(board.WishInput{Name: req.Name, Text: req.Text, Anonymous: req.Anonymous})
		return err
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	metrics.MutationsTotal.WithLabelValues("wish").Inc()
	h.stat(c, stats.Record{Type: stats.ActionPublish, User: req.Name, ContentType: board.CollectionWishes, ContentID: string(item.ID)})
	c.JSON(http.StatusOK, gin.H{"success": true, "item": item})
}

func (h *BoardHandler) Like(c *gin.Context) {
	var req struct {
		Type string   `json:"type"`
		ID   board.ID `json:"id"`
		Name string   `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "msg": err.Error()})
		return
	}
	var lc board.LikeCounter
	err := h.svc.Update(c.Request.Context(), func(d *board.Document) error {
		got, err := d.Like(req.Type, string(req.ID), req.Name)
		if err != nil {
			return err
		}
		lc = *got
		return nil
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	metrics.MutationsTotal.WithLabelValues("like").Inc()
	h.stat(c, stats.Record{Type: stats.ActionLike, User: req.Name, ContentType: req.Type, ContentID: string(req.ID)})
	c.JSON(http.StatusOK, gin.H{"success": true, "likes": lc.Likes, "likers": lc.Likers})
}

func (h *BoardHandler) LikeComment(c *gin.Context) {
	var req struct {
		Type      string   `json:"type"`
		ID        board.ID `json:"id"`
		CommentID board.ID `json:"commentId"`
		ReplyID   board.ID `json:"replyId"`
		Name      string   `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "msg": err.Error()})
		return
	}
	var lc board.LikeCounter
	err := h.svc.Update(c.Request.Context(), func(d *board.Document) error {
		got, err := d.LikeComment(req.Type, string(req.ID), string(req.CommentID), string(req.ReplyID), req.Name)
		if err != nil {
			return err
		}
		lc = *got
		return nil
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	metrics.MutationsTotal.WithLabelValues("likeComment").Inc()
	h.stat(c, stats.Record{Type: stats.ActionLikeComment, User: req.Name, ContentType: req.Type, ContentID: string(req.ID), CommentID: string(req.CommentID), ReplyID: string(req.ReplyID)})
	c.JSON(http.StatusOK, gin.H{"success": true, "likes": lc.Likes, "likers": lc.Likers})
}

func (h *BoardHandler) Comment(c *gin.Context) {
	var req struct {
		Type string   `json:"type"`
		ID   board.ID `json:"id"`
		Name string   `json:"name"`
		Text string   `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "msg": err.Error()})
		return
	}
	var comment *board.Comment
	err := h.svc.Update(c.Request.Context(), func(d *board.Document) error {
		var err error
		comment, err = d.AddComment(req.Type, string(req.ID), req.Name, req.Text)
		return err
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	metrics.MutationsTotal.WithLabelValues("comment").Inc()
	h.stat(c, stats.Record{Type: stats.ActionComment, User: req.Name, ContentType: req.Type, ContentID: string(req.ID), CommentID: string(comment.ID)})
	c.JSON(http.StatusOK, gin.H{"success": true, "comment": comment})
}

func (h *BoardHandler) Reply(c *gin.Context) {
	var req struct {
		Type      string   `json:"type"`
		ID        board.ID `json:"id"`
		CommentID board.ID `json:"commentId"`
		Name      string   `json:"name"`
		Text      string   `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "msg": err.Error()})
		return
	}
	var reply *board.Reply
	err := h.svc.Update(c.Request.Context(), func(d *board.Document) error {
		var err error
		reply, err = d.AddReply(req.Type, string(req.ID), string(req.CommentID), req.Name, req.Text)
		return err
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	metrics.MutationsTotal.WithLabelValues("reply").Inc()
	h.stat(c, stats.Record{Type: stats.ActionReply, User: req.Name, ContentType: req.Type, ContentID: string(req.ID), CommentID: string(req.CommentID), ReplyID: string(reply.ID)})
	c.JSON(http.StatusOK, gin.H{"success": true, "reply": reply})
}

func (h *BoardHandler) Pin(c *gin.Context) {
	var req struct {
		Type      string   `json:"type"`
		ID        board.ID `json:"id"`
		CommentID board.ID `json:"commentId"`
		Pinned    *bool    `json:"pinned"`
		Name      string   `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "msg": err.Error()})
		return
	}
	pinned := true
	if req.Pinned != nil {
		pinned = *req.Pinned
	}
	err := h.svc.Update(c.Request.Context(), func(d *board.Document) error {
		if req.CommentID != "" {
			return d.PinComment(req.Type, string(req.ID), string(req.CommentID), pinned)
		}
		if req.Type != board.CollectionNews {
			return &board.ValidationError{Field: "commentId"}
		}
		return d.PinNews(string(req.ID), pinned)
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	metrics.MutationsTotal.WithLabelValues("pin").Inc()
	h.stat(c, stats.Record{Type: stats.ActionPin, User: req.Name, ContentType: req.Type, ContentID: string(req.ID), CommentID: string(req.CommentID)})
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *BoardHandler) deleteItem(typ string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		err := h.svc.Update(c.Request.Context(), func(d *board.Document) error {
			_, err := d.DeleteItem(typ, id)
			return err
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		metrics.MutationsTotal.WithLabelValues("delete").Inc()
		h.stat(c, stats.Record{Type: stats.ActionDelete, ContentType: typ, ContentID: id})
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func (h *BoardHandler) DeleteMedia(c *gin.Context) {
	id := c.Param("id")
	var removed *board.MediaItem
	err := h.svc.Update(c.Request.Context(), func(d *board.Document) error {
		var err error
		removed, err = d.DeleteItem(board.CollectionMedia, id)
		return err
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	if removed != nil && removed.Filename != "" {
		// best-effort cleanup: a stuck file never blocks the logical delete
		name := path.Base(removed.Filename)
		if err := h.blobs.Remove(c.Request.Context(), name); err != nil {
			logger.Warnf("remove media file %s: %v", name, err)
		}
	}
	metrics.MutationsTotal.WithLabelValues("delete").Inc()
	h.stat(c, stats.Record{Type: stats.ActionDelete, ContentType: board.CollectionMedia, ContentID: id})
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ServeMedia streams one uploaded blob. Disk deployments serve the upload
// directory statically instead; this route backs the bucket-based stores,
// where the recorded /uploads/<name> paths have no directory behind them.
func (h *BoardHandler) ServeMedia(c *gin.Context) {
	name := path.Base(c.Param("name"))
	rc, err := h.blobs.Open(c.Request.Context(), name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "msg": "not found"})
		return
	}
	defer rc.Close()
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		c.Header("Content-Type", ct)
	}
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		logger.Warnf("serve media %s: %v", name, err)
	}
}

func (h *BoardHandler) DeleteComment(c *gin.Context) {
	typ := c.Param("type")
	id := c.Param("id")
	commentID := c.Param("commentId")
	err := h.svc.Update(c.Request.Context(), func(d *board.Document) error {
		return d.DeleteComment(typ, id, commentID)
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	metrics.MutationsTotal.WithLabelValues("deleteComment").Inc()
	h.stat(c, stats.Record{Type: stats.ActionDeleteComment, ContentType: typ, ContentID: id, CommentID: commentID})
	c.JSON(http.StatusOK, gin.H{"success": true})
}
