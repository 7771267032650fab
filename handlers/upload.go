package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openclub/bulletin/internal/board"
	"github.com/openclub/bulletin/internal/ident"
	"github.com/openclub/bulletin/internal/stats"
	"github.com/openclub/bulletin/pkg/metrics"
)

// Upload accepts one multipart file, stores it under a fresh name and records
// a MediaItem pointing at it. The media kind comes from an explicit "type"
// field when the client sends one, otherwise from the MIME type.
func (h *BoardHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "msg": "未收到文件"})
		return
	}
	if file.Size > h.maxUpload {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "msg": "文件过大"})
		return
	}

	contentType := file.Header.Get("Content-Type")
	kind := c.PostForm("type")
	if kind == "" {
		if strings.HasPrefix(contentType, "video") {
			kind = "video"
		} else {
			kind = "image"
		}
	}

	name := ident.New() + filepath.Ext(file.Filename)
	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "msg": err.Error()})
		return
	}
	defer src.Close()
	if err := h.blobs.Save(c.Request.Context(), name, src, file.Size, contentType); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "msg": "store upload failed"})
		return
	}

	var item *board.MediaItem
	err = h.svc.Update(c.Request.Context(), func(d *board.Document) error {
		var err error
		item, err = d.AddMedia(board.MediaInput{Kind: kind, Filename: "/uploads/" + name, Original: file.Filename})
		return err
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	metrics.MutationsTotal.WithLabelValues("upload").Inc()
	h.stat(c, stats.Record{Type: stats.ActionPublish, ContentType: board.CollectionMedia, ContentID: string(item.ID), Title: file.Filename})
	c.JSON(http.StatusOK, gin.H{"success": true, "item": item})
}
