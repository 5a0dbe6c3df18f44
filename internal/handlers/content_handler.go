package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/tryfield/internal/helpers"
	"github.com/joshua-takyi/tryfield/internal/models"
	"github.com/joshua-takyi/tryfield/internal/services"
)

func SaveDraftHandler(ds *services.DraftService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var draft models.Draft
		if err := c.ShouldBindJSON(&draft); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
			return
		}
		saved, err := ds.Save(c.Request.Context(), actorOf(c), &draft)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(saved, "Draft saved"))
	}
}

func LoadDraftHandler(ds *services.DraftService) gin.HandlerFunc {
	return func(c *gin.Context) {
		draft, err := ds.Load(c.Request.Context(), actorOf(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(draft, ""))
	}
}

func DeleteDraftHandler(ds *services.DraftService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := ds.Delete(c.Request.Context(), actorOf(c)); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(nil, "Draft deleted"))
	}
}

// UploadImageHandler takes a multipart "file" field and a "kind" of tries, avatars or chat.
func UploadImageHandler(us *services.UploadService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, services.MaxUploadBytes+1<<20)
		header, err := c.FormFile("file")
		if err != nil {
			badRequest(c, "file is required")
			return
		}
		file, err := header.Open()
		if err != nil {
			badRequest(c, "could not read file")
			return
		}
		defer file.Close()

		url, err := us.UploadImage(c.Request.Context(), actorOf(c), c.DefaultPostForm("kind", services.TriesFolder),
			header.Filename, header.Header.Get("Content-Type"), header.Size, file)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, helpers.SuccessResponse(gin.H{"url": url}, "Image uploaded"))
	}
}

func AddCommentHandler(cs *services.CommentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tryID, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		var body struct {
			Content string `json:"content" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
			return
		}
		comment, err := cs.Add(c.Request.Context(), actorOf(c), tryID, body.Content)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, helpers.SuccessResponse(comment, ""))
	}
}

func ListCommentsHandler(cs *services.CommentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tryID, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		list, err := cs.List(c.Request.Context(), tryID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(list, ""))
	}
}

func DeleteCommentHandler(cs *services.CommentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		if err := cs.Delete(c.Request.Context(), actorOf(c), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(nil, "Comment deleted"))
	}
}
