package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ansysan/task-management-system/internal/api/metrics"
	"github.com/ansysan/task-management-system/internal/core/ports"
)

// CommentHandler handles HTTP requests for task comments.
type CommentHandler struct {
	service ports.CommentService
}

func NewCommentHandler(service ports.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

// Create handles POST /comments.
//
// @Summary      Comment on a task
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createCommentRequest  true  "Comment"
// @Success      201   {object}  commentResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /comments [post]
func (h *CommentHandler) Create(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}
	var req createCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.service.Create(c.Request().Context(), p, req.TaskID, req.Text)
	if err != nil {
		return err
	}
	metrics.CommentsCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, toCommentResponse(comment))
}

// Update handles PUT /comments/:id. Only the comment's author may edit it.
//
// @Summary      Edit a comment
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Comment id"
// @Param        body  body      updateCommentRequest  true  "New text"
// @Success      200   {object}  commentResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /comments/{id} [put]
func (h *CommentHandler) Update(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}
	var req updateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.service.Update(c.Request().Context(), p, c.Param("id"), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCommentResponse(comment))
}

// Delete handles DELETE /comments/:id.
//
// @Summary      Delete a comment
// @Tags         comments
// @Security     BearerAuth
// @Param        id   path  string  true  "Comment id"
// @Success      204
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /comments/{id} [delete]
func (h *CommentHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListByTask handles GET /tasks/:id/comments.
//
// @Summary      List the comments of a task
// @Tags         comments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task id"
// @Success      200  {array}   commentResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /tasks/{id}/comments [get]
func (h *CommentHandler) ListByTask(c echo.Context) error {
	comments, err := h.service.ListByTask(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCommentResponses(comments))
}
