package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ansysan/task-management-system/internal/api/metrics"
	"github.com/ansysan/task-management-system/internal/core/ports"
)

// TaskHandler handles HTTP requests for task operations.
type TaskHandler struct {
	service ports.TaskService
}

func NewTaskHandler(service ports.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// Create handles POST /tasks.
//
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTaskRequest  true  "Task"
// @Success      201   {object}  taskResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}
	var req createTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	task, err := h.service.Create(c.Request().Context(), p, toCreateTaskInput(req))
	if err != nil {
		return err
	}
	metrics.TasksCreatedTotal.WithLabelValues(string(task.Priority)).Inc()

	c.Response().Header().Set(echo.HeaderLocation, "/tasks/"+task.ID)
	return c.JSON(http.StatusCreated, toTaskResponse(task))
}

// Get handles GET /tasks/:id.
//
// @Summary      Get a task by id
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task id"
// @Success      200  {object}  taskResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	task, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// Update handles PATCH /tasks/:id. Omitted fields are left unchanged.
//
// @Summary      Update a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Task id"
// @Param        body  body      updateTaskRequest  true  "Fields to change"
// @Success      200   {object}  taskResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /tasks/{id} [patch]
func (h *TaskHandler) Update(c echo.Context) error {
	var req updateTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	task, err := h.service.Update(c.Request().Context(), c.Param("id"), toUpdateTaskInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// UpdateStatus handles PATCH /tasks/:id/status. Only the performer may call it.
//
// @Summary      Change the status of an assigned task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Task id"
// @Param        body  body      updateStatusRequest  true  "New status"
// @Success      200   {object}  taskResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /tasks/{id}/status [patch]
func (h *TaskHandler) UpdateStatus(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}
	var req updateStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	task, err := h.service.UpdateStatus(c.Request().Context(), p, c.Param("id"), req.Status)
	if err != nil {
		return err
	}
	metrics.TaskStatusChangesTotal.WithLabelValues(string(task.Status)).Inc()
	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// Delete handles DELETE /tasks/:id. The task's comments are removed too.
//
// @Summary      Delete a task
// @Tags         tasks
// @Security     BearerAuth
// @Param        id   path  string  true  "Task id"
// @Success      204
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// List handles GET /tasks.
//
// @Summary      List tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        offset  query     int  false  "Page number, 0-based"
// @Param        limit   query     int  false  "Page size (1-100, default 20)"
// @Success      200     {object}  taskPageResponse
// @Failure      400     {object}  errorResponse
// @Failure      401     {object}  errorResponse
// @Failure      403     {object}  errorResponse
// @Router       /tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	page, err := pageParams(c)
	if err != nil {
		return err
	}
	res, err := h.service.List(c.Request().Context(), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskPageResponse(res))
}

// ListByAuthor handles GET /tasks/author/:id.
//
// @Summary      List tasks created by a user
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string  true   "Author user id"
// @Param        offset  query     int     false  "Page number, 0-based"
// @Param        limit   query     int     false  "Page size (1-100, default 20)"
// @Success      200     {object}  taskPageResponse
// @Failure      400     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Router       /tasks/author/{id} [get]
func (h *TaskHandler) ListByAuthor(c echo.Context) error {
	page, err := pageParams(c)
	if err != nil {
		return err
	}
	res, err := h.service.ListByAuthor(c.Request().Context(), c.Param("id"), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskPageResponse(res))
}

// ListByPerformer handles GET /tasks/performer/:id.
//
// @Summary      List tasks assigned to a user
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string  true   "Performer user id"
// @Param        offset  query     int     false  "Page number, 0-based"
// @Param        limit   query     int     false  "Page size (1-100, default 20)"
// @Success      200     {object}  taskPageResponse
// @Failure      400     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Router       /tasks/performer/{id} [get]
func (h *TaskHandler) ListByPerformer(c echo.Context) error {
	page, err := pageParams(c)
	if err != nil {
		return err
	}
	res, err := h.service.ListByPerformer(c.Request().Context(), c.Param("id"), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskPageResponse(res))
}

// ListAssigned handles GET /tasks/assigned.
//
// @Summary      List the caller's assigned tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        offset  query     int  false  "Page number, 0-based"
// @Param        limit   query     int  false  "Page size (1-100, default 20)"
// @Success      200     {object}  taskPageResponse
// @Failure      401     {object}  errorResponse
// @Failure      403     {object}  errorResponse
// @Router       /tasks/assigned [get]
func (h *TaskHandler) ListAssigned(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}
	page, err := pageParams(c)
	if err != nil {
		return err
	}
	res, err := h.service.ListAssigned(c.Request().Context(), p, page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskPageResponse(res))
}
