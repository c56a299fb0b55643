package handler

import (
	"github.com/ansysan/task-management-system/internal/core/domain"
	"github.com/ansysan/task-management-system/internal/core/ports"
)

// --- Request → Service input ---

func toCreateTaskInput(req createTaskRequest) ports.TaskInput {
	return ports.TaskInput{
		Header:      req.Header,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		PerformerID: req.PerformerID,
	}
}

func toUpdateTaskInput(req updateTaskRequest) ports.TaskInput {
	return ports.TaskInput{
		Header:      req.Header,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		PerformerID: req.PerformerID,
	}
}

// --- Service result → HTTP response ---

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.UTC(),
		UpdatedAt: u.UpdatedAt.UTC(),
	}
}

func toUserResponses(users []*domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

func toTaskResponse(t *domain.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Header:      t.Header,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		AuthorID:    t.AuthorID,
		PerformerID: t.PerformerID,
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
	}
}

func toTaskPageResponse(p *ports.TaskPage) taskPageResponse {
	items := make([]taskResponse, 0, len(p.Items))
	for _, t := range p.Items {
		items = append(items, toTaskResponse(t))
	}
	return taskPageResponse{
		Items:      items,
		Total:      p.Total,
		Offset:     p.Page,
		Limit:      p.Limit,
		TotalPages: p.TotalPages,
	}
}

func toCommentResponse(c *domain.Comment) commentResponse {
	return commentResponse{
		ID:        c.ID,
		TaskID:    c.TaskID,
		AuthorID:  c.AuthorID,
		Text:      c.Text,
		CreatedAt: c.CreatedAt.UTC(),
		UpdatedAt: c.UpdatedAt.UTC(),
	}
}

func toCommentResponses(comments []*domain.Comment) []commentResponse {
	out := make([]commentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, toCommentResponse(c))
	}
	return out
}
