package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Task operations - all methods operate directly on Client

// ListTasks retrieves the full task collection in server order.
func (c *Client) ListTasks(ctx context.Context) (tasks []Task, err error) {
	defer func() { observe("list_tasks", err) }()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	url := c.baseURL + "/api/tasks/"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError("list tasks", resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(&tasks); err != nil {
		return nil, fmt.Errorf("list tasks: decode response: %w", err)
	}
	return tasks, nil
}

// CreateTask creates a new task. Title is validated locally before any
// network call; the description is optional and nil means null.
func (c *Client) CreateTask(ctx context.Context, req CreateTaskRequest) (t *Task, err error) {
	defer func() { observe("create_task", err) }()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ValidateTitle(req.Title); err != nil {
		return nil, err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	url := c.baseURL + "/api/tasks/"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, responseError("create task", resp)
	}

	var task Task
	if err := json.NewDecoder(resp.Body).Decode(&task); err != nil {
		return nil, fmt.Errorf("create task: decode response: %w", err)
	}
	return &task, nil
}

// UpdateTask submits a new title and description for an existing task.
func (c *Client) UpdateTask(ctx context.Context, id int64, req UpdateTaskRequest) (t *Task, err error) {
	defer func() { observe("update_task", err) }()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ValidateTaskID(id); err != nil {
		return nil, err
	}
	if err := ValidateTitle(req.Title); err != nil {
		return nil, err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/api/tasks/%d", c.baseURL, id)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError("update task", resp)
	}

	var task Task
	if err := json.NewDecoder(resp.Body).Decode(&task); err != nil {
		return nil, fmt.Errorf("update task: decode response: %w", err)
	}
	return &task, nil
}

// ToggleTask flips a task between Pending and Complete. The flip happens
// server-side; callers re-fetch rather than flipping their local copy.
func (c *Client) ToggleTask(ctx context.Context, id int64) (t *Task, err error) {
	defer func() { observe("toggle_task", err) }()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ValidateTaskID(id); err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/api/tasks/%d/toggle", c.baseURL, id)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("toggle task: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError("toggle task", resp)
	}

	var task Task
	if err := json.NewDecoder(resp.Body).Decode(&task); err != nil {
		return nil, fmt.Errorf("toggle task: decode response: %w", err)
	}
	return &task, nil
}

// DeleteTask removes a task by id.
func (c *Client) DeleteTask(ctx context.Context, id int64) (err error) {
	defer func() { observe("delete_task", err) }()
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateTaskID(id); err != nil {
		return err
	}
	url := fmt.Sprintf("%s/api/tasks/%d", c.baseURL, id)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNoContent {
		return responseError("delete task", resp)
	}
	return nil
}
