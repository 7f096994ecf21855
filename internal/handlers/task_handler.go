package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/taskdeck/taskdeck/client"
	"github.com/taskdeck/taskdeck/internal/notify"
)

// TaskHandler exposes task operations as MCP tools so an assistant host can
// read and mutate the task list through the same SDK the CLI uses. Every
// mutation publishes the task-changed signal so in-process subscribers
// (the dashboard's list) re-fetch.
type TaskHandler struct {
	client *client.Client
	bus    *notify.Bus
}

// NewTaskHandler creates a new task handler instance.
func NewTaskHandler(c *client.Client, bus *notify.Bus) *TaskHandler {
	return &TaskHandler{client: c, bus: bus}
}

// RegisterTools registers all task tools with the MCP server.
func (th *TaskHandler) RegisterTools(s *server.MCPServer) error {
	listTasks := mcp.NewTool("list_tasks",
		mcp.WithDescription("List all tasks for the authenticated user"),
	)
	s.AddTool(listTasks, th.handleListTasks)

	createTask := mcp.NewTool("create_task",
		mcp.WithDescription("Create a new task with the given title and optional description"),
		mcp.WithString("title", mcp.Required(), mcp.Description("Task title (non-empty, ≤200 chars)")),
		mcp.WithString("description", mcp.Description("Optional task description (≤1000 chars)")),
	)
	s.AddTool(createTask, th.handleCreateTask)

	updateTask := mcp.NewTool("update_task",
		mcp.WithDescription("Replace a task's title and description"),
		mcp.WithNumber("task_id", mcp.Required(), mcp.Description("Server-assigned task ID")),
		mcp.WithString("title", mcp.Required(), mcp.Description("New task title (non-empty, ≤200 chars)")),
		mcp.WithString("description", mcp.Description("New description; empty clears it")),
	)
	s.AddTool(updateTask, th.handleUpdateTask)

	toggleTask := mcp.NewTool("toggle_task",
		mcp.WithDescription("Flip a task between Pending and Complete"),
		mcp.WithNumber("task_id", mcp.Required(), mcp.Description("Server-assigned task ID")),
	)
	s.AddTool(toggleTask, th.handleToggleTask)

	// delete_task mirrors the interactive destructive-action guard: the
	// host must pass confirm=true after the human has agreed.
	deleteTask := mcp.NewTool("delete_task",
		mcp.WithDescription("CAUTION: Permanently delete a task. Use ONLY after the human has explicitly confirmed the deletion, then call with confirm=true."),
		mcp.WithNumber("task_id", mcp.Required(), mcp.Description("Server-assigned task ID")),
		mcp.WithBoolean("confirm", mcp.Required(), mcp.Description("Must be true; false aborts without sending anything")),
	)
	s.AddTool(deleteTask, th.handleDeleteTask)

	return nil
}

func (th *TaskHandler) published() {
	if th.bus != nil {
		th.bus.Publish(notify.TopicTasksChanged)
	}
}

// taskIDArg pulls the task_id argument. JSON numbers decode as float64.
func taskIDArg(req mcp.CallToolRequest) (int64, error) {
	v, ok := req.GetArguments()["task_id"].(float64)
	if !ok {
		return 0, fmt.Errorf("task_id is required and must be a number")
	}
	return int64(v), nil
}

func (th *TaskHandler) handleListTasks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	tasks, err := th.client.ListTasks(ctx)
	elapsed := time.Since(start)

	if err != nil {
		log.Error().Err(err).Dur("elapsed", elapsed).Msg("list_tasks failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to list tasks: %v", err)), nil
	}

	log.Debug().Int("count", len(tasks)).Dur("elapsed", elapsed).Msg("list_tasks completed")

	b, _ := json.MarshalIndent(tasks, "", "  ")
	return mcp.NewToolResultText(string(b)), nil
}

func (th *TaskHandler) handleCreateTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, _ := req.RequireString("title")
	var description string
	if v, ok := req.GetArguments()["description"].(string); ok {
		description = v
	}

	log.Debug().Str("title", title).Msg("handling create_task request")

	task, err := th.client.CreateTask(ctx, client.CreateTaskRequest{
		Title:       title,
		Description: client.NullableDescription(description),
	})
	if err != nil {
		log.Error().Err(err).Str("title", title).Msg("create_task failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to create task: %v", err)), nil
	}
	th.published()

	b, _ := json.MarshalIndent(task, "", "  ")
	return mcp.NewToolResultText(string(b)), nil
}

func (th *TaskHandler) handleUpdateTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := taskIDArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, _ := req.RequireString("title")
	var description string
	if v, ok := req.GetArguments()["description"].(string); ok {
		description = v
	}

	log.Debug().Int64("task_id", id).Str("title", title).Msg("handling update_task request")

	task, err := th.client.UpdateTask(ctx, id, client.UpdateTaskRequest{
		Title:       title,
		Description: client.NullableDescription(description),
	})
	if err != nil {
		log.Error().Err(err).Int64("task_id", id).Msg("update_task failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to update task: %v", err)), nil
	}
	th.published()

	b, _ := json.MarshalIndent(task, "", "  ")
	return mcp.NewToolResultText(string(b)), nil
}

func (th *TaskHandler) handleToggleTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := taskIDArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	log.Debug().Int64("task_id", id).Msg("handling toggle_task request")

	task, err := th.client.ToggleTask(ctx, id)
	if err != nil {
		log.Error().Err(err).Int64("task_id", id).Msg("toggle_task failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to toggle task: %v", err)), nil
	}
	th.published()

	b, _ := json.MarshalIndent(task, "", "  ")
	return mcp.NewToolResultText(string(b)), nil
}

func (th *TaskHandler) handleDeleteTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := taskIDArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	confirm, _ := req.GetArguments()["confirm"].(bool)
	if !confirm {
		log.Debug().Int64("task_id", id).Msg("delete_task declined")
		return mcp.NewToolResultText("delete aborted: confirmation not given, nothing was sent"), nil
	}

	log.Debug().Int64("task_id", id).Msg("handling delete_task request")

	if err := th.client.DeleteTask(ctx, id); err != nil {
		log.Error().Err(err).Int64("task_id", id).Msg("delete_task failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete task: %v", err)), nil
	}
	th.published()

	return mcp.NewToolResultText(fmt.Sprintf("task %d deleted", id)), nil
}
