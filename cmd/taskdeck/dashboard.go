package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/taskdeck/taskdeck/client"
	"github.com/taskdeck/taskdeck/internal/notify"
	"github.com/taskdeck/taskdeck/internal/store"
	"github.com/taskdeck/taskdeck/internal/voice"
)

// --------------------------------------------------------------------
// Rendering
// --------------------------------------------------------------------

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	doneStyle     = lipgloss.NewStyle().Strikethrough(true).Faint(true)
	pendingBadge  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Render("[Pending]")
	completeBadge = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("[Complete]")
	dimStyle      = lipgloss.NewStyle().Faint(true)
	userStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	botStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
)

func renderTaskList(tasks []client.Task) string {
	if len(tasks) == 0 {
		return dimStyle.Render("No tasks yet. Create one with `add`.") + "\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", titleStyle.Render(fmt.Sprintf("Your Tasks (%d)", len(tasks))))
	for _, t := range tasks {
		badge := pendingBadge
		title := titleStyle.Render(t.Title)
		if t.Completed() {
			badge = completeBadge
			title = doneStyle.Render(t.Title)
		}
		fmt.Fprintf(&b, "%4d  %s %s\n", t.ID, badge, title)
		if t.Description != nil && *t.Description != "" {
			fmt.Fprintf(&b, "      %s\n", dimStyle.Render(*t.Description))
		}
	}
	return b.String()
}

func renderTurn(turn store.Turn) string {
	who := botStyle.Render("assistant")
	if turn.IsUser {
		who = userStyle.Render("you")
	}
	line := fmt.Sprintf("%s  %s\n", who, turn.Message)
	if turn.Intent != "" && turn.Intent != client.ActionGeneral {
		line += dimStyle.Render("        ("+turn.Intent+")") + "\n"
	}
	return line
}

// --------------------------------------------------------------------
// Dashboard command
// --------------------------------------------------------------------

func newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Interactive dashboard: task list plus assistant",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(stdinConfirm)
			if err != nil {
				return err
			}
			return runDashboard(cmd.Context(), a)
		},
	}
}

func runDashboard(parent context.Context, a *app) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	// Session guard runs before anything else; without a token no fetch
	// is attempted.
	if err := a.requireSession(ctx); err != nil {
		return err
	}

	// The task list subscribes before the assistant becomes interactable,
	// so a chat-triggered mutation can never emit into the void. The
	// liveness check keeps a late signal from touching a torn-down view.
	unsubscribe := a.bus.Subscribe(notify.TopicTasksChanged, func() {
		if ctx.Err() != nil {
			return
		}
		if err := a.tasks.Refresh(ctx); err != nil {
			fmt.Println(surface(err))
			return
		}
		fmt.Println(dimStyle.Render("(assistant changed your tasks)"))
		fmt.Print(renderTaskList(a.tasks.Tasks()))
	})
	defer unsubscribe()

	// Initial load.
	fmt.Println(dimStyle.Render("Loading..."))
	if err := a.tasks.Refresh(ctx); err != nil {
		if client.IsUnauthorized(err) {
			return surface(err)
		}
		fmt.Println(surface(err))
	}
	fmt.Print(renderTaskList(a.tasks.Tasks()))

	if a.cfg.PersistHistory {
		if err := a.transcript.Seed(ctx, a.api, a.cfg.HistoryLimit); err != nil {
			fmt.Println(surface(err))
		}
	} else {
		a.transcript.Reset()
	}

	mic := voice.System()

	fmt.Println(dimStyle.Render("Commands: list, add <title>, edit <id>, toggle <id>, rm <id>, chat <msg>, voice, history, quit"))
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		verb, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		var err error
		switch verb {
		case "quit", "exit":
			cancel()
			return nil
		case "list":
			if err = a.tasks.Refresh(ctx); err == nil {
				fmt.Print(renderTaskList(a.tasks.Tasks()))
			}
		case "add":
			err = dashboardAdd(ctx, a, rest, scanner)
		case "edit":
			err = dashboardEdit(ctx, a, rest, scanner)
		case "toggle":
			var id int64
			if id, err = parseTaskID(rest); err == nil {
				if err = a.disp.Toggle(ctx, id); err == nil {
					fmt.Print(renderTaskList(a.tasks.Tasks()))
				}
			}
		case "rm":
			var id int64
			if id, err = parseTaskID(rest); err == nil {
				if err = a.disp.Delete(ctx, id); err == nil {
					fmt.Print(renderTaskList(a.tasks.Tasks()))
				}
			}
		case "chat":
			err = dashboardChat(ctx, a, rest)
		case "voice":
			err = dashboardVoice(ctx, a, mic)
		case "history":
			if err = a.transcript.Seed(ctx, a.api, a.cfg.HistoryLimit); err == nil {
				for _, turn := range a.transcript.Turns() {
					fmt.Print(renderTurn(turn))
				}
			}
		default:
			fmt.Printf("unknown command %q\n", verb)
		}

		if err != nil {
			// Unauthorized overrides any inline message: leave the
			// dashboard (and any open edit) for the login flow.
			if client.IsUnauthorized(err) {
				a.disp.CancelEdit()
				return surface(err)
			}
			fmt.Println(err)
		}
	}
}

func dashboardAdd(ctx context.Context, a *app, title string, scanner *bufio.Scanner) error {
	fmt.Print("description (optional): ")
	var description string
	if scanner.Scan() {
		description = strings.TrimSpace(scanner.Text())
	}
	if err := a.disp.Create(ctx, title, description); err != nil {
		return err
	}
	fmt.Print(renderTaskList(a.tasks.Tasks()))
	return nil
}

func dashboardEdit(ctx context.Context, a *app, arg string, scanner *bufio.Scanner) error {
	id, err := parseTaskID(arg)
	if err != nil {
		return err
	}
	seed, err := a.disp.BeginEdit(id)
	if err != nil {
		return err
	}
	fmt.Printf("title [%s]: ", seed.Title)
	title := seed.Title
	if scanner.Scan() {
		if v := strings.TrimSpace(scanner.Text()); v != "" {
			title = v
		}
	}
	fmt.Printf("description [%s]: ", seed.Description)
	description := seed.Description
	if scanner.Scan() {
		if v := strings.TrimSpace(scanner.Text()); v != "" {
			description = v
		}
	}
	if err := a.disp.SaveEdit(ctx, title, description); err != nil {
		return err
	}
	fmt.Print(renderTaskList(a.tasks.Tasks()))
	return nil
}

func dashboardChat(ctx context.Context, a *app, message string) error {
	before := a.transcript.Len()
	fmt.Println(dimStyle.Render("assistant is thinking..."))
	if err := a.disp.SendChat(ctx, message); err != nil {
		return err
	}
	for _, turn := range a.transcript.Turns()[before:] {
		fmt.Print(renderTurn(turn))
	}
	return nil
}

func dashboardVoice(ctx context.Context, a *app, mic voice.Input) error {
	if !mic.Available() {
		fmt.Println(dimStyle.Render("voice input is not supported here; type your message instead"))
		return nil
	}
	fmt.Println(dimStyle.Render("listening..."))
	transcripts, err := mic.Start(ctx)
	if err != nil {
		return err
	}
	var utterance string
	for t := range transcripts {
		utterance = t
	}
	if utterance == "" {
		fmt.Println(dimStyle.Render("heard nothing"))
		return nil
	}
	return dashboardChat(ctx, a, utterance)
}
