package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/taskdeck/taskdeck/client"
	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/dispatch"
	"github.com/taskdeck/taskdeck/internal/notify"
	"github.com/taskdeck/taskdeck/internal/session"
	"github.com/taskdeck/taskdeck/internal/store"
)

var serviceURL string
var debug bool

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "taskdeck",
		Short: "Taskdeck CLI for the task dashboard and assistant",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
			config.InitLogger()

			if debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
				os.Setenv("TASKDECK_DEBUG", "true")
				log.Debug().Msg("debug logging enabled")
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&serviceURL, "service-url", "", "Base URL of the task backend (overrides TASKDECK_SERVICE_URL)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable verbose debug output")

	// Sub-commands
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newRegisterCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newEditCmd())
	rootCmd.AddCommand(newToggleCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newClearHistoryCmd())
	rootCmd.AddCommand(newDashboardCmd())

	return rootCmd
}

// --------------------------------------------------------------------
// Wiring
// --------------------------------------------------------------------

// app bundles the wired lifecycle pieces behind every command: session
// guard, SDK client, stores, notifier, dispatcher.
type app struct {
	cfg        *config.Config
	sessions   session.Store
	guard      *session.Guard
	api        *client.Client
	tasks      *store.TaskStore
	transcript *store.Transcript
	bus        *notify.Bus
	disp       *dispatch.Dispatcher
}

func newApp(confirm dispatch.ConfirmFunc) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.Init()
	if serviceURL != "" {
		cfg.ServiceURL = serviceURL
	}

	sessions := session.NewFileStore(cfg.TokenPath)
	guard := session.NewGuard(sessions)

	api := client.New(cfg.ServiceURL,
		client.WithTokenSource(guard.TokenSource()),
		client.WithTimeout(cfg.RequestTimeout),
	)

	tasks := store.NewTaskStore(api)
	transcript := store.NewTranscript()
	bus := notify.NewBus()

	return &app{
		cfg:        cfg,
		sessions:   sessions,
		guard:      guard,
		api:        api,
		tasks:      tasks,
		transcript: transcript,
		bus:        bus,
		disp:       dispatch.New(api, api, tasks, transcript, bus, confirm),
	}, nil
}

// requireSession is the CLI's redirect-to-login: protected commands bail out
// before any fetch when no token is present.
func (a *app) requireSession(ctx context.Context) error {
	if _, err := a.guard.Check(ctx); err != nil {
		if session.IsNoSession(err) {
			return fmt.Errorf("not signed in: run `taskdeck login`")
		}
		return err
	}
	return nil
}

// surface classifies a failure for the terminal: authorization failures
// override any operation-specific message and read as a login redirect.
func surface(err error) error {
	if err == nil {
		return nil
	}
	if client.IsUnauthorized(err) {
		return fmt.Errorf("session expired: run `taskdeck login` to sign in again")
	}
	return err
}

func stdinConfirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// --------------------------------------------------------------------
// Auth commands
// --------------------------------------------------------------------

func newLoginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and persist the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(nil)
			if err != nil {
				return err
			}
			tok, err := a.api.Login(cmd.Context(), client.Credentials{Email: email, Password: password})
			if err != nil {
				return surface(err)
			}
			if err := a.sessions.SetToken(tok.AccessToken); err != nil {
				return err
			}
			fmt.Println("Signed in.")
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newRegisterCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and persist the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(nil)
			if err != nil {
				return err
			}
			tok, err := a.api.Register(cmd.Context(), client.Credentials{Email: email, Password: password})
			if err != nil {
				return surface(err)
			}
			if err := a.sessions.SetToken(tok.AccessToken); err != nil {
				return err
			}
			fmt.Println("Account created, signed in.")
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the persisted session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(nil)
			if err != nil {
				return err
			}
			if err := a.sessions.Clear(); err != nil {
				return err
			}
			fmt.Println("Signed out.")
			return nil
		},
	}
}

// --------------------------------------------------------------------
// Task commands
// --------------------------------------------------------------------

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(nil)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := a.requireSession(ctx); err != nil {
				return err
			}
			if err := a.tasks.Refresh(ctx); err != nil {
				return surface(err)
			}
			fmt.Print(renderTaskList(a.tasks.Tasks()))
			return nil
		},
	}
}

func newAddCmd() *cobra.Command {
	var title, description string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new task",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(nil)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := a.requireSession(ctx); err != nil {
				return err
			}
			if err := a.disp.Create(ctx, title, description); err != nil {
				return surface(err)
			}
			fmt.Print(renderTaskList(a.tasks.Tasks()))
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Task title")
	cmd.Flags().StringVar(&description, "description", "", "Optional task description")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newEditCmd() *cobra.Command {
	var title, description string
	cmd := &cobra.Command{
		Use:   "edit <task-id>",
		Short: "Update a task's title and description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			a, err := newApp(nil)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := a.requireSession(ctx); err != nil {
				return err
			}
			// Seed the edit buffer from the current server copy.
			if err := a.tasks.Refresh(ctx); err != nil {
				return surface(err)
			}
			seed, err := a.disp.BeginEdit(id)
			if err != nil {
				return surface(err)
			}
			if !cmd.Flags().Changed("title") {
				title = seed.Title
			}
			if !cmd.Flags().Changed("description") {
				description = seed.Description
			}
			if err := a.disp.SaveEdit(ctx, title, description); err != nil {
				return surface(err)
			}
			fmt.Print(renderTaskList(a.tasks.Tasks()))
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New task title")
	cmd.Flags().StringVar(&description, "description", "", "New task description")
	return cmd
}

func newToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <task-id>",
		Short: "Flip a task between Pending and Complete",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			a, err := newApp(nil)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := a.requireSession(ctx); err != nil {
				return err
			}
			if err := a.disp.Toggle(ctx, id); err != nil {
				return surface(err)
			}
			fmt.Print(renderTaskList(a.tasks.Tasks()))
			return nil
		},
	}
}

func newDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "rm <task-id>",
		Short: "Delete a task (asks for confirmation)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			confirm := stdinConfirm
			if yes {
				confirm = func(string) bool { return true }
			}
			a, err := newApp(confirm)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := a.requireSession(ctx); err != nil {
				return err
			}
			if err := a.disp.Delete(ctx, id); err != nil {
				return surface(err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// --------------------------------------------------------------------
// Chat commands
// --------------------------------------------------------------------

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat <message>",
		Short: "Send one message to the assistant",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(nil)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := a.requireSession(ctx); err != nil {
				return err
			}
			message := strings.Join(args, " ")
			if err := a.disp.SendChat(ctx, message); err != nil {
				return surface(err)
			}
			for _, turn := range a.transcript.Turns() {
				fmt.Print(renderTurn(turn))
			}
			return nil
		},
	}
}

func newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the server-held chat history",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(nil)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := a.requireSession(ctx); err != nil {
				return err
			}
			if err := a.transcript.Seed(ctx, a.api, limit); err != nil {
				return surface(err)
			}
			for _, turn := range a.transcript.Turns() {
				fmt.Print(renderTurn(turn))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of exchanges to fetch")
	return cmd
}

func newClearHistoryCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear-history",
		Short: "Delete the server-held chat history",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(nil)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := a.requireSession(ctx); err != nil {
				return err
			}
			if !yes && !stdinConfirm("Clear the entire chat history?") {
				return nil
			}
			if err := a.api.ClearChatHistory(ctx); err != nil {
				return surface(err)
			}
			fmt.Println("Chat history cleared.")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// --------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------

func parseTaskID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q: expected a positive number", arg)
	}
	return id, nil
}
