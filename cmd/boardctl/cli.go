package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"issueboard/internal/auth"
	"issueboard/internal/board"
	"issueboard/internal/directory"
	"issueboard/internal/notify"
	"issueboard/internal/repository"
)

// CLI drives one board controller per command against the backend named in its config.
type CLI struct {
	root *cobra.Command
	v    *viper.Viper
	out  io.Writer
	err  io.Writer
}

func NewCLI(out, errOut io.Writer) *CLI {
	cli := &CLI{v: viper.New(), out: out, err: errOut}
	cli.setupViperConfig()
	cli.createRootCommand()
	cli.addCommands()
	return cli
}

// setupViperConfig reads BOARD_* variables and an optional boardctl.yaml.
func (cli *CLI) setupViperConfig() {
	cli.v.SetConfigName("boardctl")
	cli.v.SetConfigType("yaml")
	cli.v.AddConfigPath(".")
	cli.v.AddConfigPath("$HOME/.boardctl")

	cli.v.SetEnvPrefix("BOARD")
	cli.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	cli.v.AutomaticEnv()

	cli.v.SetDefault("api-url", "http://localhost:8000")
	_ = cli.v.ReadInConfig()
}

func (cli *CLI) createRootCommand() {
	cli.root = &cobra.Command{
		Use:   "boardctl",
		Short: "Work with a project's issue board from the terminal",
		Long: `boardctl loads a project's board from the issue-tracking backend and applies
the same status, assignment and export operations as the web board.

Configuration (highest precedence first):
  flags, BOARD_* environment variables, ./boardctl.yaml, ~/.boardctl/boardctl.yaml

Examples:
  export BOARD_API_URL=https://tracker.example.com BOARD_TOKEN=...
  boardctl board -p PROJ --status in_progress
  boardctl move -p PROJ 3f1c... done
  boardctl export -p PROJ --out tasks.xlsx`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cli.v.BindPFlags(cmd.Flags())
		},
	}
	cli.root.SetOut(cli.out)
	cli.root.SetErr(cli.err)

	flags := cli.root.PersistentFlags()
	flags.String("api-url", "", "Backend base URL (BOARD_API_URL)")
	flags.String("token", "", "Access token (BOARD_TOKEN)")
	flags.StringP("project", "p", "", "Project key or ID (BOARD_PROJECT)")
	flags.Duration("timeout", 30*time.Second, "Per-command timeout")
	flags.Bool("verbose", false, "Log requests and failures to stderr")
}

// addScopeFlags adds the flags that narrow which issues a board holds.
func addScopeFlags(fs *pflag.FlagSet) {
	fs.String("sprint", "", "Sprint ID")
	fs.Bool("active-sprint", false, "Use the project's active sprint")
	fs.String("assignee", "", "Only issues assigned to this user ID")
}

func addFilterFlags(fs *pflag.FlagSet) {
	fs.String("status", board.StatusAll, "Status filter: to_do, in_progress, in_review, done or all")
	fs.StringP("query", "q", "", "Case-insensitive search in summary and description")
}

func (cli *CLI) Execute(args []string) error {
	cli.root.SetArgs(args)
	return cli.root.Execute()
}

func (cli *CLI) logger() *slog.Logger {
	level := slog.LevelError
	if cli.v.GetBool("verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cli.err, &slog.HandlerOptions{Level: level}))
}

func (cli *CLI) repositories() (repository.IssueRepositoryInterface, repository.ProjectRepositoryInterface, repository.CatalogRepositoryInterface, error) {
	token := cli.v.GetString("token")
	if token == "" {
		return nil, nil, nil, fmt.Errorf("no access token: set BOARD_TOKEN or --token")
	}
	client := repository.NewClient(cli.v.GetString("api-url"), auth.StaticToken(token), nil)
	return repository.NewIssueRepository(client), repository.NewProjectRepository(client), repository.NewCatalogRepository(client), nil
}

// openBoard resolves the project and scope flags and runs the first load.
func (cli *CLI) openBoard(ctx context.Context) (*board.Controller, error) {
	issues, projects, catalog, err := cli.repositories()
	if err != nil {
		return nil, err
	}
	ref := cli.v.GetString("project")
	if ref == "" {
		return nil, fmt.Errorf("no project: set --project or BOARD_PROJECT")
	}

	log := cli.logger()
	dir := directory.NewProjects(projects, log)
	if err := dir.Load(ctx); err != nil {
		return nil, err
	}
	project, err := dir.Find(strings.ToUpper(ref))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ref, err)
	}

	scope := board.Scope{ProjectID: project.ID, ProjectKey: project.Key}
	if raw := cli.v.GetString("sprint"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid sprint ID %q", raw)
		}
		scope.SprintID = &id
	} else if cli.v.GetBool("active-sprint") {
		if scope, err = board.ResolveActiveSprint(ctx, catalog, scope); err != nil {
			return nil, err
		}
	}
	if raw := cli.v.GetString("assignee"); raw != "" {
		if scope.AssigneeID, err = board.ParseAssignee(raw); err != nil {
			return nil, fmt.Errorf("invalid assignee ID %q", raw)
		}
	}

	ctrl := board.New(issues, &lineNotifier{w: cli.err}, log, scope)
	if err := ctrl.Load(ctx); err != nil {
		return nil, err
	}
	return ctrl, nil
}

func (cli *CLI) filter() board.Filter {
	return board.Filter{Status: cli.v.GetString("status"), Search: cli.v.GetString("query")}
}

func (cli *CLI) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), cli.v.GetDuration("timeout"))
}

// lineNotifier prints each notification as one line; a terminal has no toast to replace.
type lineNotifier struct {
	w io.Writer
}

func (n *lineNotifier) show(kind notify.Kind, message string) notify.Notification {
	fmt.Fprintf(n.w, "[%s] %s\n", kind, message)
	return notify.Notification{Kind: kind, Message: message, ShownAt: time.Now()}
}

func (n *lineNotifier) Pending(message string) notify.Notification {
	return n.show(notify.KindInfo, message)
}

func (n *lineNotifier) Success(message string) notify.Notification {
	return n.show(notify.KindSuccess, message)
}

func (n *lineNotifier) Error(message string) notify.Notification {
	return n.show(notify.KindError, message)
}
