package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/examterm/examterm/internal/definition"
	"github.com/examterm/examterm/internal/eval"
	"github.com/examterm/examterm/internal/export"
	"github.com/examterm/examterm/internal/handler"
	appI18n "github.com/examterm/examterm/internal/i18n"
	"github.com/examterm/examterm/internal/model"
	"github.com/examterm/examterm/internal/session"
	"github.com/examterm/examterm/internal/store"
	"github.com/examterm/examterm/internal/ui"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "examterm",
		Short:         "Terminal-based multiple-choice exam runner",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	take := takeCmd()
	root.AddCommand(take, historyCmd(), exportCmd(), serveCmd())

	// Make "take" the default when no subcommand is given.
	root.RunE = take.RunE

	// Register take flags on root so bare `examterm -e exam.yml` still works.
	root.Flags().AddFlagSet(take.Flags())

	return root
}

func takeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "take",
		Short: "Take an exam in the terminal",
		RunE:  runTake,
	}
	f := cmd.Flags()
	f.StringP("examfile", "e", "", "Exam definition YAML (path or http(s) URL)")
	f.BoolP("sample", "s", false, "Run the built-in sample exam")
	f.String("db", "examterm.db", "SQLite attempt history path (empty disables history)")
	f.StringP("lang", "l", "en", "UI language (en, ru)")
	f.StringP("output-dir", "o", ".", "Directory for saved result PDFs")
	f.Duration("tick", ui.DefaultTick, "Timer and redraw interval")
	f.String("log-file", "", "Write logs to this file (default: discard while the exam screen is up)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored exam attempts",
		RunE:  runHistory,
	}
	f := cmd.Flags()
	f.String("db", "examterm.db", "SQLite attempt history path")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored attempts as JSON",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("db", "examterm.db", "SQLite attempt history path")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the attempt history as a JSON API",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "examterm.db", "SQLite attempt history path")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

// setupLogging configures slog from the command's flags. A raw-mode exam
// screen would scramble interleaved stderr output, so out overrides the
// destination for the take command.
func setupLogging(cmd *cobra.Command, out io.Writer) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	if out == nil {
		out = os.Stderr
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(out, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(out, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("EXAMTERM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("examterm")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/examterm")
	v.AddConfigPath("/etc/examterm")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	}

	return v
}

func runTake(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)

	logOut := io.Discard
	if path := v.GetString("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	setupLogging(cmd, logOut)

	if err := appI18n.Init(v.GetString("lang")); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	def, err := loadDefinition(v)
	if err != nil {
		return err
	}

	var db *store.Store
	if path := v.GetString("db"); path != "" {
		db, err = store.New(path)
		if err != nil {
			return fmt.Errorf("open attempt history: %w", err)
		}
		defer db.Close()
	}

	tick := v.GetDuration("tick")
	u := ui.New(ui.WithTick(tick))
	if err := u.Open(); err != nil {
		return err
	}
	defer u.Close()

	for {
		choice, err := u.Menu(def)
		if err != nil {
			return err
		}
		if choice == ui.MenuQuit {
			return nil
		}

		sum, err := runAttempt(def, u, db, tick)
		if err != nil {
			return err
		}

		rc, err := u.Result(sum)
		if err != nil {
			return err
		}
		switch rc {
		case ui.ResultSavePDF:
			path := export.DefaultPDFPath(v.GetString("output-dir"), sum.FinishedAt)
			if err := export.SavePDF(path, sum); err != nil {
				return fmt.Errorf("save result pdf: %w", err)
			}
			slog.Info("saved result pdf", "path", path)
			return nil
		case ui.ResultMenu:
			// Back to the menu for another attempt.
		case ui.ResultQuit:
			return nil
		}
	}
}

// runAttempt drives one full exam attempt and records it in the history
// store when one is open.
func runAttempt(def *model.ExamDefinition, u *ui.UI, db *store.Store, tick time.Duration) (model.EvaluationSummary, error) {
	sess := session.New(def, session.WithTick(tick))
	if err := sess.Begin(); err != nil {
		return model.EvaluationSummary{}, fmt.Errorf("begin attempt: %w", err)
	}
	if err := u.Exam(sess); err != nil {
		return model.EvaluationSummary{}, err
	}

	snap := sess.Snapshot()
	sum := eval.Evaluate(def, sess.Questions(), sess.State())

	if db != nil {
		attempt := export.BuildAttempt(def, sum, sess.Questions(), snap.Quit)
		if id, err := db.SaveAttempt(attempt); err != nil {
			slog.Error("save attempt", "error", err)
		} else {
			slog.Info("saved attempt", "id", id, "result", sum.Label)
		}
	}
	return sum, nil
}

func loadDefinition(v *viper.Viper) (*model.ExamDefinition, error) {
	examfile := v.GetString("examfile")
	switch {
	case v.GetBool("sample"):
		return definition.Sample()
	case examfile != "":
		def, err := definition.Load(examfile)
		if err != nil {
			return nil, fmt.Errorf("load exam %s: %w", examfile, err)
		}
		return def, nil
	default:
		return nil, fmt.Errorf("no exam given: pass --examfile or --sample")
	}
}

func runHistory(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd, nil)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open attempt history: %w", err)
	}
	defer db.Close()

	attempts, err := db.ListAttempts()
	if err != nil {
		return fmt.Errorf("list attempts: %w", err)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tEXAM\tRESULT\tSCORE\tANSWERED")
	for _, a := range attempts {
		result := "FAILED"
		if a.Passed {
			result = "PASSED"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f%%\t%d/%d\n",
			a.StartedAt.Format("2006-01-02 15:04"),
			a.ExamTitle,
			result,
			a.PercentCorrect,
			a.AnsweredCount,
			a.TotalQuestions,
		)
	}
	return tw.Flush()
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd, nil)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open attempt history: %w", err)
	}
	defer db.Close()

	attempts, err := db.ExportAll()
	if err != nil {
		return fmt.Errorf("export attempts: %w", err)
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	return export.WriteJSON(w, attempts)
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd, nil)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open attempt history: %w", err)
	}
	defer db.Close()

	h := handler.New(db)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	h.Routes(r)

	addr := v.GetString("addr")
	slog.Info("starting history server", "addr", addr, "db", v.GetString("db"))
	return http.ListenAndServe(addr, r)
}
