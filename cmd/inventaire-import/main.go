package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/mautomotiv/inventaire/internal/client"
	"github.com/mautomotiv/inventaire/internal/config"
	"github.com/mautomotiv/inventaire/internal/importer"
	"github.com/mautomotiv/inventaire/internal/logging"
	"github.com/mautomotiv/inventaire/internal/model"
	"github.com/mautomotiv/inventaire/internal/normalize"
	"github.com/mautomotiv/inventaire/internal/sheet"
)

type options struct {
	config.Import
	File     string
	Branch   string
	Kind     string
	Synonyms string
}

func main() {
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	opts := options{Import: config.LoadImport()}

	fs := pflag.NewFlagSet("inventaire-import", pflag.ContinueOnError)
	fs.StringVarP(&opts.File, "file", "f", "", "spreadsheet to import (.xlsx or .csv)")
	fs.StringVarP(&opts.Branch, "branch", "b", "", "branch the records belong to")
	fs.StringVarP(&opts.Kind, "kind", "k", "", "pc, printer or consumable")
	fs.StringVarP(&opts.Synonyms, "synonyms", "s", "", "YAML file with extra header synonyms")
	fs.StringVar(&opts.APIURL, "api-url", opts.APIURL, "inventory API base URL")
	fs.StringVarP(&opts.User, "user", "u", opts.User, "username to log in with")
	fs.StringVarP(&opts.Password, "password", "p", opts.Password, "password (prefer INVENTAIRE_PASSWORD)")
	fs.StringVar(&opts.Token, "token", opts.Token, "existing bearer token instead of logging in")
	fs.DurationVar(&opts.HTTPTimeout, "timeout", opts.HTTPTimeout, "per-request timeout")
	fs.IntVar(&opts.MaxAttempts, "attempts", opts.MaxAttempts, "attempts per row and pass")
	fs.StringVarP(&opts.LogPath, "log", "l", opts.LogPath, "log file path")
	fs.StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "debug, info, warn or error")

	fs.Usage = func() {
		fmt.Fprintf(os.Stdout, "Usage: inventaire-import -f <file> -b <branch> -k <kind> [flags]\n\nFlags:\n%s", fs.FlagUsages())
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	level, err := logging.ParseLevel(opts.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	closeLog, err := logging.Setup(opts.LogPath, level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		closeLog()
		os.Exit(1)
	}
}

func run(opts options) error {
	if opts.File == "" || opts.Branch == "" || opts.Kind == "" {
		return fmt.Errorf("--file, --branch and --kind are required")
	}

	schema, ok := sheet.SchemaFor(opts.Kind)
	if !ok {
		return fmt.Errorf("unknown kind %q: use pc, printer or consumable", opts.Kind)
	}
	if opts.Synonyms != "" {
		extra, err := sheet.LoadSynonyms(opts.Synonyms)
		if err != nil {
			return err
		}
		schema = extra.Apply(schema)
	}

	f, err := os.Open(opts.File)
	if err != nil {
		return err
	}
	defer f.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cl := client.New(opts.APIURL, opts.HTTPTimeout)
	if opts.Token != "" {
		cl.SetToken(opts.Token)
	} else {
		if opts.User == "" || opts.Password == "" {
			return fmt.Errorf("--user and --password (or --token) are required")
		}
		user, err := cl.Login(ctx, opts.User, opts.Password)
		if err != nil {
			return err
		}
		slog.Info("logged in", "user", user.Username, "role", user.Role)
		defer func() {
			if err := cl.Logout(context.Background()); err != nil {
				slog.Warn("logout failed", "error", err)
			}
		}()
	}

	name := filepath.Base(opts.File)
	switch opts.Kind {
	case sheet.ConsumableSchema.Name:
		return importFile(ctx, opts, f, cl.SubmitConsumable, importer.Job[model.Consumable]{
			FileName: name, Schema: schema, Branch: opts.Branch, Normalize: normalize.Consumable,
		})
	case sheet.PrinterSchema.Name:
		return importFile(ctx, opts, f, cl.SubmitInventoryItem, importer.Job[model.InventoryItem]{
			FileName: name, Schema: schema, Branch: opts.Branch, Normalize: normalize.Printer,
		})
	default:
		return importFile(ctx, opts, f, cl.SubmitInventoryItem, importer.Job[model.InventoryItem]{
			FileName: name, Schema: schema, Branch: opts.Branch, Normalize: normalize.PC,
		})
	}
}

// importFile runs one import and prints its progress and failures. Rows that
// fail do not make the command fail.
func importFile[T any](ctx context.Context, opts options, r io.Reader, submit importer.Submitter[T], job importer.Job[T]) error {
	o := importer.New(submit)
	o.Retry = importer.RetryPolicy{MaxAttempts: opts.MaxAttempts, BackoffBase: opts.BackoffBase}
	o.PassDelay = opts.PassDelay
	o.HoldDelay = opts.HoldDelay
	o.OnProgress = func(p importer.Progress[T]) {
		fmt.Fprintf(os.Stdout, "\r%s: %d/%d  ok %d  failed %d  queued %d",
			p.FileName, p.CurrentRow, p.TotalRows, p.SuccessCount, p.FailureCount, len(p.RetryQueued))
	}

	p, err := importer.Import(ctx, o, r, job)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout)
	printReport(os.Stdout, job.Branch, p)
	return nil
}

func printReport[T any](w io.Writer, branch string, p importer.Progress[T]) {
	fmt.Fprintf(w, "Imported %d of %d rows from %s into %s.\n",
		p.SuccessCount, p.TotalRows, p.FileName, branch)
	if len(p.Errors) == 0 {
		return
	}
	fmt.Fprintf(w, "%d rows failed:\n", p.FailureCount)
	for _, e := range p.Errors {
		fmt.Fprintf(w, "  row %d: %s\n", e.Row, e.Message)
	}
}
