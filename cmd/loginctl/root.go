package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ericfisherdev/logingate/internal/adapter/driven/registry"
	sqliteadapter "github.com/ericfisherdev/logingate/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/logingate/internal/application"
	"github.com/ericfisherdev/logingate/internal/config"
)

// GlobalOptions are shared by every subcommand.
type GlobalOptions struct {
	DBPath         string
	ExtensionsFile string
	Extension      string
	Verbose        bool
}

// AddFlags adds flags for the options to a flagset
func (o *GlobalOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.DBPath, "db", "", "path to the logins database (default $LOGINGATE_DB_PATH or logingate.db)")
	fs.StringVar(&o.ExtensionsFile, "extensions", "", "path to the extension registry (default $LOGINGATE_EXTENSIONS_FILE or extensions.yaml)")
	fs.StringVarP(&o.Extension, "as", "a", "", "id or uuid of the extension to act as")
	fs.BoolVarP(&o.Verbose, "verbose", "v", false, "log debug output to stderr")
}

// Complete fills unset paths from the environment configuration and
// validates the result.
func (o *GlobalOptions) Complete() error {
	if err := o.applyDefaults(); err != nil {
		return err
	}
	return o.Validate()
}

func (o *GlobalOptions) applyDefaults() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if o.DBPath == "" {
		o.DBPath = cfg.DBPath
	}
	if o.ExtensionsFile == "" {
		o.ExtensionsFile = cfg.ExtensionsFile
	}
	return nil
}

// Validate checks that an extension to act as was given.
func (o *GlobalOptions) Validate() error {
	if o.Extension == "" {
		return errors.New("no extension specified, use --as")
	}
	return nil
}

// session is an opened database plus the API scoped to the chosen extension.
type session struct {
	api   *application.LoginAPI
	close func() error
}

// open resolves the extension, opens and migrates the database, and scopes
// a LoginAPI to the extension.
func (o *GlobalOptions) open(ctx context.Context) (*session, error) {
	if err := o.Complete(); err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	reg, err := registry.Load(o.ExtensionsFile)
	if err != nil {
		return nil, err
	}
	caller, err := reg.Lookup(ctx, o.Extension)
	if err != nil {
		return nil, fmt.Errorf("extension %q: %w", o.Extension, err)
	}

	db, err := sqliteadapter.NewDB(ctx, o.DBPath)
	if err != nil {
		return nil, err
	}
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &session{
		api:   application.NewLoginAPI(sqliteadapter.NewLoginRepo(db), caller, logger),
		close: db.Close,
	}, nil
}

// NewRootCommand creates the loginctl command tree.
func NewRootCommand(ctx context.Context) *cobra.Command {
	opts := &GlobalOptions{}
	cmd := &cobra.Command{
		Use:          "loginctl",
		Short:        "search, store and remove saved logins as an extension would",
		SilenceUsage: true,
	}
	opts.AddFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewSearchCommand(ctx, opts))
	cmd.AddCommand(NewStoreCommand(ctx, opts))
	cmd.AddCommand(NewRemoveCommand(ctx, opts))
	cmd.AddCommand(NewExtensionsCommand(ctx, opts))
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
