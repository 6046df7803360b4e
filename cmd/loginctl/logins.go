package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ericfisherdev/logingate/internal/adapter/driven/registry"
	"github.com/ericfisherdev/logingate/internal/domain/model"
)

// RecordFlags binds one flag per public record field.
type RecordFlags struct {
	fs *pflag.FlagSet

	Origin        string
	FormSubmitURL string
	Realm         string
	Username      string
	Password      string
	UsernameField string
	PasswordField string
}

// AddFlags adds flags for the options to a flagset
func (o *RecordFlags) AddFlags(fs *pflag.FlagSet) {
	o.fs = fs
	fs.StringVar(&o.Origin, "origin", "", "origin (scheme://host[:port]) of the login")
	fs.StringVar(&o.FormSubmitURL, "form-submit-url", "", "form action URL of the login")
	fs.StringVar(&o.Realm, "realm", "", "HTTP authentication realm of the login")
	fs.StringVar(&o.Username, "username", "", "username")
	fs.StringVar(&o.Password, "password", "", "password")
	fs.StringVar(&o.UsernameField, "username-field", "", "name of the username form field")
	fs.StringVar(&o.PasswordField, "password-field", "", "name of the password form field")
}

// set returns a pointer to value when the flag was given, nil otherwise, so
// that "--realm=”" and an absent --realm stay distinguishable.
func (o *RecordFlags) set(name, value string) *string {
	if o.fs == nil || !o.fs.Changed(name) {
		return nil
	}
	return &value
}

// Query builds a query constraining only the fields given on the command line.
func (o *RecordFlags) Query() model.Query {
	return model.Query{
		Origin:        o.set("origin", o.Origin),
		FormSubmitURL: o.set("form-submit-url", o.FormSubmitURL),
		Realm:         o.set("realm", o.Realm),
		Username:      o.set("username", o.Username),
		Password:      o.set("password", o.Password),
		UsernameField: o.set("username-field", o.UsernameField),
		PasswordField: o.set("password-field", o.PasswordField),
	}
}

// Record builds a record from the command line; unset nullable fields are nil.
func (o *RecordFlags) Record() model.Record {
	return model.Record{
		Origin:        o.Origin,
		FormSubmitURL: o.set("form-submit-url", o.FormSubmitURL),
		Realm:         o.set("realm", o.Realm),
		Username:      o.Username,
		Password:      o.Password,
		UsernameField: o.set("username-field", o.UsernameField),
		PasswordField: o.set("password-field", o.PasswordField),
	}
}

// NewSearchCommand creates the "search" subcommand.
func NewSearchCommand(ctx context.Context, global *GlobalOptions) *cobra.Command {
	fields := &RecordFlags{}
	cmd := &cobra.Command{
		Use:   "search",
		Short: "print the logins visible to the extension that match the given fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := global.open(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = s.close() }()

			records, err := s.api.Search(ctx, fields.Query())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), records)
		},
	}
	fields.AddFlags(cmd.Flags())
	return cmd
}

// NewStoreCommand creates the "store" subcommand.
func NewStoreCommand(ctx context.Context, global *GlobalOptions) *cobra.Command {
	fields := &RecordFlags{}
	cmd := &cobra.Command{
		Use:   "store",
		Short: "save a new login on behalf of the extension",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := global.open(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = s.close() }()

			if err := s.api.Store(ctx, fields.Record()); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "stored")
			return err
		},
	}
	fields.AddFlags(cmd.Flags())
	return cmd
}

// NewRemoveCommand creates the "remove" subcommand.
func NewRemoveCommand(ctx context.Context, global *GlobalOptions) *cobra.Command {
	fields := &RecordFlags{}
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "delete the logins visible to the extension that match the given fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := global.open(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = s.close() }()

			if err := s.api.Remove(ctx, fields.Query()); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "removed")
			return err
		},
	}
	fields.AddFlags(cmd.Flags())
	return cmd
}

type extensionOutput struct {
	ID              string   `json:"id"`
	UUID            string   `json:"uuid"`
	HostPermissions []string `json:"hostPermissions"`
}

// NewExtensionsCommand creates the "extensions" subcommand.
func NewExtensionsCommand(ctx context.Context, global *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "extensions",
		Short: "list registered extensions and their host permissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := global.applyDefaults(); err != nil {
				return err
			}
			reg, err := registry.Load(global.ExtensionsFile)
			if err != nil {
				return err
			}
			callers, err := reg.List(ctx)
			if err != nil {
				return err
			}

			out := make([]extensionOutput, 0, len(callers))
			for _, c := range callers {
				hosts := make([]string, 0, len(c.Hosts))
				for _, p := range c.Hosts {
					hosts = append(hosts, p.String())
				}
				out = append(out, extensionOutput{ID: c.ExtensionID, UUID: c.InstanceID, HostPermissions: hosts})
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}
