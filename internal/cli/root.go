// Package cli wires the tplforge commands.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	tplforge "github.com/goliatone/go-tplforge"
	"github.com/goliatone/go-tplforge/internal/config"
	"github.com/goliatone/go-tplforge/internal/logger"
	"github.com/goliatone/go-tplforge/internal/prompt"
	"github.com/goliatone/go-tplforge/pkg/render"
	"github.com/goliatone/go-tplforge/pkg/render/template/pongo"
)

// app is the state shared by the commands of one root command.
type app struct {
	v          *viper.Viper
	configFile string
	fs         afero.Fs
	driver     prompt.Driver

	cfg      config.Config
	registry *render.Registry
}

// NewRootCmd creates the tplforge root command.
func NewRootCmd() *cobra.Command {
	return newRootCmd(prompt.NewSurveyDriver(), afero.NewOsFs())
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func newRootCmd(driver prompt.Driver, fsys afero.Fs) *cobra.Command {
	a := &app{
		v:      viper.New(),
		fs:     fsys,
		driver: driver,
	}

	rootCmd := &cobra.Command{
		Use:   "tplforge",
		Short: "Render templates into new or existing files",
		Example: `$ tplforge list
  $ tplforge render hello.txt --set name=World
  $ tplforge generate note.md notes/today.md --data note.yaml
  $ tplforge append changelog-entry.md CHANGELOG.md --set version=1.2.0 --ask date`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "Path to configuration file")
	flags.String(config.KeyTemplatesDir, "", "Load templates from this directory instead of the bundled ones")
	flags.String(config.KeyExtension, "", "Extension appended to template names that lack it")
	flags.String(config.KeyLogLevel, logger.DefaultLevel, "Log level (debug, info, warn, error)")
	a.bindFlags(flags, config.KeyTemplatesDir, config.KeyExtension, config.KeyLogLevel)

	rootCmd.AddCommand(
		newRenderCmd(a),
		newGenerateCmd(a),
		newAppendCmd(a),
		newListCmd(a),
	)

	return rootCmd
}

func (a *app) bindFlags(flags *pflag.FlagSet, keys ...string) {
	for _, key := range keys {
		if err := a.v.BindPFlag(key, flags.Lookup(key)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", key, err))
		}
	}
}

// setup loads configuration, configures logging and builds the registry
// before any subcommand runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := logger.Setup(cmd.ErrOrStderr(), cfg.LogLevel); err != nil {
		return err
	}
	a.cfg = cfg

	registry, err := a.newRegistry()
	if err != nil {
		return err
	}
	a.registry = registry
	return nil
}

func (a *app) newRegistry() (*render.Registry, error) {
	var options []pongo.Option
	if a.cfg.Extension != "" {
		options = append(options, pongo.WithExtension(a.cfg.Extension))
	}
	if len(a.cfg.Globals) > 0 {
		options = append(options, pongo.WithGlobalData(a.cfg.Globals))
	}

	log := logger.Named("registry")
	if a.cfg.TemplatesDir == "" {
		log.Debug("using bundled templates")
		return tplforge.NewEmbeddedRegistry(options...)
	}

	log.WithField("dir", a.cfg.TemplatesDir).Debug("using templates directory")
	engine, err := pongo.New(append([]pongo.Option{pongo.WithBaseDir(a.cfg.TemplatesDir)}, options...)...)
	if err != nil {
		return nil, err
	}
	return render.NewRegistryFromEngine(engine), nil
}
