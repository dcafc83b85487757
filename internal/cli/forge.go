package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-tplforge/internal/config"
	"github.com/goliatone/go-tplforge/internal/logger"
	"github.com/goliatone/go-tplforge/pkg/forge"
	"github.com/goliatone/go-tplforge/pkg/render"
)

func newGenerateCmd(a *app) *cobra.Command {
	var data dataFlags

	cmd := &cobra.Command{
		Use:   "generate <template> <path>",
		Short: "Render a template into a new file",
		Long: `Render a template into a new file.

Fails if the path already exists. If rendering fails the partial file is
removed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			renderable, err := a.bind(cmd, &data, args[0])
			if err != nil {
				return err
			}
			options, err := a.forgeOptions()
			if err != nil {
				return err
			}
			if err := render.Generate(renderable, options...).Forge(args[1]); err != nil {
				return err
			}
			logger.Named("generate").WithField("path", args[1]).Info("generated")
			return nil
		},
	}
	data.register(cmd)
	cmd.Flags().String(config.KeyPerm, "0644", "Permission bits for the new file")
	cmd.Flags().Bool(config.KeyCreateDirs, true, "Create missing parent directories")
	a.bindFlags(cmd.Flags(), config.KeyPerm, config.KeyCreateDirs)

	return cmd
}

func newAppendCmd(a *app) *cobra.Command {
	var data dataFlags

	cmd := &cobra.Command{
		Use:   "append <template> <path>",
		Short: "Render a template onto the end of an existing file",
		Long: `Render a template onto the end of an existing file.

Fails if the path does not exist. If rendering fails the file is restored to
its previous length.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			renderable, err := a.bind(cmd, &data, args[0])
			if err != nil {
				return err
			}
			options, err := a.forgeOptions()
			if err != nil {
				return err
			}
			if err := render.Append(renderable, options...).Forge(args[1]); err != nil {
				return err
			}
			logger.Named("append").WithField("path", args[1]).Info("appended")
			return nil
		},
	}
	data.register(cmd)

	return cmd
}

func (a *app) forgeOptions() ([]forge.Option, error) {
	perm, err := a.cfg.FileMode()
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	return []forge.Option{
		forge.WithFS(a.fs),
		forge.WithPerm(perm),
		forge.WithCreateDirs(a.cfg.CreateDirs),
		forge.WithLogger(logger.Named("forge")),
	}, nil
}
