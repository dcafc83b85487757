package cli

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-tplforge/pkg/render"
)

func newRenderCmd(a *app) *cobra.Command {
	var data dataFlags

	cmd := &cobra.Command{
		Use:   "render <template>",
		Short: "Render a template to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			renderable, err := a.bind(cmd, &data, args[0])
			if err != nil {
				return err
			}
			return renderable.Render(cmd.OutOrStdout())
		},
	}
	data.register(cmd)

	return cmd
}

// bind resolves the template context and returns the template bound to it.
func (a *app) bind(cmd *cobra.Command, data *dataFlags, name string) (render.Renderable, error) {
	values, err := data.context(cmd, a.driver)
	if err != nil {
		return nil, err
	}
	tmpl := render.NewTemplate[map[string]any](name, render.WithRegistry(a.registry))
	return tmpl.Bind(values), nil
}
