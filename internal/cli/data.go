package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-tplforge/internal/datafile"
	"github.com/goliatone/go-tplforge/internal/prompt"
)

// dataFlags are the template context flags shared by every rendering command.
type dataFlags struct {
	file string
	sets []string
	asks []string
}

func (d *dataFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&d.file, "data", "d", "", "YAML or JSON file with template data (- for stdin)")
	flags.StringArrayVar(&d.sets, "set", nil, "Set a value, e.g. --set release.version=1.2.0")
	flags.StringArrayVar(&d.asks, "ask", nil, "Prompt for a value, e.g. --ask name")
}

// context builds the template data: the data file first, then --set
// assignments, then prompted answers.
func (d *dataFlags) context(cmd *cobra.Command, driver prompt.Driver) (map[string]any, error) {
	data := map[string]any{}

	if d.file != "" {
		loaded, err := loadData(d.file, cmd.InOrStdin())
		if err != nil {
			return nil, err
		}
		data = datafile.Merge(data, loaded)
	}

	for _, assignment := range d.sets {
		value, err := datafile.ParseSet(assignment)
		if err != nil {
			return nil, err
		}
		data = datafile.Merge(data, value)
	}

	if len(d.asks) == 0 {
		return data, nil
	}

	defaults := make(map[string]string, len(d.asks))
	for _, key := range d.asks {
		if value, ok := lookup(data, key); ok {
			defaults[key] = fmt.Sprint(value)
		}
	}
	answers, err := prompt.Ask(cmd.Context(), driver, d.asks, defaults)
	if err != nil {
		return nil, err
	}
	for _, key := range d.asks {
		answer, ok := answers[strings.TrimSpace(key)]
		if !ok {
			continue
		}
		value, err := datafile.ParseSet(strings.TrimSpace(key) + "=" + answer)
		if err != nil {
			return nil, err
		}
		data = datafile.Merge(data, value)
	}
	return data, nil
}

func loadData(path string, stdin io.Reader) (map[string]any, error) {
	if path != datafile.Stdin {
		return datafile.Load(path)
	}
	data, err := datafile.Decode(stdin)
	if err != nil {
		return nil, fmt.Errorf("datafile: stdin: %w", err)
	}
	return data, nil
}

func lookup(data map[string]any, key string) (any, bool) {
	var cur any = data
	for _, part := range strings.Split(strings.TrimSpace(key), ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}
