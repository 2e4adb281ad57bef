// Package snake walks a user through the flags of a command with interactive
// prompts.
package snake

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"tableflip.dev/diary/pkg/entry"
	"tableflip.dev/diary/pkg/glyph"
)

type kindItem struct {
	Kind   entry.Kind
	Symbol string
}

// PromptKind asks which kind of entry to add.
func PromptKind(cmd *cobra.Command) (entry.Kind, error) {
	items := make([]kindItem, 0, len(entry.Kinds()))
	for _, k := range entry.Kinds() {
		items = append(items, kindItem{Kind: k, Symbol: glyph.For(k).Symbol})
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}?",
		Active:   "➜  {{ .Symbol }} {{ .Kind | bold }}",
		Inactive: "   {{ .Symbol }} {{ .Kind }}",
		Selected: "{{ .Kind | bold }}",
	}

	searcher := func(input string, index int) bool {
		name := strings.ToLower(string(items[index].Kind))
		input = strings.Replace(strings.ToLower(input), " ", "", -1)
		return strings.Contains(name, input)
	}

	prompt := promptui.Select{
		HideHelp:  true,
		Label:     "Kind",
		Items:     items,
		Templates: templates,
		Searcher:  searcher,
		Stdin:     io.NopCloser(cmd.InOrStdin()),
		Stdout:    nopCloser{cmd.OutOrStdout()},
	}

	i, _, err := prompt.Run()
	if err != nil {
		return "", err
	}
	return items[i].Kind, nil
}

// PromptText asks for a required line of text.
func PromptText(cmd *cobra.Command, label string) (string, error) {
	prompt := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("empty")
			}
			return nil
		},
		Stdin:  io.NopCloser(cmd.InOrStdin()),
		Stdout: nopCloser{cmd.OutOrStdout()},
	}
	result, err := prompt.Run()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(result), nil
}

// PromptFlags asks for every named flag that was not set on the command
// line and sets the answers on cmd. Empty answers keep the default.
func PromptFlags(cmd *cobra.Command, names ...string) error {
	flagset := cmd.Flags()
	for _, name := range names {
		f := flagset.Lookup(name)
		if f == nil || f.Changed {
			continue
		}

		var (
			answer string
			err    error
		)
		switch t := f.Value.Type(); t {
		case "bool":
			answer, err = PromptFlagBool(cmd, f)
		case "string":
			answer, err = PromptFlagString(cmd, f)
		default:
			err = fmt.Errorf("%q flag type not yet supported", t)
		}
		if err != nil {
			return err
		}
		if answer == "" {
			continue
		}
		if err := flagset.Set(f.Name, answer); err != nil {
			return fmt.Errorf("--%s: %w", f.Name, err)
		}
	}
	return nil
}

func asFlags(f *pflag.Flag) string {
	if f.Shorthand != "" {
		return fmt.Sprintf("--%s, -%s", f.Name, f.Shorthand)
	}
	return fmt.Sprintf("--%s", f.Name)
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
