package commands

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/diary/pkg/commands/options"
	"tableflip.dev/diary/pkg/entry"
	"tableflip.dev/diary/pkg/runner/add"
	"tableflip.dev/diary/pkg/snake"
)

// manualFunc adds an entry of one kind; interactive prompts for what the
// arguments and flags left out.
type manualFunc func(ctx context.Context, args []string, interactive bool) error

func addAdd(topLevel *cobra.Command) {
	io := &options.IDOptions{}
	in := &options.InteractiveOptions{}
	manual := map[entry.Kind]manualFunc{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add something, letting the model decide what it is",
		Example: `
diary add spent 12 on lunch at the corner cafe
diary add dentist next tuesday at 3pm
diary add note this is a note
diary add receipt ./lunch.jpg
diary add -i
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 && !in.Interactive {
				return errors.New("requires some text")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Interactive {
				kind, err := snake.PromptKind(cmd)
				if err != nil {
					return err
				}
				return manual[kind](cmd.Context(), args, true)
			}
			return withEnv(cmd.Context(), func(e *env) error {
				s := add.Add{
					Service: e.Service,
					Text:    strings.Join(args, " "),
					ShowID:  io.ShowID,
					Out:     cmd.OutOrStdout(),
				}
				return output.HandleError(s.Do(cmd.Context()))
			})
		},
	}

	options.AddShowIDArgs(cmd, io)
	options.InteractiveArgs(cmd, in)
	output.AddOutputArg(cmd)

	manual[entry.Note] = addManual(cmd, entry.Note, []string{"notes", "nota"}, "Add a note", "diary add note call the plumber")
	manual[entry.Event] = addManual(cmd, entry.Event, []string{"events", "evento"}, "Add an event", `diary add event team dinner --on=friday --at="friday 18:00"`)
	manual[entry.Expense] = addManual(cmd, entry.Expense, []string{"expenses", "despesa"}, "Add an expense", "diary add expense groceries --amount=42.10 --vendor=Market --category=food")
	addReceipt(cmd)

	topLevel.AddCommand(cmd)
}

func addManual(parent *cobra.Command, kind entry.Kind, aliases []string, short, example string) manualFunc {
	ao := &options.AddOptions{}
	io := &options.IDOptions{}
	in := &options.InteractiveOptions{}

	prompted := []string{"on", "at"}
	if kind == entry.Expense {
		prompted = append(prompted, "amount", "vendor", "category")
	}

	cmd := &cobra.Command{
		Use:     kind.String(),
		Aliases: aliases,
		Short:   short,
		Example: "\n" + example + "\n",
	}

	run := func(ctx context.Context, args []string, interactive bool) error {
		description := strings.Join(args, " ")
		if interactive {
			if strings.TrimSpace(description) == "" {
				var err error
				if description, err = snake.PromptText(cmd, "Description"); err != nil {
					return err
				}
			}
			if err := snake.PromptFlags(cmd, prompted...); err != nil {
				return err
			}
		}
		m, err := ao.Manual(kind, description, time.Now())
		if err != nil {
			return err
		}
		return withEnv(ctx, func(e *env) error {
			s := add.Add{
				Service: e.Service,
				Manual:  &m,
				ShowID:  io.ShowID,
				Out:     cmd.OutOrStdout(),
			}
			return output.HandleError(s.Do(ctx))
		})
	}

	cmd.Args = func(cmd *cobra.Command, args []string) error {
		if len(args) < 1 && !in.Interactive {
			return errors.New("requires a description")
		}
		return nil
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), args, in.Interactive)
	}

	if kind == entry.Expense {
		options.AddExpenseArgs(cmd, ao)
	} else {
		options.AddEntryArgs(cmd, ao)
	}
	options.AddShowIDArgs(cmd, io)
	options.InteractiveArgs(cmd, in)
	output.AddOutputArg(cmd)
	parent.AddCommand(cmd)
	return run
}

func addReceipt(parent *cobra.Command) {
	var (
		note     string
		mimeType string
	)
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:     "receipt <image|->",
		Aliases: []string{"recibo"},
		Short:   "Add an expense read from a photo of a receipt",
		Example: `
diary add receipt ./lunch.jpg --note="team lunch"
cat scan.png | diary add receipt -
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(e *env) error {
				s := add.Add{
					Service:     e.Service,
					ReceiptPath: args[0],
					ReceiptMIME: mimeType,
					Text:        note,
					ShowID:      io.ShowID,
					Out:         cmd.OutOrStdout(),
				}
				return output.HandleError(s.Do(cmd.Context()))
			})
		},
	}

	cmd.Flags().StringVar(&note, "note", "", "Extra context for the receipt.")
	cmd.Flags().StringVar(&mimeType, "mime", "", "Image type, detected from the content when empty.")
	options.AddShowIDArgs(cmd, io)
	output.AddOutputArg(cmd)
	parent.AddCommand(cmd)
}
