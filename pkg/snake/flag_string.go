package snake

import (
	"fmt"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// PromptFlagString asks for a string flag. An empty answer keeps the
// default.
func PromptFlagString(cmd *cobra.Command, f *pflag.Flag) (string, error) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", asFlags(f), f.Usage)

	label := "optional"
	if f.DefValue != "" {
		label = fmt.Sprintf(`["%s"]`, f.DefValue)
	}

	templates := &promptui.PromptTemplates{
		Prompt:  "Answer {{ . }} : ",
		Valid:   "Answer {{ . | green }} : ",
		Invalid: "Answer {{ . | red }} : ",
		Success: "{{ . | bold }} : ",
	}

	prompt := promptui.Prompt{
		Label:     label,
		Templates: templates,
		Stdin:     io.NopCloser(cmd.InOrStdin()),
		Stdout:    nopCloser{cmd.OutOrStdout()},
	}

	result, err := prompt.Run()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(result), nil
}
