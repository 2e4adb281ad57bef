package snake

import (
	"fmt"
	"io"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// PromptFlagBool asks for a boolean flag. An empty answer keeps the default.
func PromptFlagBool(cmd *cobra.Command, f *pflag.Flag) (string, error) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", asFlags(f), f.Usage)

	validInput := "true/false"
	if defTrue, err := ParseBool(f.DefValue); err == nil {
		if defTrue {
			validInput = "[true]/false"
		} else {
			validInput = "true/[false]"
		}
	}

	validate := func(input string) error {
		if input == "" {
			return nil
		}
		_, err := ParseBool(input)
		return err
	}

	templates := &promptui.PromptTemplates{
		Prompt:  "Answer {{ . }} : ",
		Valid:   "Answer {{ . | green }} : ",
		Invalid: "Answer {{ . | red }} : ",
		Success: "{{ . | bold }} : ",
	}

	prompt := promptui.Prompt{
		Label:     validInput,
		Templates: templates,
		Validate:  validate,
		Stdin:     io.NopCloser(cmd.InOrStdin()),
		Stdout:    nopCloser{cmd.OutOrStdout()},
	}

	result, err := prompt.Run()
	if err != nil {
		return "", err
	}
	if result == "" {
		return "", nil
	}
	r, _ := ParseBool(result)
	return strconv.FormatBool(r), nil
}

// ParseBool is strconv.ParseBool with the addition of Yes/No parsing.
func ParseBool(str string) (bool, error) {
	switch str {
	case "1", "t", "T", "true", "TRUE", "True", "y", "Y", "yes", "YES", "Yes":
		return true, nil
	case "0", "f", "F", "false", "FALSE", "False", "n", "N", "NO", "No":
		return false, nil
	}
	return false, &strconv.NumError{Func: "ParseBool", Num: str, Err: strconv.ErrSyntax}
}
