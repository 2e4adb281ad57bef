package commands

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"tableflip.dev/diary/pkg/classify"
	"tableflip.dev/diary/pkg/runner/record"
)

func addRecord(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "record [pcm-file|-]",
		Aliases: []string{"rec", "voice"},
		Short:   "Speak an entry; the recording is transcribed and classified",
		Long: `Record streams raw 16 kHz mono signed 16-bit little-endian PCM to the live
model. The recording ends when the audio ends or on interrupt, and the model's
final answer is stored as one entry.`,
		Example: `
arecord -q -f S16_LE -r 16000 -c 1 -t raw | diary record -
diary record memo.pcm
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			return withEnv(cmd.Context(), func(e *env) error {
				if e.Classifier == nil {
					return errors.New("recording needs gemini.api_key to be configured")
				}
				var audio io.ReadCloser = os.Stdin
				if path != "-" {
					f, err := os.Open(path)
					if err != nil {
						return err
					}
					audio = f
				}
				s := record.Record{
					Service:  e.Service,
					Recorder: classify.NewRecorder(e.Classifier),
					Audio:    audio,
					Out:      cmd.OutOrStdout(),
				}
				return output.HandleError(s.Do(cmd.Context()))
			})
		},
	}

	output.AddOutputArg(cmd)
	topLevel.AddCommand(cmd)
}
