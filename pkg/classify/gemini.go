package classify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// GeminiConfig configures the hosted Gemini models.
type GeminiConfig struct {
	APIKey    string
	Model     string
	LiveModel string
	Timeout   time.Duration
}

// Gemini implements Model and LiveDialer on the Gemini API.
type Gemini struct {
	client    *genai.Client
	model     string
	liveModel string
	timeout   time.Duration
}

var _ Model = (*Gemini)(nil)
var _ LiveDialer = (*Gemini)(nil)

func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("classify: gemini api key required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return &Gemini{
		client:    client,
		model:     cfg.Model,
		liveModel: cfg.LiveModel,
		timeout:   cfg.Timeout,
	}, nil
}

func entrySchema() *genai.Schema {
	nullable := true
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			fieldType: {
				Type:        genai.TypeString,
				Enum:        []string{"note", "expense", "event"},
				Description: "Classify the entry as a note, an expense or an event.",
			},
			fieldDescription: {
				Type:        genai.TypeString,
				Description: "A concise summary of the entry.",
			},
			fieldDate: {
				Type:        genai.TypeString,
				Description: "The entry date as YYYY-MM-DD. Use today's date when none is given.",
			},
			fieldAmount: {
				Type:        genai.TypeNumber,
				Nullable:    &nullable,
				Description: "For expenses, the total amount. Otherwise null.",
			},
			fieldVendor: {
				Type:        genai.TypeString,
				Nullable:    &nullable,
				Description: "For expenses, the vendor or store name. Otherwise null.",
			},
			fieldCategory: {
				Type:        genai.TypeString,
				Nullable:    &nullable,
				Description: "A suggested category such as Groceries, Work or Personal. Otherwise null.",
			},
			fieldItems: {
				Type:        genai.TypeArray,
				Nullable:    &nullable,
				Description: "For receipts, the purchased items.",
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						fieldName:  {Type: genai.TypeString},
						fieldPrice: {Type: genai.TypeNumber},
					},
					Required: []string{fieldName, fieldPrice},
				},
			},
		},
		Required: []string{fieldType, fieldDescription, fieldDate},
	}
}

// Generate sends one structured-output request.
func (g *Gemini) Generate(ctx context.Context, req Request) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	var contents []*genai.Content
	if len(req.Image) > 0 {
		contents = []*genai.Content{genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(req.Image, req.MIMEType),
			genai.NewPartFromText(req.Prompt),
		}, genai.RoleUser)}
	} else {
		contents = genai.Text(req.Prompt)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   entrySchema(),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return resp.Text(), nil
}

// DialLive opens a streaming session that transcribes input audio and
// answers in text.
func (g *Gemini) DialLive(ctx context.Context, instruction string) (LiveConn, error) {
	session, err := g.client.Live.Connect(ctx, g.liveModel, &genai.LiveConnectConfig{
		ResponseModalities:      []genai.Modality{genai.ModalityText},
		InputAudioTranscription: &genai.AudioTranscriptionConfig{},
		SystemInstruction:       genai.NewContentFromText(instruction, genai.RoleUser),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return &geminiLive{session: session}, nil
}

type geminiLive struct {
	session *genai.Session
}

func (l *geminiLive) SendAudio(pcm []byte) error {
	return l.session.SendRealtimeInput(genai.LiveRealtimeInput{
		Media: &genai.Blob{Data: pcm, MIMEType: AudioMIMEType},
	})
}

func (l *geminiLive) SendText(text string) error {
	return l.session.SendClientContent(genai.LiveClientContentInput{
		Turns: genai.Text(text),
	})
}

func (l *geminiLive) Receive() (LiveMessage, error) {
	msg, err := l.session.Receive()
	if err != nil {
		return LiveMessage{}, err
	}
	var out LiveMessage
	if sc := msg.ServerContent; sc != nil {
		if t := sc.InputTranscription; t != nil {
			out.Transcript = &Transcript{Text: t.Text, Final: t.Finished}
		}
		if sc.ModelTurn != nil {
			for _, part := range sc.ModelTurn.Parts {
				if part != nil {
					out.Text += part.Text
				}
			}
		}
		out.TurnComplete = sc.TurnComplete
	}
	return out, nil
}

func (l *geminiLive) Close() error {
	return l.session.Close()
}
