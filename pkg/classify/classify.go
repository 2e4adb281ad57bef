// Package classify turns free text, receipt photos and live voice into
// structured journal entries using a hosted generative model.
package classify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tableflip.dev/diary/pkg/entry"
	"tableflip.dev/diary/pkg/logging"
)

var (
	// ErrEmptyInput is returned for blank text or an empty image. Callers
	// ignore it.
	ErrEmptyInput = errors.New("classify: empty input")
	// ErrMalformedResponse is returned when the model reply cannot be read
	// as an entry.
	ErrMalformedResponse = errors.New("classify: malformed AI response")
	// ErrUnavailable wraps transport and service failures.
	ErrUnavailable = errors.New("classify: model unavailable")
)

// Request is one structured-output call. Image is optional.
type Request struct {
	Prompt   string
	Image    []byte
	MIMEType string
}

// Model performs a single structured-output request and returns the raw
// JSON text of the reply.
type Model interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Classifier owns no state beyond its collaborators.
type Classifier struct {
	Model Model
	// Live opens streaming voice sessions. Nil disables OpenLiveSession.
	Live LiveDialer
	// Now is the clock used for "today". Defaults to time.Now.
	Now func() time.Time
	// Grace bounds how long Stop waits for the terminal payload.
	Grace time.Duration
	Log   logging.Logger
}

func New(model Model, live LiveDialer, log logging.Logger) *Classifier {
	if log == nil {
		log = logging.Nop()
	}
	return &Classifier{
		Model: model,
		Live:  live,
		Now:   time.Now,
		Grace: 10 * time.Second,
		Log:   log.With("component", "classify"),
	}
}

func (c *Classifier) today() entry.Date {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return entry.DateOf(now())
}

const textPrompt = `Analyze the following text and turn it into a structured journal entry. Classify it as a note, an expense or an event. Today's date is %s. Text: %q`

const receiptPrompt = `Analyze this receipt image and turn it into a structured expense entry. List the purchased items with their prices when they are legible. Also consider the user's note: %q. Today's date is %s.`

// ClassifyText classifies free text.
func (c *Classifier) ClassifyText(ctx context.Context, text string) (*entry.Entry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyInput
	}
	today := c.today()
	raw, err := c.Model.Generate(ctx, Request{Prompt: fmt.Sprintf(textPrompt, today, text)})
	if err != nil {
		return nil, err
	}
	e, err := parse(raw, today, "")
	if err != nil {
		c.Log.Warn(ctx, "unreadable classification", "err", err)
		return nil, err
	}
	return e, nil
}

// ClassifyReceipt classifies a receipt photo. The result is always an
// expense. An empty mimeType is sniffed from the image bytes.
func (c *Classifier) ClassifyReceipt(ctx context.Context, image []byte, mimeType, note string) (*entry.Entry, error) {
	if len(image) == 0 {
		return nil, ErrEmptyInput
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(image)
	}
	today := c.today()
	raw, err := c.Model.Generate(ctx, Request{
		Prompt:   fmt.Sprintf(receiptPrompt, strings.TrimSpace(note), today),
		Image:    image,
		MIMEType: mimeType,
	})
	if err != nil {
		return nil, err
	}
	e, err := parse(raw, today, entry.Expense)
	if err != nil {
		c.Log.Warn(ctx, "unreadable receipt classification", "err", err)
		return nil, err
	}
	return e, nil
}
