package glyph

import (
	"fmt"

	"tableflip.dev/diary/pkg/entry"
)

type Glyph struct {
	Key     string
	Symbol  string
	Meaning string
	Aliases []string
}

const (
	escape        = "\x1b"
	resetCode     = 0
	boldCode      = 1
	underlineCode = 4
)

func Bold(in string) string {
	return fmt.Sprintf("%s[%dm%s%s[%dm", escape, boldCode, in, escape, resetCode)
}

func Underline(in string) string {
	return fmt.Sprintf("%s[%dm%s%s[%dm", escape, underlineCode, in, escape, resetCode)
}

// Reminder marks entries with a pending reminder.
var Reminder = Glyph{Key: "@", Symbol: "⏰", Meaning: "reminder pending"}

// Receipt marks expenses with an archived receipt image.
var Receipt = Glyph{Key: "#", Symbol: "⎘", Meaning: "receipt archived"}

// For returns the glyph used to render entries of kind k.
func For(k entry.Kind) Glyph {
	switch k {
	case entry.Note:
		return Glyph{Key: "-", Symbol: "⁃", Meaning: "note", Aliases: []string{"notes"}}
	case entry.Expense:
		return Glyph{Key: "$", Symbol: "$", Meaning: "expense", Aliases: []string{"expenses", "receipt"}}
	case entry.Event:
		return Glyph{Key: "o", Symbol: "○", Meaning: "event", Aliases: []string{"events"}}
	default:
		return Glyph{Key: "?", Symbol: "?", Meaning: "unknown"}
	}
}

func (g Glyph) String() string {
	return g.Symbol
}
