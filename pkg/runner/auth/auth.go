// Package auth provides the sign-in, sign-out and whoami runners.
package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"tableflip.dev/diary/pkg/session"
)

func out(w io.Writer) io.Writer {
	if w == nil {
		return color.Output
	}
	return w
}

// Login stores the session described by an access token. When Token is
// empty, Prompt is asked for it.
type Login struct {
	Manager *session.Manager
	Token   string
	Prompt  func() (string, error)
	Out     io.Writer
}

func (n *Login) Do(ctx context.Context) error {
	if n.Manager == nil {
		return errors.New("can not sign in, no session store")
	}
	token := strings.TrimSpace(n.Token)
	if token == "" && n.Prompt != nil {
		var err error
		if token, err = n.Prompt(); err != nil {
			return err
		}
		token = strings.TrimSpace(token)
	}
	if token == "" {
		return errors.New("an access token is required")
	}
	s, err := n.Manager.SignIn(token)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out(n.Out), "signed in as %s, session expires %s\n", who(s), s.Expires.Local().Format("2006-01-02 15:04"))
	return nil
}

type Logout struct {
	Manager *session.Manager
	Out     io.Writer
}

func (n *Logout) Do(ctx context.Context) error {
	if n.Manager == nil {
		return errors.New("can not sign out, no session store")
	}
	if err := n.Manager.SignOut(); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out(n.Out), "signed out")
	return nil
}

type WhoAmI struct {
	Manager *session.Manager
	Out     io.Writer
}

func (n *WhoAmI) Do(ctx context.Context) error {
	if n.Manager == nil {
		return errors.New("no session store")
	}
	s, err := n.Manager.Current()
	if errors.Is(err, session.ErrSignedOut) {
		_, _ = fmt.Fprintln(out(n.Out), "signed out")
		return nil
	}
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out(n.Out), "%s (%s)\n", who(s), s.Owner)
	return nil
}

func who(s *session.Session) string {
	if s.Email != "" {
		return s.Email
	}
	return s.Owner
}
