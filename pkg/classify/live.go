package classify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"tableflip.dev/diary/pkg/entry"
)

// ErrLiveUnavailable is returned by OpenLiveSession when no dialer is set.
var ErrLiveUnavailable = errors.New("classify: live sessions unavailable")

const (
	// SampleRate of the PCM audio pushed to a live session.
	SampleRate = 16000
	// FrameSamples is the number of 16-bit mono samples sent per frame.
	FrameSamples = 4096
	// AudioMIMEType labels the frames sent upstream.
	AudioMIMEType = "audio/pcm;rate=16000"
)

const liveInstruction = `You are transcribing a spoken journal entry. Listen without replying until you are asked for the final entry.`

const finalInstruction = `The recording is over. Reply with only a JSON object for the journal entry you heard, with the fields "type" (note, expense or event), "description", "date" (YYYY-MM-DD, today is %s), and for expenses "amount", "vendor" and "category".`

// State is the lifecycle of a LiveSession.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateStreaming
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateClosing:
		return "closing"
	default:
		return "closed"
	}
}

// Transcript is an incremental transcription fragment.
type Transcript struct {
	Text  string
	Final bool
}

// LiveMessage is one server message of a live session.
type LiveMessage struct {
	Transcript *Transcript
	// Text is a fragment of the model's own reply.
	Text         string
	TurnComplete bool
}

// LiveConn is an open bidirectional session with a hosted model.
type LiveConn interface {
	SendAudio(pcm []byte) error
	SendText(text string) error
	// Receive blocks for the next message. It fails once the connection is
	// closed.
	Receive() (LiveMessage, error)
	Close() error
}

// LiveDialer opens LiveConns primed with one instruction prompt.
type LiveDialer interface {
	DialLive(ctx context.Context, instruction string) (LiveConn, error)
}

// Callbacks receive live session events. Every field is optional.
type Callbacks struct {
	OnTranscript func(Transcript)
	// OnEntry receives the terminal structured payload.
	OnEntry func(*entry.Entry)
	OnError func(error)
	// OnClose fires exactly once, after the session released its resources.
	OnClose func()
}

// LiveSession streams audio to a model and yields a single entry.
type LiveSession struct {
	c     *Classifier
	audio io.ReadCloser
	cb    Callbacks

	ctx    context.Context
	cancel context.CancelFunc

	// sendMu serializes writes on conn, which allows one writer at a time.
	sendMu sync.Mutex

	mu      sync.Mutex
	state   State
	conn    LiveConn
	finals  []string
	partial string
	reply   strings.Builder

	stopOnce  sync.Once
	closeOnce sync.Once
	audioOnce sync.Once
	turnOnce  sync.Once
	turnDone  chan struct{}
	done      chan struct{}
}

// OpenLiveSession dials the model and starts pumping audio. audio must yield
// 16 kHz mono signed 16-bit little-endian PCM; the session owns it and closes
// it on every exit path. Cancelling ctx closes the session.
func (c *Classifier) OpenLiveSession(ctx context.Context, audio io.ReadCloser, cb Callbacks) (*LiveSession, error) {
	if c.Live == nil {
		if audio != nil {
			_ = audio.Close()
		}
		return nil, ErrLiveUnavailable
	}
	if audio == nil {
		return nil, ErrEmptyInput
	}
	sctx, cancel := context.WithCancel(ctx)
	s := &LiveSession{
		c:        c,
		audio:    audio,
		cb:       cb,
		ctx:      sctx,
		cancel:   cancel,
		state:    StateConnecting,
		turnDone: make(chan struct{}),
		done:     make(chan struct{}),
	}

	conn, err := c.Live.DialLive(sctx, liveInstruction)
	if err != nil {
		s.closeAudio()
		cancel()
		s.mu.Lock()
		s.state = StateClosed
		s.mu.Unlock()
		close(s.done)
		return nil, err
	}

	s.mu.Lock()
	s.conn = conn
	s.state = StateStreaming
	s.mu.Unlock()

	go s.receive()
	go s.pump()
	go func() {
		select {
		case <-sctx.Done():
			s.Close()
		case <-s.done:
		}
	}()
	return s, nil
}

func (s *LiveSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done is closed once the session reached StateClosed.
func (s *LiveSession) Done() <-chan struct{} {
	return s.done
}

// Transcript returns the text transcribed so far.
func (s *LiveSession) Transcript() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcriptLocked()
}

func (s *LiveSession) transcriptLocked() string {
	parts := append([]string(nil), s.finals...)
	if s.partial != "" {
		parts = append(parts, s.partial)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// Stop ends recording, asks the model for the final entry and closes the
// session. If the model reply cannot be read, the transcript is classified
// as text instead. Stop blocks until the session is closed.
func (s *LiveSession) Stop() {
	s.mu.Lock()
	if s.state != StateStreaming {
		s.mu.Unlock()
		<-s.done
		return
	}
	s.state = StateClosing
	conn := s.conn
	s.mu.Unlock()

	s.stopOnce.Do(func() {
		s.closeAudio()
		s.sendMu.Lock()
		err := conn.SendText(fmt.Sprintf(finalInstruction, s.c.today()))
		s.sendMu.Unlock()
		if err != nil {
			s.fail(err)
			return
		}

		grace := s.c.Grace
		if grace <= 0 {
			grace = 10 * time.Second
		}
		timer := time.NewTimer(grace)
		defer timer.Stop()
		select {
		case <-s.turnDone:
		case <-timer.C:
			s.c.Log.Warn(s.ctx, "live session final reply timed out")
		case <-s.done:
			return
		}

		e, err := s.finalEntry()
		if err != nil {
			s.fail(err)
			return
		}
		if s.cb.OnEntry != nil {
			s.cb.OnEntry(e)
		}
		s.cleanup()
	})
	<-s.done
}

// Close releases the session without waiting for a final entry.
func (s *LiveSession) Close() {
	s.cleanup()
}

func (s *LiveSession) finalEntry() (*entry.Entry, error) {
	s.mu.Lock()
	reply := s.reply.String()
	transcript := s.transcriptLocked()
	s.mu.Unlock()

	if e, err := parse(reply, s.c.today(), ""); err == nil {
		return e, nil
	}
	if transcript == "" {
		return nil, ErrEmptyInput
	}
	return s.c.ClassifyText(s.ctx, transcript)
}

func (s *LiveSession) pump() {
	buf := make([]byte, FrameSamples*2)
	for {
		n, err := io.ReadFull(s.audio, buf)
		if n > 0 {
			if sendErr := s.sendAudio(buf[:n]); sendErr != nil {
				s.fail(sendErr)
				return
			}
		}
		if err == nil {
			continue
		}
		if s.State() != StateStreaming {
			return
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			// The source ran dry; that ends the recording.
			go s.Stop()
			return
		}
		s.fail(err)
		return
	}
}

// sendAudio forwards one frame while the session is still streaming. The
// state is checked under sendMu so no frame follows the final instruction.
func (s *LiveSession) sendAudio(pcm []byte) error {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if s.State() != StateStreaming {
		return nil
	}
	return s.conn.SendAudio(append([]byte(nil), pcm...))
}

func (s *LiveSession) receive() {
	for {
		msg, err := s.conn.Receive()
		if err != nil {
			switch s.State() {
			case StateStreaming:
				s.fail(err)
			case StateClosing:
				s.markTurnDone()
			}
			return
		}
		if s.State() == StateClosed {
			return
		}
		if t := msg.Transcript; t != nil {
			s.mu.Lock()
			if t.Final {
				if text := strings.TrimSpace(t.Text); text != "" {
					s.finals = append(s.finals, text)
				}
				s.partial = ""
			} else {
				s.partial = strings.TrimSpace(s.partial + t.Text)
			}
			s.mu.Unlock()
			if s.cb.OnTranscript != nil {
				s.cb.OnTranscript(*t)
			}
		}
		if msg.Text != "" || msg.TurnComplete {
			s.mu.Lock()
			closing := s.state == StateClosing
			if closing {
				s.reply.WriteString(msg.Text)
			}
			s.mu.Unlock()
			if closing && msg.TurnComplete {
				s.markTurnDone()
			}
		}
	}
}

func (s *LiveSession) markTurnDone() {
	s.turnOnce.Do(func() { close(s.turnDone) })
}

func (s *LiveSession) fail(err error) {
	if s.State() == StateClosed {
		return
	}
	if s.cb.OnError != nil {
		s.cb.OnError(err)
	}
	s.cleanup()
}

func (s *LiveSession) closeAudio() {
	s.audioOnce.Do(func() {
		if err := s.audio.Close(); err != nil {
			s.c.Log.Debug(s.ctx, "closing audio source", "err", err)
		}
	})
}

// cleanup is the single exit path shared by Stop, Close, errors and
// cancellation.
func (s *LiveSession) cleanup() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.state = StateClosed
		conn := s.conn
		s.mu.Unlock()

		s.closeAudio()
		if conn != nil {
			if err := conn.Close(); err != nil {
				s.c.Log.Debug(s.ctx, "closing live connection", "err", err)
			}
		}
		s.cancel()
		close(s.done)
		if s.cb.OnClose != nil {
			s.cb.OnClose()
		}
	})
}
