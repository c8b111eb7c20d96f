package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/tbxark/voiceform/speech"
)

var (
	_ speech.Recognizer          = (*console)(nil)
	_ speech.PermissionRequester = (*console)(nil)
	_ speech.Synthesizer         = (*console)(nil)
)

// console stands in for the microphone and the speaker: typed lines are
// heard, spoken text is printed. Lines starting with "/" are commands.
type console struct {
	in  io.Reader
	out io.Writer

	mu         sync.Mutex
	utterances chan string
	commands   chan string
}

func newConsole(in io.Reader, out io.Writer) *console {
	return &console{
		in:         in,
		out:        out,
		utterances: make(chan string),
		commands:   make(chan string),
	}
}

// read dispatches input lines until EOF, then closes both channels.
func (c *console) read() error {
	defer close(c.utterances)
	defer close(c.commands)
	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			c.commands <- line
			continue
		}
		c.utterances <- line
	}
	return scanner.Err()
}

func (c *console) RequestPermission(ctx context.Context) error {
	return nil
}

func (c *console) Listen(ctx context.Context, cfg speech.RecognizerConfig) (string, error) {
	select {
	case <-ctx.Done():
		return "", &speech.RecognitionError{Kind: speech.KindAborted, Err: ctx.Err()}
	case line, ok := <-c.utterances:
		if !ok {
			<-ctx.Done()
			return "", &speech.RecognitionError{Kind: speech.KindAborted, Err: ctx.Err()}
		}
		return line, nil
	}
}

func (c *console) Voices(ctx context.Context) ([]speech.Voice, error) {
	return []speech.Voice{{Name: "Console", Lang: speech.DefaultLang}}, nil
}

func (c *console) Speak(ctx context.Context, u speech.Utterance) error {
	c.println("Assistant: " + u.Text)
	return nil
}

func (c *console) println(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintln(c.out, text)
}
