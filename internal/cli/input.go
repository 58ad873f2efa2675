// Package cli handles interactive cmd line input for trying predictions and managing sources
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bastiangx/wordchain/pkg/engine"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var (
	wordStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	orderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	offStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	headingStyle = lipgloss.NewStyle().Bold(true)
)

const helpText = `commands:
  :sources                 list sources
  :toggle <name> on|off    enable or disable a source
  :complete <prefix>       complete a partial word
  :stats                   model statistics
  :help                    this help
  :quit                    exit
anything else is treated as text to predict the next word for`

// errQuit ends the input loop without an error.
var errQuit = errors.New("quit")

// InputHandler reads lines, prints ranked next-word predictions and runs
// source management commands.
type InputHandler struct {
	predictor    engine.IPredictor
	suggestLimit int
	requestCount int
	in           io.Reader
	out          io.Writer
}

// NewInputHandler handles initialization of the InputHandler on stdin/stdout
func NewInputHandler(predictor engine.IPredictor, limit int) *InputHandler {
	return NewInputHandlerWithIO(predictor, limit, os.Stdin, os.Stdout)
}

// NewInputHandlerWithIO creates an InputHandler on arbitrary streams.
func NewInputHandlerWithIO(predictor engine.IPredictor, limit int, in io.Reader, out io.Writer) *InputHandler {
	if limit < 1 {
		limit = 5
	}
	return &InputHandler{
		predictor:    predictor,
		suggestLimit: limit,
		in:           in,
		out:          out,
	}
}

// Start begins the interface loop.
// It prompts, reads a line and hands the trimmed input to handleInput.
// EOF and :quit end the loop without an error.
func (h *InputHandler) Start() error {
	fmt.Fprintln(h.out, headingStyle.Render("WordChain CLI"))
	fmt.Fprintln(h.out, "type some text and press Enter to see the next word (:help for commands, Ctrl+C to exit)")

	reader := bufio.NewReader(h.in)
	for {
		fmt.Fprint(h.out, "> ")
		line, err := reader.ReadString('\n')

		if line = strings.TrimSpace(line); line != "" {
			if errors.Is(h.handleInput(line), errQuit) {
				return nil
			}
		}
		if err != nil {
			fmt.Fprintln(h.out)
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// handleInput dispatches commands and predicts for everything else
func (h *InputHandler) handleInput(line string) error {
	h.requestCount++

	if !strings.HasPrefix(line, ":") {
		h.predict(line)
		return nil
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q", ":exit":
		return errQuit
	case ":help", ":h":
		fmt.Fprintln(h.out, helpText)
	case ":sources":
		h.listSources()
	case ":toggle":
		h.toggle(fields[1:])
	case ":complete":
		if len(fields) < 2 {
			fmt.Fprintln(h.out, "usage: :complete <prefix>")
			return nil
		}
		h.complete(fields[1])
	case ":stats":
		h.stats()
	default:
		fmt.Fprintf(h.out, "unknown command %s, try :help\n", fields[0])
	}
	return nil
}

func (h *InputHandler) predict(text string) {
	start := time.Now()
	suggestions, order := h.predictor.PredictNextWords(text, h.suggestLimit)
	log.Debugf("Took [ %v ] for '%s'", time.Since(start), text)

	if len(suggestions) == 0 {
		fmt.Fprintln(h.out, "no suggestions")
		return
	}

	fmt.Fprintf(h.out, "%d suggestions %s\n", len(suggestions), orderStyle.Render(fmt.Sprintf("(order %d)", order)))
	for i, s := range suggestions {
		word := wordStyle.Render(s.Word)
		pad := max(0, 24-lipgloss.Width(word))
		fmt.Fprintf(h.out, "%2d. %s%s %3d%%\n", i+1, word, strings.Repeat(" ", pad), s.Probability)
	}
}

func (h *InputHandler) listSources() {
	sources := h.predictor.ListSources()
	if len(sources) == 0 {
		fmt.Fprintln(h.out, "no sources loaded")
		return
	}
	for _, s := range sources {
		state := offStyle.Render("off")
		if s.Active {
			state = activeStyle.Render("on ")
		}
		fmt.Fprintf(h.out, "  [%s] %s\n", state, s.Name)
	}
}

func (h *InputHandler) toggle(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(h.out, "usage: :toggle <name> on|off")
		return
	}

	var active bool
	switch strings.ToLower(args[1]) {
	case "on", "true", "1":
		active = true
	case "off", "false", "0":
		active = false
	default:
		fmt.Fprintf(h.out, "expected on or off, got %q\n", args[1])
		return
	}

	if h.predictor.ToggleSource(args[0], active) {
		fmt.Fprintf(h.out, "%s is now %s\n", args[0], map[bool]string{true: "on", false: "off"}[active])
		return
	}
	if closest, ok := h.predictor.ClosestSource(args[0]); ok {
		fmt.Fprintf(h.out, "unknown source %s, did you mean %s?\n", args[0], closest)
		return
	}
	fmt.Fprintf(h.out, "unknown source %s\n", args[0])
}

func (h *InputHandler) complete(prefix string) {
	completions := h.predictor.Complete(prefix, h.suggestLimit)
	if len(completions) == 0 {
		fmt.Fprintf(h.out, "no words start with '%s'\n", prefix)
		return
	}
	for i, c := range completions {
		fmt.Fprintf(h.out, "%2d. %s (freq: %d)\n", i+1, wordStyle.Render(c.Word), c.Frequency)
	}
}

func (h *InputHandler) stats() {
	s := h.predictor.Stats()
	fmt.Fprintf(h.out, "sources:       %d (%d active)\n", s.Sources, s.ActiveSources)
	fmt.Fprintf(h.out, "trained:       %t\n", s.Trained)
	fmt.Fprintf(h.out, "tokens:        %d\n", s.Tokens)
	fmt.Fprintf(h.out, "first order:   %d keys\n", s.FirstOrder)
	fmt.Fprintf(h.out, "second order:  %d keys\n", s.SecondOrder)
	fmt.Fprintf(h.out, "vocabulary:    %d words\n", s.Vocabulary)
	fmt.Fprintf(h.out, "last build:    %v\n", s.BuildTime)
}
