package shell

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// LineReader reads one line of user input after showing prompt.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// NewLineReader returns a line-editing reader when in is a terminal and a
// plain buffered reader otherwise.
func NewLineReader(in *os.File, out io.Writer) LineReader {
	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		rw := struct {
			io.Reader
			io.Writer
		}{in, out}
		return &ttyReader{fd: fd, t: term.NewTerminal(rw, "")}
	}
	return NewPlainReader(in, out)
}

// ttyReader switches the terminal to raw mode only while a line is read so
// regular output and progress bars keep cooked-mode line endings.
type ttyReader struct {
	fd int
	t  *term.Terminal
}

func (r *ttyReader) ReadLine(prompt string) (string, error) {
	state, err := term.MakeRaw(r.fd)
	if err != nil {
		return "", fmt.Errorf("failed to enter raw mode: %w", err)
	}
	defer term.Restore(r.fd, state)

	r.t.SetPrompt(prompt)
	return r.t.ReadLine()
}

// PlainReader reads lines from any reader, e.g. a pipe or a script.
type PlainReader struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPlainReader creates a reader that echoes prompts to out.
func NewPlainReader(in io.Reader, out io.Writer) *PlainReader {
	return &PlainReader{in: bufio.NewReader(in), out: out}
}

func (r *PlainReader) ReadLine(prompt string) (string, error) {
	if prompt != "" {
		fmt.Fprint(r.out, prompt)
	}
	line, err := r.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// splitArgs splits a command line on spaces, honoring single and double
// quotes so names with spaces can be typed.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		quote   rune
		pending bool
	)
	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			pending = true
		case r == ' ' || r == '\t':
			if pending {
				args = append(args, cur.String())
				cur.Reset()
				pending = false
			}
		default:
			cur.WriteRune(r)
			pending = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote")
	}
	if pending {
		args = append(args, cur.String())
	}
	return args, nil
}
