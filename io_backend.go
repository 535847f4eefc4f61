// io_backend.go is the async I/O backend: each I/O
// built-in submits a request here, the backend performs the actual blocking
// syscall off any worker goroutine, and the scheduler (scheduler.go's
// SubmitIO) delivers the result back to the waiting fiber. No callback is
// ever visible to source code — builtins_io.go's display/newline/read-line
// are synchronous-looking from the evaluator's perspective.
package twine

import (
	"bufio"
	"io"
	"os"

	"github.com/pkg/errors"
)

// IOBackend performs the actual blocking stdio operations Twine's I/O
// built-ins need. Each method call itself blocks (it is run on a dedicated
// background goroutine by Scheduler.SubmitIO, never on a worker).
type IOBackend interface {
	Write(s string) error
	ReadLine() (line string, eof bool, err error)
}

// stdioBackend is the default IOBackend: ordinary blocking stdio, submitted
// to a background goroutine and delivered back via the scheduler's
// completion channel rather than blocking a worker.
type stdioBackend struct {
	out *bufio.Writer
	in  *bufio.Reader
}

// NewStdioBackend builds an IOBackend over the process's real stdin/stdout.
func NewStdioBackend() IOBackend {
	return &stdioBackend{
		out: bufio.NewWriter(os.Stdout),
		in:  bufio.NewReader(os.Stdin),
	}
}

// NewIOBackend builds an IOBackend over caller-supplied streams — used by
// tests and by embedding contexts that want to capture output rather than
// write to the real console.
func NewIOBackend(out io.Writer, in io.Reader) IOBackend {
	return &stdioBackend{out: bufio.NewWriter(out), in: bufio.NewReader(in)}
}

func (b *stdioBackend) Write(s string) error {
	if _, err := b.out.WriteString(s); err != nil {
		return errors.Wrap(err, "write")
	}
	return errors.Wrap(b.out.Flush(), "flush")
}

func (b *stdioBackend) ReadLine() (string, bool, error) {
	line, err := b.in.ReadString('\n')
	if err == io.EOF {
		if line == "" {
			return "", true, nil
		}
		return trimNewline(line), false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "read-line")
	}
	return trimNewline(line), false, nil
}

func trimNewline(s string) string {
	n := len(s)
	if n > 0 && s[n-1] == '\n' {
		s = s[:n-1]
	}
	n = len(s)
	if n > 0 && s[n-1] == '\r' {
		s = s[:n-1]
	}
	return s
}
