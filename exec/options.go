package exec

import (
	"io"
	"strings"

	"github.com/acarl005/stripansi"
	"github.com/jetsonhacks/install-deep-stream/log"
)

// RedactMask is the string that replaces redacted text in the logs.
const RedactMask = "[REDACTED]"

// ExecOption is a functional option for command execution.
type ExecOption func(*ExecOptions)

// ExecOptions is a collection of exec options.
type ExecOptions struct {
	log.LoggerInjectable

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	logError   bool
	logCommand bool
	logOutput  bool

	streamOutput bool
	trimOutput   bool

	redactStrings []string
	decorateFuncs []DecorateFunc
}

// Command returns the command string with all decorators applied.
func (o *ExecOptions) Command(cmd string) string {
	for _, decorator := range o.decorateFuncs {
		cmd = decorator(cmd)
	}
	return cmd
}

// LogCommand returns true if the command should be logged, false if not.
func (o *ExecOptions) LogCommand() bool {
	return o.logCommand
}

// Redact replaces all configured redact strings in s with the redact mask.
func (o *ExecOptions) Redact(s string) string {
	for _, rs := range o.redactStrings {
		s = strings.ReplaceAll(s, rs, RedactMask)
	}
	return s
}

// Stdin returns the configured stdin reader.
func (o *ExecOptions) Stdin() io.Reader {
	return o.in
}

// Stdout returns the stdout writer. If output logging is enabled, it will be
// a MultiWriter that also writes to the log.
func (o *ExecOptions) Stdout() io.Writer {
	var writers []io.Writer
	switch {
	case o.streamOutput:
		writers = append(writers, logWriter{fn: o.Log().Info, redact: o.Redact})
	case o.logOutput:
		writers = append(writers, logWriter{fn: o.Log().Debug, redact: o.Redact})
	}
	if o.out != nil {
		writers = append(writers, o.out)
	}
	return io.MultiWriter(writers...)
}

// Stderr returns the stderr writer. If error logging is enabled, it will be
// a MultiWriter that also writes to the log.
func (o *ExecOptions) Stderr() io.Writer {
	var writers []io.Writer
	switch {
	case o.streamOutput:
		writers = append(writers, logWriter{fn: o.Log().Error, redact: o.Redact})
	case o.logError:
		writers = append(writers, logWriter{fn: o.Log().Debug, redact: o.Redact})
	}
	if o.errOut != nil {
		writers = append(writers, o.errOut)
	}

	return io.MultiWriter(writers...)
}

// FormatOutput trims whitespace from the command output unless TrimOutput
// has been disabled.
func (o *ExecOptions) FormatOutput(s string) string {
	if o.trimOutput {
		return strings.TrimSpace(s)
	}
	return s
}

// Stdin exec option for sending data to the command through stdin.
func Stdin(r io.Reader) ExecOption {
	return func(o *ExecOptions) {
		o.in = r
	}
}

// StdinString exec option for sending string data to the command through stdin.
func StdinString(s string) ExecOption {
	return func(o *ExecOptions) {
		o.in = strings.NewReader(s)
	}
}

// Stdout exec option for sending command stdout to an io.Writer.
func Stdout(w io.Writer) ExecOption {
	return func(o *ExecOptions) {
		o.out = w
	}
}

// Stderr exec option for sending command stderr to an io.Writer.
func Stderr(w io.Writer) ExecOption {
	return func(o *ExecOptions) {
		o.errOut = w
	}
}

// StreamOutput exec option for sending the command output to the info log as
// it arrives. Package builds and downloads run for minutes, so this is how
// their progress reaches the operator.
func StreamOutput() ExecOption {
	return func(o *ExecOptions) {
		o.streamOutput = true
	}
}

// HideCommand exec option for hiding the command string from the logs.
func HideCommand() ExecOption {
	return func(o *ExecOptions) {
		o.logCommand = false
	}
}

// HideOutput exec option for hiding the command output from logs.
func HideOutput() ExecOption {
	return func(o *ExecOptions) {
		o.logOutput = false
		o.logError = false
	}
}

// Sensitive exec option for disabling all logging of the command.
func Sensitive() ExecOption {
	return func(o *ExecOptions) {
		o.logError = false
		o.logCommand = false
		o.logOutput = false
	}
}

// Redact exec option for defining a string that will be replaced with
// [REDACTED] in the logs.
func Redact(match string) ExecOption {
	return func(o *ExecOptions) {
		o.redactStrings = append(o.redactStrings, match)
	}
}

// TrimOutput exec option for controlling if the output of the command will
// be trimmed of whitespace.
func TrimOutput(v bool) ExecOption {
	return func(o *ExecOptions) {
		o.trimOutput = v
	}
}

// Decorate exec option for applying a custom decorator to the command string.
func Decorate(decorator DecorateFunc) ExecOption {
	return func(o *ExecOptions) {
		o.decorateFuncs = append(o.decorateFuncs, decorator)
	}
}

// Logger exec option for setting the logger used during the command run.
func Logger(l log.Logger) ExecOption {
	return func(o *ExecOptions) {
		o.SetLogger(l)
	}
}

// Build returns an instance of ExecOptions with the defaults applied.
func Build(opts ...ExecOption) *ExecOptions {
	options := &ExecOptions{
		logCommand: true,
		logError:   true,
		logOutput:  true,
		trimOutput: true,
	}

	options.Apply(opts...)

	return options
}

// Apply the supplied options to the ExecOptions.
func (o *ExecOptions) Apply(opts ...ExecOption) {
	for _, opt := range opts {
		opt(o)
	}
}

// a writer that calls a logging function for each chunk written. ANSI
// escapes are stripped so that progress spinners from apt and pip don't end
// up in the persistent log.
type logWriter struct {
	fn     func(string, ...any)
	redact func(string) string
}

func (l logWriter) Write(p []byte) (int, error) {
	s := stripansi.Strip(strings.TrimRight(string(p), "\n"))
	if s != "" {
		l.fn(l.redact(s))
	}
	return len(p), nil
}
