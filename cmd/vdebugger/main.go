// Command vdebugger is a minimal interactive native-code debugger for
// x86-64 Linux user-space programs. It launches (or attaches to) a
// target process, exposes breakpoint, register, and memory commands at
// a vdebugger> prompt, and resumes execution past breakpoints correctly.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	slogmulti "github.com/samber/slog-multi"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/SamuelVanie/vdebugger/internal/bootstrap"
	"github.com/SamuelVanie/vdebugger/internal/config"
	"github.com/SamuelVanie/vdebugger/internal/engine"
	"github.com/SamuelVanie/vdebugger/internal/frontend"
	"github.com/SamuelVanie/vdebugger/internal/tracer"
)

var (
	flagPID     int
	flagNoASLR  bool
	flagLogFile string
)

func main() {
	// ptrace(2) requires every subsequent tracing call to come from the
	// same OS thread that attached/traced the debuggee.
	runtime.LockOSThread()

	root := &cobra.Command{
		Use:   "vdebugger [target-path]",
		Short: "A minimal ptrace-based debugger for x86-64 Linux binaries",
		Args:  cobra.MaximumNArgs(1),
		RunE:  run,
	}
	root.Flags().IntVar(&flagPID, "pid", 0, "attach to an already-running process instead of launching one")
	root.Flags().BoolVar(&flagNoASLR, "no-aslr", true, "disable address-space layout randomization in the launched child")
	root.Flags().StringVar(&flagLogFile, "log-file", "", "write a structured session log to this path")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	var targetPath string
	if len(args) == 1 {
		targetPath = args[0]
	}

	var noASLR *bool
	if cmd.Flags().Changed("no-aslr") {
		noASLR = &flagNoASLR
	}

	sess, err := config.Load(targetPath, flagPID, noASLR, flagLogFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := newLogger(sess.LogFile)

	var pid tracer.PID
	var progName string

	if sess.PID != 0 {
		pid, err = bootstrap.Attach(sess.PID)
		progName = fmt.Sprintf("pid %d", sess.PID)
	} else {
		pid, err = bootstrap.Launch(sess.TargetPath, sess.NoASLR)
		progName = filepath.Base(sess.TargetPath)
	}
	if err != nil {
		log.Error("bootstrap failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	eng := engine.New(progName, pid, tracer.Unix{}, log)
	log.Info("debugging session started", "program", progName, "pid", int(pid))

	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		eng.EnableInterruptForwarding(fd)
	}

	if err := eng.Run(os.Stdin, os.Stdout, frontend.Dispatch); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	return nil
}

// newLogger builds a slog.Logger that always writes a human-readable
// stream to stderr and, when path is set, additionally fans out
// structured JSON to a session log file, the way
// Manu343726-cucaracha's go.mod pulls in slog-multi for multi-handler
// logging.
func newLogger(path string) *slog.Logger {
	handlers := []slog.Handler{
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}),
	}

	if path != "" {
		if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
		}
	}

	return slog.New(slogmulti.Fanout(handlers...))
}
