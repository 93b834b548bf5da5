// Package frontend implements the Command Front End of spec.md §4.5: a
// single pass tokenizes one input line into a command plus up to three
// arguments and dispatches to the Debug Engine. Line editing with
// history is an external collaborator per spec.md §1 and is not
// implemented here; Dispatch only ever sees one already-read line.
package frontend

import (
	"fmt"
	"io"
	"strings"

	"github.com/SamuelVanie/vdebugger/internal/engine"
	"github.com/SamuelVanie/vdebugger/internal/present"
	"github.com/SamuelVanie/vdebugger/internal/vderrors"
)

const helpText = `Commands:
  continue                            resume the debuggee
  break 0x<addr>                       install a breakpoint
  break list                          list installed breakpoints
  break delete 0x<addr>                remove a breakpoint
  register dump                       list all registers
  register read <name>                print <name> -> <decimal>
  register write <name> 0x<value>     set a register
  memory read 0x<addr>                print the word at that address
  memory write 0x<addr> 0x<value>     write a word there
  exit                                 terminate the debugger`

// Dispatch tokenizes line on whitespace and runs the matching command
// against e, per the grammar of spec.md §4.5. It returns exit=true only
// for the exit command; a non-nil error is either a recoverable
// UserInputError (the caller reprints the prompt) or a fatal
// vderrors.TraceError (the caller terminates the session).
func Dispatch(line string, e *engine.Engine, out io.Writer) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case "continue":
		return false, cmdContinue(e, out)
	case "break":
		return false, cmdBreak(e, out, args)
	case "register":
		return false, cmdRegister(e, out, args)
	case "memory":
		return false, cmdMemory(e, out, args)
	case "help":
		fmt.Fprintln(out, helpText)
		return false, nil
	case "exit":
		return true, nil
	default:
		fmt.Fprintln(out, helpText)
		return false, nil
	}
}

func cmdContinue(e *engine.Engine, out io.Writer) error {
	term, err := e.ContinueExecution()
	if err != nil {
		return err
	}
	if term != nil {
		fmt.Fprintln(out, term)
	}
	return nil
}

func cmdBreak(e *engine.Engine, out io.Writer, args []string) error {
	if len(args) == 0 {
		return vderrors.NewUserInputError("break requires an address or subcommand")
	}

	switch strings.ToLower(args[0]) {
	case "list":
		for _, addr := range e.ListBreakpoints() {
			fmt.Fprintln(out, present.Addr(addr))
		}
		return nil
	case "delete":
		if len(args) < 2 {
			return vderrors.NewUserInputError("break delete requires an address")
		}
		addr, err := parseHex(args[1])
		if err != nil {
			return err
		}
		return e.DeleteBreakpoint(addr)
	default:
		addr, err := parseHex(args[0])
		if err != nil {
			return err
		}
		if err := e.SetBreakpoint(addr); err != nil {
			return err
		}
		present.Info(out, "breakpoint set at %s", present.Addr(addr))
		return nil
	}
}

func cmdRegister(e *engine.Engine, out io.Writer, args []string) error {
	if len(args) == 0 {
		return vderrors.NewUserInputError("register requires dump, read, or write")
	}

	switch strings.ToLower(args[0]) {
	case "dump":
		lines, err := e.DumpRegisters()
		if err != nil {
			return err
		}
		for _, l := range lines {
			fmt.Fprintln(out, l)
		}
		return nil
	case "read":
		if len(args) < 2 {
			return vderrors.NewUserInputError("register read requires a register name")
		}
		val, err := e.ReadRegister(args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s -> %d\n", args[1], val)
		return nil
	case "write":
		if len(args) < 3 {
			return vderrors.NewUserInputError("register write requires a register name and a value")
		}
		val, err := parseHex(args[2])
		if err != nil {
			return err
		}
		return e.WriteRegister(args[1], val)
	default:
		return vderrors.NewUserInputError("unknown register subcommand %q", args[0])
	}
}

func cmdMemory(e *engine.Engine, out io.Writer, args []string) error {
	if len(args) < 2 {
		return vderrors.NewUserInputError("memory requires read/write and an address")
	}

	addr, err := parseHex(args[1])
	if err != nil {
		return err
	}

	switch strings.ToLower(args[0]) {
	case "read":
		word, err := e.ReadMemory(addr)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s --> %d\n", present.Addr(addr), word)
		return nil
	case "write":
		if len(args) < 3 {
			return vderrors.NewUserInputError("memory write requires a value")
		}
		val, err := parseHex(args[2])
		if err != nil {
			return err
		}
		return e.WriteMemory(addr, val)
	default:
		return vderrors.NewUserInputError("unknown memory subcommand %q", args[0])
	}
}
