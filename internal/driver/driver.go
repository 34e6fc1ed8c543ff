// Package driver implements the driver (component H): it selects the
// requested output pass and wires the front end (A-F) alone, or the front
// end followed by the back end (A-F-G), to the requested output file.
//
// The CLI surface is purely positional (`<mode> <input-path> <any-token>
// <output-path>`, spec §6), so unlike the teacher's internal/maincmd this
// package validates its four arguments itself instead of binding
// mainer struct-tag flags — there is nothing to bind, since there are no
// flags. mainer.Stdio/ExitCode/signal-cancellable context are kept for the
// parts of the ambient CLI contract that do apply regardless: consistent
// exit codes and a context a long-running compile could observe for
// cancellation.
package driver

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mna/mainer"

	"github.com/mna/sysyc/lang/asmgen"
	"github.com/mna/sysyc/lang/ast"
	"github.com/mna/sysyc/lang/ice"
	"github.com/mna/sysyc/lang/irgen"
	"github.com/mna/sysyc/lang/koopa"
)

// Mode selects the driver's output pass.
type Mode string

const (
	ModeKoopa Mode = "-koopa"
	ModeRISCV Mode = "-riscv"
)

const usage = "usage: sysyc (-koopa|-riscv) <input-path> <any-token> <output-path>"

// Frontend turns SysY source text into a *ast.CompUnit. Lexing and parsing
// SysY is explicitly out of scope for this module (see lang/ast's package
// doc: "building this tree is out of scope... callers construct a
// *CompUnit directly"); DefaultFrontend is therefore a stub that reports
// that fact rather than a real parser. A full toolchain assembling this
// compiler with an actual SysY front end supplies its own Frontend to Run.
type Frontend func(src []byte, path string) (*ast.CompUnit, error)

// DefaultFrontend always fails: see Frontend's doc comment.
var DefaultFrontend Frontend = func(_ []byte, path string) (*ast.CompUnit, error) {
	return nil, fmt.Errorf("%s: parsing SysY source is out of scope for this module; supply a driver.Frontend that builds a *ast.CompUnit", path)
}

// Cmd is the top-level command, constructed once by cmd/sysyc/main.go.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Frontend Frontend // nil means DefaultFrontend

	mode       Mode
	inputPath  string
	anyToken   string
	outputPath string
}

// Main parses args (excluding argv[0]) and runs the compiler, returning the
// process exit code. It never panics: any *ice.Error raised deep in the
// front or back end is recovered here, per §7 ("no error is recovered; the
// compiler exits") translated into this Go module's single recovery point.
func (c *Cmd) Main(args []string, stdio mainer.Stdio) (code mainer.ExitCode) {
	if err := c.parseArgs(args); err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n%s\n", err, usage)
		return mainer.InvalidArgs
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.run(ctx); err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return mainer.Failure
	}
	return mainer.Success
}

// parseArgs validates the fixed positional arity: mode, input path, an
// opaque third token (read and discarded; historically the reference
// toolchain's class-list file, per original_source/main.rs), output path.
func (c *Cmd) parseArgs(args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("expected 4 arguments, got %d", len(args))
	}
	switch Mode(args[0]) {
	case ModeKoopa, ModeRISCV:
		c.mode = Mode(args[0])
	default:
		return fmt.Errorf("unknown mode %q, expected -koopa or -riscv", args[0])
	}
	c.inputPath, c.anyToken, c.outputPath = args[1], args[2], args[3]
	return nil
}

func (c *Cmd) run(ctx context.Context) (err error) {
	defer ice.Recover(&err)

	fe := c.Frontend
	if fe == nil {
		fe = DefaultFrontend
	}
	src, err := os.ReadFile(c.inputPath)
	if err != nil {
		return err
	}
	cu, err := fe(src, c.inputPath)
	if err != nil {
		return err
	}

	out, err := os.Create(c.outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	return Run(ctx, c.mode, cu, out)
}

// Run wires A→F (ModeKoopa) or A→F→koopa.Parse→G (ModeRISCV) and writes the
// result to out. Exported separately from Cmd.Main so a caller that already
// has a *ast.CompUnit (tests, or a toolchain with its own front end) can
// drive the compiler without going through file I/O or argument parsing at
// all.
func Run(_ context.Context, mode Mode, cu *ast.CompUnit, out io.Writer) (err error) {
	defer ice.Recover(&err)

	if mode == ModeKoopa {
		irgen.Generate(out, cu)
		return nil
	}

	var ir strings.Builder
	irgen.Generate(&ir, cu)
	prog := koopa.Parse(ir.String())
	asmgen.Generate(out, prog)
	return nil
}
