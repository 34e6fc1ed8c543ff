// Command sysyc is a SysY-to-Koopa-IR-to-RISCV32 compiler.
package main

import (
	"os"

	"github.com/mna/mainer"

	"github.com/mna/sysyc/internal/driver"
)

var (
	// placeholder values, replaced on build
	version   = "{v}" // must be N.N[.N]
	buildDate = "{d}" // must be YYYY-mm-DD
)

func main() {
	c := driver.Cmd{BuildVersion: version, BuildDate: buildDate}
	os.Exit(int(c.Main(os.Args[1:], mainer.CurrentStdio())))
}
