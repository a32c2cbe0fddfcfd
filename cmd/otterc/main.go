// Command otterc is the otterc compiler's executable entry point; the
// actual work lives in package cmd so it stays testable without a process
// boundary.
package main

import (
	"os"

	"github.com/otterlang/otterc/cmd"
)

func main() {
	os.Exit(cmd.RunCompiler())
}
