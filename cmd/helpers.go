package cmd

import (
	"fmt"
	"io"
	"runtime"

	"github.com/jetstack/dsc-keys/pkg/version"
)

func printVersion(w io.Writer, verbose bool) {
	fmt.Fprintln(w, "dsc-keys version: ", version.DSCKeysVersion, runtime.GOOS+"/"+runtime.GOARCH)
	if verbose {
		fmt.Fprintln(w, "  Commit: ", version.Commit)
		fmt.Fprintln(w, "  Built:  ", version.BuildDate)
		fmt.Fprintln(w, "  Go:     ", runtime.Version())
	}
}
