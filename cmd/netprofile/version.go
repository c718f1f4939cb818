package main

import (
	"fmt"
	"io"
	"runtime"

	"github.com/urfave/cli/v2"
)

// Populated during build.
var (
	Version   = "v0.1.0"
	GitRev    = "undefined"
	BuildDate = "undefined"
)

// printVersion prints version info into the provided io.Writer.
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "Version:      %s\n"+
		"Git revision: %s\n"+
		"Go version:   %s\n"+
		"Built:        %s\n"+
		"OS/Arch:      %s/%s\n",
		Version, GitRev, runtime.Version(), BuildDate, runtime.GOOS, runtime.GOARCH)
}

func versionAction(cliCtx *cli.Context) error {
	printVersion(cliCtx.App.Writer)
	return nil
}
