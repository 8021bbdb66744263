package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"
)

func main() {
	_ = flag.Set("logtostderr", "true")
	cmd := newRootCmd()
	err := cmd.Execute()
	glog.Flush()

	code := exitCode(err)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	if code == 2 {
		fmt.Fprint(os.Stderr, cmd.UsageString())
	}
	os.Exit(code)
}
