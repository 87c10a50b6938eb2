package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	root := buildRoot()
	if err := root.Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			if ee.msg != "" {
				_, _ = fmt.Fprintln(os.Stderr, ee.msg)
			}
			os.Exit(ee.code)
		}
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
