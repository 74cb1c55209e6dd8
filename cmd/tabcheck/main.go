package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/JonMunkholm/tabcheck/cmd/tabcheck/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		var se *cmd.StatusError
		if errors.As(err, &se) {
			os.Exit(se.Code)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(cmd.ExitError)
	}
}
