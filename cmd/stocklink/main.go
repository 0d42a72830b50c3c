package main

import (
	"context"
	"fmt"
	"os"

	"github.com/vsinha/stocklink/pkg/interfaces/cli/commands"
)

func main() {
	root := commands.NewRootCommand(os.Stdout)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
