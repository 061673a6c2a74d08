// Command sqlfrag renders and runs portable SQL fragments.
package main

import (
	"os"

	"github.com/zoobzio/sqlfrag/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
