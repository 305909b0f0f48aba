package main

import (
	"os"

	"github.com/strawlab/vmbc-go/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
