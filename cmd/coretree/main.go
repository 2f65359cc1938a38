package main

import (
	"github.com/distlabel/coretree/cmd/coretree/cmd"
)

func main() {
	cmd.Execute()
}
