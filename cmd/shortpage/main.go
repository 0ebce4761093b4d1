package main

import (
	"github.com/emrgen/shortpage/cmd"
)

func main() {
	cmd.Execute()
}
