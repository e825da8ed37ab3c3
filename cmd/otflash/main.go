package main

import "github.com/OpenTraceLab/OpenTraceFlash/cmd/otflash/cmd"

func main() {
	cmd.Execute()
}
