package main

import "github.com/theirongolddev/emicalc/cmd"

func main() {
	cmd.Execute()
}
