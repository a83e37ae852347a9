package main

import "github.com/endorses/strsearch/cmd"

func main() {
	cmd.Execute()
}
