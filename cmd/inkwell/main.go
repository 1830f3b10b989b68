package main

import "github.com/vietddude/inkwell/internal/cli"

func main() {
	cli.Execute()
}
