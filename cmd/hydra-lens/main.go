package main

import "github.com/mvp-joe/hydra-lens/internal/cli"

func main() {
	cli.Execute()
}
