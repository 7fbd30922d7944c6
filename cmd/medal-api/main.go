package main

import "github.com/corylsmithjr/medal-api/internal/cli"

func main() {
	cli.Init()
}
