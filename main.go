package main

import "github.com/will-hwang/ml-commons/frontend/cli/cmd"

func main() {
	cmd.Execute()
}
