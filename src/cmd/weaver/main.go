package main

import (
	cmd "github.com/weavenet/weaver/src/cmd/weaver/command"
)

func main() {
	cmd.Execute()
}
