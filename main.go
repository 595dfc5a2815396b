package main

import (
	"github.com/skt-inc/quicklink-infra/cmd"
)

func main() {
	cmd.Execute()
}
