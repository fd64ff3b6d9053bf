package main

import (
	"github.com/taskmate/taskmate/internal/cli"
	"github.com/taskmate/taskmate/internal/common/logtrace"
)

func init() {
	logtrace.InitLogger()
}

func main() {
	cli.Execute()
}
