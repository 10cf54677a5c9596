package main

import (
	cmd "github.com/rohmanhakim/crawlservice/internal/cli"
)

func main() {
	cmd.Execute()
}
