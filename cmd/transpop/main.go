package main

import (
	"os"

	"github.com/ufolux/TransPop/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
