package main

import (
	"os"

	"github.com/adminforge/adminforge/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
