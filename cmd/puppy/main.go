// cmd/puppy/main.go
package main

import (
	"puppy/internal/app"
	"puppy/internal/appshell"
)

func main() {
	appshell.Main(app.RunContext)
}
