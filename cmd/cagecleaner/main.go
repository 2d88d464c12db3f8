// cmd/cagecleaner/main.go
package main

import (
	"cagecleaner/internal/app"
	"cagecleaner/internal/appshell"
)

func main() {
	appshell.Main(app.RunContext)
}
