// @title           Fable API
// @version         1.0
// @description     Automated story-to-video generator API
// @BasePath        /
package main

import (
	"os"

	"fable/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
