// The pwatchctl command provides a command-line interface for managing
// printers through the printwatch API
package main

import "github.com/printwatch/printwatch/internal/pwatchctl/cmd"

func main() {
	cmd.Execute()
}
