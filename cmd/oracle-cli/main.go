package main

import "signing-oracle/cmd/oracle-cli/cmd"

func main() {
	cmd.Execute()
}
