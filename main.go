/*
	Copyright 2023 Markus Papenbrock
*/

package main

import "github.com/mpapenbr/tankrace/cmd"

func main() {
	cmd.Execute()
}
