package main

import "github.com/ValentinKolb/dDiam/cmd"

func main() {
	cmd.Execute()
}
