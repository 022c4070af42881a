package main

import "github.com/frahmantamala/salesdesk/cmd"

func main() {
	cmd.Execute()
}
