package main

import "github.com/KaramelBytes/dataprep/cmd"

func main() {
	cmd.Execute()
}
