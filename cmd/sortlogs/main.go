package main

import "github.com/OpenFogStack/enoki/internal/cmd"

func main() {
	cmd.Execute()
}
