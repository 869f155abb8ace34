package main

import "github.com/andresmejia3/facecrypt/cmd"

func main() {
	cmd.Execute()
}
