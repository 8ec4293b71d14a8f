package main

import "github.com/RawMal/AlgoEstate-sub000/cmd"

func main() {
	cmd.Execute()
}
