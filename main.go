package main

import "freelance-marketplace/cmd/server"

func main() {
	server.Init()
	server.Run()
}
