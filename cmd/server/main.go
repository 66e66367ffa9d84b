package main

import "hrflow/internal/app/server"

func main() {
	server.Run()
}
