package main

import "uren/internal/app/server"

func main() {
	server.Run()
}
