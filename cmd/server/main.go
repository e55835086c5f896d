package main

import (
	"codecrackers/internal/server"
)

func main() {
	server.StartGinServer()
}
