package main

import "authcore/internal/app"

func main() {
	app.Run()
}
