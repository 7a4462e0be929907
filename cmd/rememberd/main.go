package main

import (
	"log"

	"github.com/tech-arch1tect/rememberable/app"
)

func main() {
	application, err := app.New().WithAutoConfig().Build()
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}

	application.Run()
}
