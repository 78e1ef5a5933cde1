package main

import (
	"flag"
	"log"
	"os"

	"github.com/df07/go-interactive-raytracer/web/server"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 8080, "Port to serve on")
	static := flag.String("static", "static", "Directory of static files served at /")
	output := flag.String("out", "output", "Directory for session screenshots")
	workers := flag.Int("workers", 0, "Render workers per session (0 = auto-detect)")
	flag.Parse()

	config := server.DefaultConfig(*port)
	config.StaticDir = *static
	config.OutputDir = *output
	config.Workers = *workers

	// Create and start web server
	webServer := server.NewServer(config)

	log.Printf("Interactive Raytracer Web Server")
	log.Printf("Visit http://localhost:%d to start rendering", *port)

	if err := webServer.Start(); err != nil {
		log.Printf("Error starting server: %v", err)
		os.Exit(1)
	}
}
