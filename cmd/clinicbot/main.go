package main

import (
	"log"

	_ "github.com/joho/godotenv/autoload"

	"github.com/m3rciful/clinicbot/core/buildinfo"
	corecmd "github.com/m3rciful/clinicbot/core/cmd"
	"github.com/m3rciful/clinicbot/internal/app"
)

func main() {
	log.Printf("clinicbot %s", buildinfo.Version)
	if err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "configs/config.yaml",
		Bootstrap:         app.Bootstrap,
	}); err != nil {
		log.Fatal(err)
	}
}
