package main

import (
	"context"
	"log"
	"os"

	"tether/internal/config"
	"tether/internal/shellrun"
)

func main() {
	cfg, _, _, err := config.Load(os.Getenv("TETHER_CONFIG"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := shellrun.Run(context.Background(), cfg, shellrun.Options{Console: true}); err != nil {
		log.Fatalf("tetherd: %v", err)
	}
}
