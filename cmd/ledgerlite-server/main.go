package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ledgerlite/ledgerlite"
	"github.com/ledgerlite/ledgerlite/config"
	"github.com/ledgerlite/ledgerlite/ledger"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	addr := flag.String("addr", "", "Listen address (overrides config)")
	dir := flag.String("dir", "", "Directory for the ledger file (memory if empty)")
	path := flag.String("path", "ledger.jsonl", "Ledger file name inside -dir")
	configPath := flag.String("config", "", "YAML config file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("LedgerLite API Server v%s\n", Version)
		return
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dir != "" {
		cfg.Ledger.Dir = *dir
		cfg.Ledger.Path = *path
	}

	var instance *ledgerlite.Instance
	if cfg.Ledger.Dir == "" {
		log.Println("Using in-memory ledger")
		instance = ledgerlite.Open(ledger.NewMemoryLog())
	} else {
		log.Printf("Using ledger file: %s/%s", cfg.Ledger.Dir, cfg.Ledger.Path)
		opened, err := ledgerlite.OpenFile(cfg.Ledger.Dir, cfg.Ledger.Path)
		if err != nil {
			log.Fatalf("Failed to open ledger: %v", err)
		}
		instance = opened
	}
	defer instance.Close()

	auth := &AuthConfig{
		Enabled:  cfg.Server.Auth.Enabled,
		Secret:   cfg.Server.Auth.Secret,
		Issuer:   cfg.Server.Auth.Issuer,
		Audience: cfg.Server.Auth.Audience,
	}
	if auth.Enabled && auth.Secret == "" {
		log.Fatal("Auth enabled but no secret configured")
	}

	server := NewServer(instance, auth)
	server.Start(cfg.Server.Addr)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	if err := server.Stop(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
