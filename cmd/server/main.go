package main

import (
	"fmt"
	"log"

	"regscan/internal/config"
	"regscan/internal/domain"
	"regscan/internal/email/noop"
	"regscan/internal/email/ses"
	"regscan/internal/extract/claude"
	"regscan/internal/extract/mock"
	"regscan/internal/handler"
	"regscan/internal/input"
	"regscan/internal/port"
	"regscan/internal/router"
	"regscan/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrConfig, err)
	}

	validator, err := input.NewValidator(cfg.Extract.CodePattern, cfg.Extract.MaxFileBytes)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrConfig, err)
	}

	var extractor port.RowExtractor
	if cfg.Model.Mock {
		log.Printf("mock mode enabled; model calls are bypassed")
		extractor = mock.NewExtractor()
	} else {
		extractor = claude.NewClient(&cfg.Model)
	}

	var sender port.EmailSender
	switch cfg.Email.Provider {
	case "ses":
		sender, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName, cfg.Email.ToAddress)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	default:
		sender = noop.NewNoopSender()
	}

	processSvc := service.NewProcessService(validator, extractor, sender, cfg)

	processH := handler.NewProcessHandler(processSvc)
	connH := handler.NewConnectionHandler(processSvc)

	r := router.Setup(processH, connH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
