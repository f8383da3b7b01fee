package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	. "github.com/avdeev/ordertrack/internal"
)

func main() {
	cfg, err := NewConfig()
	if err != nil {
		log.Fatal(err)
	}

	z, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	sugaredLogger := z.Sugar()

	repository, err := NewRepository(cfg.DatabaseURI, sugaredLogger)
	if err != nil {
		sugaredLogger.Fatal(err)
	}
	defer repository.Close()

	service := NewService(repository)
	schema := NewOrderSchema()
	gate := NewTokenGate(cfg.JWTKey, cfg.JWTIssuer, cfg.JWTLifetime)
	handlers := NewHandlers(service, schema, cfg.DeliveryFile, sugaredLogger)

	app := NewRouter(handlers, gate)

	go func() {
		sugaredLogger.Fatal(app.Listen(cfg.RunAddress))
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	sugaredLogger.Info("Shutting down service...")
}
