package internal

import (
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	RunAddress   = "RUN_ADDRESS"
	DatabaseURI  = "DATABASE_URI"
	JWTKey       = "JWT_KEY"
	JWTIssuer    = "JWT_ISSUER"
	JWTLifetime  = "JWT_LIFETIME"
	DeliveryFile = "DELIVERY_FILE"
)

const (
	defaultRunAddress   = "localhost:3000"
	defaultDatabaseURI  = "host=localhost port=5432 user=postgres password=12345 database=ordertrack sslmode=disable"
	defaultJWTKey       = "key"
	defaultJWTIssuer    = "iss"
	defaultJWTLifetime  = "72h"
	defaultDeliveryFile = "delivery.csv"
)

type Config struct {
	RunAddress   string
	DatabaseURI  string
	JWTKey       string
	JWTIssuer    string
	JWTLifetime  time.Duration
	DeliveryFile string
}

// NewConfig reads settings once at startup: .env if present, then
// environment, then flags. There is no runtime reconfiguration.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	c := new(Config)
	var lifetime string

	flag.StringVar(&c.RunAddress, "a", setEnvOrDefault(RunAddress, defaultRunAddress), "host to listen on")
	flag.StringVar(&c.DatabaseURI, "d", setEnvOrDefault(DatabaseURI, defaultDatabaseURI), "postgres connection path")
	flag.StringVar(&c.JWTKey, "k", setEnvOrDefault(JWTKey, defaultJWTKey), "token signing key")
	flag.StringVar(&c.JWTIssuer, "i", setEnvOrDefault(JWTIssuer, defaultJWTIssuer), "expected token issuer")
	flag.StringVar(&lifetime, "l", setEnvOrDefault(JWTLifetime, defaultJWTLifetime), "token lifetime at issuance")
	flag.StringVar(&c.DeliveryFile, "f", setEnvOrDefault(DeliveryFile, defaultDeliveryFile), "delivery settings file")

	flag.Parse()

	d, err := time.ParseDuration(lifetime)
	if err != nil {
		return nil, err
	}
	c.JWTLifetime = d

	return c, nil
}

func setEnvOrDefault(env, def string) string {
	res, e := os.LookupEnv(env)
	if !e {
		res = def
	}
	return res
}
