package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Config holds application configuration
type Config struct {
	CountingQubits int
	Eigenstate     string
	Unitary        string
	Repetitions    int
	Seed           uint64 // 0 seeds from the runtime
	ReportPath     string
	QASMPath       string
	Headless       bool
	LogLevel       string
	LogPretty      bool
	LogFile        string
}

// Load reads configuration from the environment (and an optional .env file),
// then applies command-line flags from args on top.
func Load(args []string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		CountingQubits: getEnvAsInt("QDECK_COUNTING_QUBITS", 3),
		Eigenstate:     getEnv("QDECK_EIGENSTATE", "1"),
		Unitary:        getEnv("QDECK_UNITARY", "z"),
		Repetitions:    getEnvAsInt("QDECK_REPETITIONS", 1000),
		Seed:           getEnvAsUint64("QDECK_SEED", 0),
		ReportPath:     getEnv("QDECK_REPORT", ""),
		QASMPath:       getEnv("QDECK_QASM", "qpe.qasm"),
		Headless:       getEnvAsBool("QDECK_HEADLESS", false),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogPretty:      getEnvAsBool("LOG_PRETTY", true),
		LogFile:        getEnv("LOG_FILE", ""),
	}

	fs := pflag.NewFlagSet("qtermphase", pflag.ContinueOnError)
	fs.IntVarP(&cfg.CountingQubits, "counting-qubits", "n", cfg.CountingQubits, "precision bits in the counting register")
	fs.StringVarP(&cfg.Eigenstate, "eigenstate", "e", cfg.Eigenstate, "eigenstate bitstring, one bit per unitary qubit")
	fs.StringVarP(&cfg.Unitary, "unitary", "u", cfg.Unitary, "unitary: "+strings.Join(unitaryNames, ", "))
	fs.IntVarP(&cfg.Repetitions, "repetitions", "r", cfg.Repetitions, "measurement repetitions")
	fs.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "sampling seed, 0 for a random seed")
	fs.StringVar(&cfg.ReportPath, "report", cfg.ReportPath, "write a run report (.json or .msgpack)")
	fs.StringVar(&cfg.QASMPath, "qasm", cfg.QASMPath, "where the explorer saves QASM")
	fs.BoolVar(&cfg.Headless, "headless", cfg.Headless, "run once and print the histogram instead of starting the explorer")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.BoolVar(&cfg.LogPretty, "log-pretty", cfg.LogPretty, "console formatted logs")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "log file for the explorer")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// unitaryNames mirrors the unitary catalog for the flag help text.
var unitaryNames = []string{"z", "s", "t", "identity", "cz", "phase(<angle>)"}

// Validate checks the run parameters
func (c *Config) Validate() error {
	if c.CountingQubits < 1 {
		return fmt.Errorf("QDECK_COUNTING_QUBITS must be at least 1, got %d", c.CountingQubits)
	}
	if c.Repetitions < 1 {
		return fmt.Errorf("QDECK_REPETITIONS must be at least 1, got %d", c.Repetitions)
	}
	if c.Eigenstate == "" || strings.Trim(c.Eigenstate, "01") != "" {
		return fmt.Errorf("QDECK_EIGENSTATE must be a bitstring, got %q", c.Eigenstate)
	}
	if c.Unitary == "" {
		return fmt.Errorf("QDECK_UNITARY is required")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsUint64(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseUint(value, 10, 64); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
