package server

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/pokey/internal/game"
)

const (
	DefaultAddress = "localhost"
	DefaultPort    = 8765
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server ServerSettings `hcl:"server,block"`
	Tables []TableConfig  `hcl:"table,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address            string   `hcl:"address,optional"`
	Port               int      `hcl:"port,optional"`
	LogLevel           string   `hcl:"log_level,optional"`
	TurnTimeoutSeconds int      `hcl:"turn_timeout_seconds,optional"`
	AllowedOrigins     []string `hcl:"allowed_origins,optional"`
}

// TableConfig defines a table opened at startup
type TableConfig struct {
	Name          string `hcl:"name,label"`
	MaxSeats      int    `hcl:"max_seats,optional"`
	SmallBlind    int    `hcl:"small_blind,optional"`
	BigBlind      int    `hcl:"big_blind,optional"`
	StartingStack int    `hcl:"starting_stack,optional"`
	MinRaise      int    `hcl:"min_raise,optional"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Address:  DefaultAddress,
			Port:     DefaultPort,
			LogLevel: "info",
		},
	}
}

// LoadServerConfig loads server configuration from an HCL file. A missing
// file yields the defaults.
func LoadServerConfig(filename string) (*ServerConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

func (c *ServerConfig) applyDefaults() {
	d := DefaultServerConfig()
	if c.Server.Address == "" {
		c.Server.Address = d.Server.Address
	}
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = d.Server.LogLevel
	}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if _, err := log.ParseLevel(c.Server.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", c.Server.LogLevel)
	}
	if c.Server.TurnTimeoutSeconds < 0 {
		return fmt.Errorf("turn timeout must not be negative")
	}

	seen := make(map[string]bool)
	for _, table := range c.Tables {
		if seen[table.Name] {
			return fmt.Errorf("table %s: defined more than once", table.Name)
		}
		seen[table.Name] = true
		if err := table.GameConfig().Validate(); err != nil {
			return fmt.Errorf("table %s: %w", table.Name, err)
		}
	}
	return nil
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return net.JoinHostPort(c.Server.Address, strconv.Itoa(c.Server.Port))
}

// TurnTimeout returns the configured turn timeout
func (c *ServerConfig) TurnTimeout() time.Duration {
	return time.Duration(c.Server.TurnTimeoutSeconds) * time.Second
}

// GameConfig converts the block into table parameters with defaults applied
func (t TableConfig) GameConfig() game.Config {
	return game.Config{
		Name:          t.Name,
		MaxSeats:      t.MaxSeats,
		SmallBlind:    t.SmallBlind,
		BigBlind:      t.BigBlind,
		StartingStack: t.StartingStack,
		MinRaise:      t.MinRaise,
	}.WithDefaults()
}

// CreateTables opens every configured table in the registry
func (c *ServerConfig) CreateTables(s *Server) error {
	for _, table := range c.Tables {
		if _, err := s.Registry().CreateTableWithConfig(table.GameConfig()); err != nil {
			return fmt.Errorf("table %s: %w", table.Name, err)
		}
	}
	return nil
}
