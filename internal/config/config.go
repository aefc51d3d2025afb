package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv   = "COLDMAILER_CONFIG"
	geminiAPIKeyEnv = "GEMINI_API_KEY"
	geminiModelEnv  = "GEMINI_MODEL"
	brevoAPIKeyEnv  = "BREVO_API_KEY"
	supabaseURLEnv  = "SUPABASE_URL"
	supabaseKeyEnv  = "SUPABASE_KEY"
	databaseDSNEnv  = "DATABASE_DSN"
	logLevelEnv     = "LOG_LEVEL"
	providerEnv     = "MODEL_PROVIDER"
	storeDriverEnv  = "STORE_DRIVER"
)

// Model providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Store drivers.
const (
	DriverSupabase = "supabase"
	DriverPostgres = "postgres"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Model     ModelConfig     `yaml:"model"`
	Mail      MailConfig      `yaml:"mail"`
	Store     StoreConfig     `yaml:"store"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Persona   PersonaConfig   `yaml:"persona"`
	Profile   string          `yaml:"profile"`
}

// LoggingConfig selects slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ModelConfig defines how to contact the language model.
type ModelConfig struct {
	Provider     string `yaml:"provider"`
	Endpoint     string `yaml:"endpoint"`
	Model        string `yaml:"model"`
	APIKey       string `yaml:"apiKey"`
	Instructions string `yaml:"instructions"`
}

// MailConfig wires the transactional email provider.
type MailConfig struct {
	Endpoint      string  `yaml:"endpoint"`
	APIKey        string  `yaml:"apiKey"`
	SenderName    string  `yaml:"senderName"`
	SenderEmail   string  `yaml:"senderEmail"`
	RatePerSecond float64 `yaml:"ratePerSecond"`
}

// StoreConfig describes where outreach records live.
type StoreConfig struct {
	Driver      string `yaml:"driver"`
	URL         string `yaml:"url"`
	Key         string `yaml:"key"`
	DSN         string `yaml:"dsn"`
	Table       string `yaml:"table"`
	AutoMigrate bool   `yaml:"autoMigrate"`
}

// SchedulerConfig defines how often the outreach cycle runs.
type SchedulerConfig struct {
	Interval   time.Duration `yaml:"interval"`
	Poll       time.Duration `yaml:"poll"`
	RunOnStart bool          `yaml:"runOnStart"`
}

// DiscoveryConfig tunes lead generation.
type DiscoveryConfig struct {
	LeadCount      int           `yaml:"leadCount"`
	MaxAttempts    int           `yaml:"maxAttempts"`
	InitialBackoff time.Duration `yaml:"initialBackoff"`
	Topics         []string      `yaml:"topics"`
	DebugPath      string        `yaml:"debugPath"`
}

// PersonaConfig is the sender signing the emails.
type PersonaConfig struct {
	Name    string `yaml:"name"`
	Title   string `yaml:"title"`
	Company string `yaml:"company"`
	Contact string `yaml:"contact"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

// Validate reports missing credentials; any error here is fatal at startup.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Model.APIKey) == "" {
		errs = append(errs, fmt.Errorf("model api key is required (%s)", geminiAPIKeyEnv))
	}
	switch c.Model.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		errs = append(errs, fmt.Errorf("unknown model provider %q", c.Model.Provider))
	}

	if strings.TrimSpace(c.Mail.APIKey) == "" {
		errs = append(errs, fmt.Errorf("mail api key is required (%s)", brevoAPIKeyEnv))
	}
	if strings.TrimSpace(c.Mail.SenderEmail) == "" {
		errs = append(errs, errors.New("mail sender email is required"))
	}

	if err := c.Store.Validate(); err != nil {
		errs = append(errs, err)
	}

	if c.Scheduler.Interval <= 0 || c.Scheduler.Poll <= 0 {
		errs = append(errs, errors.New("scheduler interval and poll must be positive"))
	}
	if c.Discovery.MaxAttempts <= 0 {
		errs = append(errs, errors.New("discovery maxAttempts must be positive"))
	}
	if len(c.Discovery.Topics) == 0 {
		errs = append(errs, errors.New("discovery topics must not be empty"))
	}

	return errors.Join(errs...)
}

// Validate checks that the selected driver has its credentials.
func (s StoreConfig) Validate() error {
	var errs []error

	switch s.Driver {
	case DriverSupabase:
		if strings.TrimSpace(s.URL) == "" {
			errs = append(errs, fmt.Errorf("store url is required (%s)", supabaseURLEnv))
		}
		if strings.TrimSpace(s.Key) == "" {
			errs = append(errs, fmt.Errorf("store key is required (%s)", supabaseKeyEnv))
		}
	case DriverPostgres:
		if strings.TrimSpace(s.DSN) == "" {
			errs = append(errs, fmt.Errorf("store dsn is required (%s)", databaseDSNEnv))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q (%s)", s.Driver, storeDriverEnv))
	}
	if strings.TrimSpace(s.Table) == "" {
		errs = append(errs, errors.New("store table is required"))
	}

	return errors.Join(errs...)
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(geminiAPIKeyEnv); v != "" {
		c.Model.APIKey = v
	}

	if v := os.Getenv(geminiModelEnv); v != "" {
		c.Model.Model = v
	}

	if v := os.Getenv(brevoAPIKeyEnv); v != "" {
		c.Mail.APIKey = v
	}

	if v := os.Getenv(supabaseURLEnv); v != "" {
		c.Store.URL = v
	}

	if v := os.Getenv(supabaseKeyEnv); v != "" {
		c.Store.Key = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Store.DSN = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(providerEnv); v != "" {
		c.Model.Provider = strings.ToLower(strings.TrimSpace(v))
	}

	// A DSN without Supabase credentials selects Postgres unless a driver is given.
	if v := os.Getenv(storeDriverEnv); v != "" {
		c.Store.Driver = strings.ToLower(strings.TrimSpace(v))
	} else if c.Store.Driver == DriverSupabase && c.Store.DSN != "" && c.Store.URL == "" && c.Store.Key == "" {
		c.Store.Driver = DriverPostgres
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Model.Provider != "" {
		base.Model.Provider = override.Model.Provider
	}
	if override.Model.Endpoint != "" {
		base.Model.Endpoint = override.Model.Endpoint
	}
	if override.Model.Model != "" {
		base.Model.Model = override.Model.Model
	}
	if override.Model.APIKey != "" {
		base.Model.APIKey = override.Model.APIKey
	}
	if override.Model.Instructions != "" {
		base.Model.Instructions = override.Model.Instructions
	}

	if override.Mail.Endpoint != "" {
		base.Mail.Endpoint = override.Mail.Endpoint
	}
	if override.Mail.APIKey != "" {
		base.Mail.APIKey = override.Mail.APIKey
	}
	if override.Mail.SenderName != "" {
		base.Mail.SenderName = override.Mail.SenderName
	}
	if override.Mail.SenderEmail != "" {
		base.Mail.SenderEmail = override.Mail.SenderEmail
	}
	if override.Mail.RatePerSecond > 0 {
		base.Mail.RatePerSecond = override.Mail.RatePerSecond
	}

	if override.Store.Driver != "" {
		base.Store.Driver = override.Store.Driver
	}
	if override.Store.URL != "" {
		base.Store.URL = override.Store.URL
	}
	if override.Store.Key != "" {
		base.Store.Key = override.Store.Key
	}
	if override.Store.DSN != "" {
		base.Store.DSN = override.Store.DSN
	}
	if override.Store.Table != "" {
		base.Store.Table = override.Store.Table
	}
	base.Store.AutoMigrate = base.Store.AutoMigrate || override.Store.AutoMigrate

	if override.Scheduler.Interval > 0 {
		base.Scheduler.Interval = override.Scheduler.Interval
	}
	if override.Scheduler.Poll > 0 {
		base.Scheduler.Poll = override.Scheduler.Poll
	}
	base.Scheduler.RunOnStart = base.Scheduler.RunOnStart || override.Scheduler.RunOnStart

	if override.Discovery.LeadCount > 0 {
		base.Discovery.LeadCount = override.Discovery.LeadCount
	}
	if override.Discovery.MaxAttempts > 0 {
		base.Discovery.MaxAttempts = override.Discovery.MaxAttempts
	}
	if override.Discovery.InitialBackoff > 0 {
		base.Discovery.InitialBackoff = override.Discovery.InitialBackoff
	}
	if len(override.Discovery.Topics) > 0 {
		base.Discovery.Topics = override.Discovery.Topics
	}
	if override.Discovery.DebugPath != "" {
		base.Discovery.DebugPath = override.Discovery.DebugPath
	}

	if override.Persona.Name != "" {
		base.Persona.Name = override.Persona.Name
	}
	if override.Persona.Title != "" {
		base.Persona.Title = override.Persona.Title
	}
	if override.Persona.Company != "" {
		base.Persona.Company = override.Persona.Company
	}
	if override.Persona.Contact != "" {
		base.Persona.Contact = override.Persona.Contact
	}

	if strings.TrimSpace(override.Profile) != "" {
		base.Profile = override.Profile
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Model: ModelConfig{
			Provider:     ProviderGemini,
			Endpoint:     "https://generativelanguage.googleapis.com/v1beta/openai/chat/completions",
			Model:        "gemini-2.0-flash",
			Instructions: "You are a cold mailing agent. You will generate a cold mail for a given company. Please make sure the mail is professional and the company is in the tech industry.",
		},
		Mail: MailConfig{
			Endpoint:    "https://api.brevo.com/v3/smtp/email",
			SenderName:  "XapRise Solutions",
			SenderEmail: "codecraftersweb3@gmail.com",
		},
		Store: StoreConfig{
			Driver: DriverSupabase,
			Table:  "cold_mailing_agent",
		},
		Scheduler: SchedulerConfig{
			Interval: 72 * time.Minute,
			Poll:     time.Second,
		},
		Discovery: DiscoveryConfig{
			LeadCount:      5,
			MaxAttempts:    5,
			InitialBackoff: 5 * time.Second,
			Topics: []string{
				"AI tools", "React apps", "Fintech", "eCommerce automation",
				"Voice AI", "Smart Contracts", "Customer Support Automation",
			},
			DebugPath: "json_debug_output.txt",
		},
		Persona: PersonaConfig{
			Name:    "Habib ullah",
			Title:   "Chief Executive Officer",
			Company: "XapRise Solutions",
			Contact: "03343295024",
		},
		Profile: `We're a development team offering services in:
- JAMstack, MERNstack, Frontend, and Backend Development
- AI Agents
- Voice & Customer Support AI
- AI Automated Workflows
- Smart Contracts, Blockchain
- Shopify & WordPress
- Debugging, Migrations, API Development`,
	}
}
