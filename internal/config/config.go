// Package config loads the service configuration. Values are layered:
// built-in defaults, then an optional YAML file named by CONFIG_FILE, then
// environment variables. The result is validated before it is returned.
package config

import (
	"time"

	"brain2-conceptmap/internal/domain/conceptmap"
	"brain2-conceptmap/internal/domain/interaction"
)

// Environment represents the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Note source kinds.
const (
	SourceMemory   = "memory"
	SourceFile     = "file"
	SourceDynamoDB = "dynamodb"
)

// LLM provider kinds.
const (
	ProviderMock   = "mock"
	ProviderOpenAI = "openai"
)

// Config holds all configuration for the service.
type Config struct {
	Environment   Environment   `yaml:"environment" validate:"required,oneof=development staging production"`
	LogLevel      string        `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	Version       string        `yaml:"version"`
	Server        Server        `yaml:"server"`
	Canvas        Canvas        `yaml:"canvas"`
	Layout        Layout        `yaml:"layout"`
	View          View          `yaml:"view"`
	Notes         Notes         `yaml:"notes"`
	LLM           LLM           `yaml:"llm"`
	Breaker       Breaker       `yaml:"breaker"`
	Observability Observability `yaml:"observability"`
	Events        Events        `yaml:"events"`
	Auth          Auth          `yaml:"auth"`
}

// Server contains HTTP server settings.
type Server struct {
	Port            int           `yaml:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

// Canvas is the logical drawing surface the layouts target.
type Canvas struct {
	Width  float64 `yaml:"width" validate:"gt=0"`
	Height float64 `yaml:"height" validate:"gt=0"`
}

// Layout holds the collision relaxation tunables.
type Layout struct {
	OverviewIterations int     `yaml:"overview_iterations" validate:"min=0,max=1000"`
	ExpandedIterations int     `yaml:"expanded_iterations" validate:"min=0,max=1000"`
	OverviewMargin     float64 `yaml:"overview_margin" validate:"min=0"`
	ExpandedMargin     float64 `yaml:"expanded_margin" validate:"min=0"`
	ContainmentPadding float64 `yaml:"containment_padding" validate:"min=0"`
}

// View holds the zoom limits and step sizes.
type View struct {
	MinZoom    float64 `yaml:"min_zoom" validate:"gt=0"`
	MaxZoom    float64 `yaml:"max_zoom" validate:"gtfield=MinZoom"`
	WheelStep  float64 `yaml:"wheel_step" validate:"gt=0"`
	ButtonStep float64 `yaml:"button_step" validate:"gt=0"`
}

// Notes selects where notes are read from.
type Notes struct {
	Source    string `yaml:"source" validate:"oneof=memory file dynamodb"`
	Path      string `yaml:"path" validate:"required_if=Source file"`
	Watch     bool   `yaml:"watch"`
	TableName string `yaml:"table_name" validate:"required_if=Source dynamodb"`
	UserID    string `yaml:"user_id" validate:"required_if=Source dynamodb"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
}

// LLM configures the connection suggester.
type LLM struct {
	Provider string        `yaml:"provider" validate:"oneof=mock openai"`
	APIKey   string        `yaml:"api_key" validate:"required_if=Provider openai"`
	Model    string        `yaml:"model"`
	BaseURL  string        `yaml:"base_url" validate:"omitempty,url"`
	Timeout  time.Duration `yaml:"timeout" validate:"gt=0"`
}

// Breaker configures the circuit breaker around the suggester.
type Breaker struct {
	MaxRequests  uint32        `yaml:"max_requests" validate:"min=1"`
	Interval     time.Duration `yaml:"interval" validate:"min=0"`
	Timeout      time.Duration `yaml:"timeout" validate:"gt=0"`
	FailureRatio float64       `yaml:"failure_ratio" validate:"gt=0,lte=1"`
	MinRequests  uint32        `yaml:"min_requests" validate:"min=1"`
}

// Observability toggles metrics and tracing.
type Observability struct {
	EnableMetrics   bool    `yaml:"enable_metrics"`
	EnableTracing   bool    `yaml:"enable_tracing"`
	TracingEndpoint string  `yaml:"tracing_endpoint" validate:"required_if=EnableTracing true"`
	SampleRate      float64 `yaml:"sample_rate" validate:"min=0,max=1"`
}

// Events configures domain event publishing. An empty bus disables it.
type Events struct {
	EventBusName string `yaml:"event_bus_name"`
	Source       string `yaml:"source"`
}

// Auth configures bearer-token checks on the API. With neither a secret nor
// a public key the API is open.
type Auth struct {
	JWTSecret    string   `yaml:"jwt_secret"`
	JWTPublicKey string   `yaml:"jwt_public_key"`
	Issuer       string   `yaml:"issuer"`
	Audience     []string `yaml:"audience"`
}

// Enabled reports whether tokens are checked.
func (a Auth) Enabled() bool {
	return a.JWTSecret != "" || a.JWTPublicKey != ""
}

// SigningMethod returns RS256 when a public key is configured, HS256 otherwise.
func (a Auth) SigningMethod() string {
	if a.JWTPublicKey != "" {
		return "RS256"
	}
	return "HS256"
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	layout := conceptmap.DefaultLayoutConfig()
	view := interaction.DefaultSettings()

	return Config{
		Environment: Development,
		Version:     "dev",
		Server: Server{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"http://localhost:5173", "http://localhost:3000"},
		},
		Canvas: Canvas{Width: layout.Width, Height: layout.Height},
		Layout: Layout{
			OverviewIterations: layout.OverviewIterations,
			ExpandedIterations: layout.ExpandedIterations,
			OverviewMargin:     layout.OverviewMargin,
			ExpandedMargin:     layout.ExpandedMargin,
			ContainmentPadding: layout.ContainmentPadding,
		},
		View: View{
			MinZoom:    view.MinZoom,
			MaxZoom:    view.MaxZoom,
			WheelStep:  view.WheelStep,
			ButtonStep: view.ButtonStep,
		},
		Notes: Notes{Source: SourceMemory, Region: "us-east-1"},
		LLM: LLM{
			Provider: ProviderMock,
			Model:    "gpt-4o-mini",
			Timeout:  30 * time.Second,
		},
		Breaker: Breaker{
			MaxRequests:  3,
			Interval:     time.Minute,
			Timeout:      30 * time.Second,
			FailureRatio: 0.6,
			MinRequests:  3,
		},
		Observability: Observability{
			EnableMetrics: true,
			SampleRate:    1.0,
		},
		Events: Events{Source: "brain2.conceptmap"},
		Auth:   Auth{Issuer: "brain2", Audience: []string{"conceptmap"}},
	}
}

// LayoutConfig converts the canvas and layout sections for the layout engine.
func (c *Config) LayoutConfig() conceptmap.LayoutConfig {
	return conceptmap.LayoutConfig{
		Width:              c.Canvas.Width,
		Height:             c.Canvas.Height,
		OverviewIterations: c.Layout.OverviewIterations,
		ExpandedIterations: c.Layout.ExpandedIterations,
		OverviewMargin:     c.Layout.OverviewMargin,
		ExpandedMargin:     c.Layout.ExpandedMargin,
		ContainmentPadding: c.Layout.ContainmentPadding,
	}
}

// ViewSettings converts the view section for the interaction controller.
func (c *Config) ViewSettings() interaction.Settings {
	return interaction.Settings{
		MinZoom:    c.View.MinZoom,
		MaxZoom:    c.View.MaxZoom,
		WheelStep:  c.View.WheelStep,
		ButtonStep: c.View.ButtonStep,
	}
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}
