package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mitchelldurbincs/GhostChaseRL/internal/agent"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/common"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/experience"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/game"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/game/placement"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/report"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/training"
)

// EnvPrefix is prepended to every environment variable override
const EnvPrefix = "GHOST"

// Config holds all configuration for the application
type Config struct {
	Game       GameConfig       `mapstructure:"game"`
	Agent      AgentConfig      `mapstructure:"agent"`
	Training   TrainingConfig   `mapstructure:"training"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Experience ExperienceConfig `mapstructure:"experience"`
	Report     ReportConfig     `mapstructure:"report"`
	Server     ServerConfig     `mapstructure:"server"`
	UI         UIConfig         `mapstructure:"ui"`
}

// GameConfig holds environment rules
type GameConfig struct {
	GridSize             int               `mapstructure:"grid_size"`
	NumFoods             int               `mapstructure:"num_foods"`
	MinDistance          int               `mapstructure:"min_distance"`
	WinScore             int               `mapstructure:"win_score"`
	MaxSteps             int               `mapstructure:"max_steps"`
	MaxPlacementAttempts int               `mapstructure:"max_placement_attempts"`
	PursuitProbability   float64           `mapstructure:"pursuit_probability"`
	AxisProbability      float64           `mapstructure:"axis_probability"`
	Rewards              game.RewardConfig `mapstructure:"rewards"`
}

// AgentConfig holds learning hyperparameters
type AgentConfig struct {
	Alpha        float64 `mapstructure:"alpha"`
	Gamma        float64 `mapstructure:"gamma"`
	Epsilon      float64 `mapstructure:"epsilon"`
	EpsilonDecay float64 `mapstructure:"epsilon_decay"`
	MinEpsilon   float64 `mapstructure:"min_epsilon"`
}

// TrainingConfig holds training loop settings
type TrainingConfig struct {
	Episodes     int `mapstructure:"episodes"`
	LogEvery     int `mapstructure:"log_every"`
	EvalEpisodes int `mapstructure:"eval_episodes"`

	// Seed of 0 seeds from the clock
	Seed int64 `mapstructure:"seed"`

	// MonitorInterval is in seconds; 0 disables the progress monitor
	MonitorInterval int `mapstructure:"monitor_interval"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console or json
}

// ExperienceConfig holds transition recording settings
type ExperienceConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	Dir              string `mapstructure:"dir"`
	BatchSize        int    `mapstructure:"batch_size"`
	MaxFileSizeMB    int    `mapstructure:"max_file_size_mb"`
	RotationInterval int    `mapstructure:"rotation_interval"` // Seconds; 0 disables
}

// ReportConfig holds training report settings
type ReportConfig struct {
	Path      string `mapstructure:"path"` // Empty disables the report
	Title     string `mapstructure:"title"`
	Smoothing int    `mapstructure:"smoothing"`
}

// ServerConfig holds network endpoints
type ServerConfig struct {
	HealthAddr string `mapstructure:"health_addr"` // Empty disables the gRPC health server
}

// UIConfig holds viewer settings
type UIConfig struct {
	CellSize       int          `mapstructure:"cell_size"`
	InfoHeight     int          `mapstructure:"info_height"`
	TicksPerSecond int          `mapstructure:"ticks_per_second"`
	EndPauseMs     int          `mapstructure:"end_pause_ms"`
	WindowTitle    string       `mapstructure:"window_title"`
	Colors         ColorsConfig `mapstructure:"colors"`
}

// ColorsConfig holds viewer colors as RGB triples
type ColorsConfig struct {
	Player     [3]int `mapstructure:"player"`
	Ghost      [3]int `mapstructure:"ghost"`
	Food       [3]int `mapstructure:"food"`
	Background [3]int `mapstructure:"background"`
	GridLines  [3]int `mapstructure:"grid_lines"`
	Text       [3]int `mapstructure:"text"`
	Victory    [3]int `mapstructure:"victory"`
	Defeat     [3]int `mapstructure:"defeat"`
}

var (
	// Global config instance. Readers hold a snapshot; reloads swap the
	// pointer under mu and never mutate a published Config.
	mu  sync.RWMutex
	cfg *Config
	v   *viper.Viper
)

func current() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

func swap(c *Config) {
	mu.Lock()
	cfg = c
	mu.Unlock()
}

// decode unmarshals the viper state into a fresh Config and validates it
func decode() (*Config, error) {
	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := Validate(c); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return c, nil
}

func rgbDefault(c color.RGBA) []int {
	return []int{int(c.R), int(c.G), int(c.B)}
}

// setViperDefaults sets all default values using Viper's SetDefault
func setViperDefaults(v *viper.Viper) {
	// Game defaults
	v.SetDefault("game.grid_size", game.DefaultGridSize)
	v.SetDefault("game.num_foods", game.DefaultNumFoods)
	v.SetDefault("game.min_distance", game.DefaultMinDistance)
	v.SetDefault("game.win_score", game.DefaultWinScore)
	v.SetDefault("game.max_steps", game.DefaultMaxSteps)
	v.SetDefault("game.max_placement_attempts", placement.DefaultMaxAttempts)
	v.SetDefault("game.pursuit_probability", game.DefaultPursuitProbability)
	v.SetDefault("game.axis_probability", game.DefaultAxisProbability)
	v.SetDefault("game.rewards.step", game.DefaultStepReward)
	v.SetDefault("game.rewards.food", game.DefaultFoodReward)
	v.SetDefault("game.rewards.caught", game.DefaultCaughtReward)
	v.SetDefault("game.rewards.win", game.DefaultWinReward)

	// Agent defaults
	v.SetDefault("agent.alpha", agent.DefaultAlpha)
	v.SetDefault("agent.gamma", agent.DefaultGamma)
	v.SetDefault("agent.epsilon", agent.DefaultEpsilon)
	v.SetDefault("agent.epsilon_decay", agent.DefaultEpsilonDecay)
	v.SetDefault("agent.min_epsilon", agent.DefaultMinEpsilon)

	// Training defaults
	v.SetDefault("training.episodes", training.DefaultEpisodes)
	v.SetDefault("training.log_every", training.DefaultLogEvery)
	v.SetDefault("training.eval_episodes", 100)
	v.SetDefault("training.seed", 0)
	v.SetDefault("training.monitor_interval", 10)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Experience defaults
	v.SetDefault("experience.enabled", false)
	v.SetDefault("experience.dir", "experiences")
	v.SetDefault("experience.batch_size", 1000)
	v.SetDefault("experience.max_file_size_mb", 16)
	v.SetDefault("experience.rotation_interval", 0)

	// Report defaults
	v.SetDefault("report.path", "")
	v.SetDefault("report.title", report.DefaultOptions().Title)
	v.SetDefault("report.smoothing", report.DefaultSmoothing)

	// Server defaults
	v.SetDefault("server.health_addr", "")

	// UI defaults
	v.SetDefault("ui.cell_size", 40)
	v.SetDefault("ui.info_height", 50)
	v.SetDefault("ui.ticks_per_second", 10)
	v.SetDefault("ui.end_pause_ms", 2000)
	v.SetDefault("ui.window_title", "Ghost Chase")

	// Color defaults
	v.SetDefault("ui.colors.player", rgbDefault(common.PlayerColor))
	v.SetDefault("ui.colors.ghost", rgbDefault(common.GhostColor))
	v.SetDefault("ui.colors.food", rgbDefault(common.FoodColor))
	v.SetDefault("ui.colors.background", rgbDefault(common.BackgroundColor))
	v.SetDefault("ui.colors.grid_lines", rgbDefault(common.GridLineColor))
	v.SetDefault("ui.colors.text", rgbDefault(common.TextColor))
	v.SetDefault("ui.colors.victory", rgbDefault(common.VictoryColor))
	v.SetDefault("ui.colors.defeat", rgbDefault(common.DefeatColor))
}

// Init initializes the configuration. A configPath that does not exist falls
// back to defaults.
func Init(configPath string) error {
	v = viper.New()

	setViperDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/ghost-chase")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case configPath != "" && errors.Is(err, os.ErrNotExist):
			// Requested file is missing; use defaults
		case configPath == "" && errors.As(err, &notFound):
			// No config in the default locations; use defaults
		default:
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	c, err := decode()
	if err != nil {
		return err
	}

	swap(c)
	return nil
}

// Get returns the global config instance
func Get() *Config {
	if c := current(); c != nil {
		return c
	}
	// Initialize with defaults if not already initialized
	if err := Init(""); err != nil {
		panic("failed to initialize config with defaults: " + err.Error())
	}
	return current()
}

// GetViper returns the viper instance for advanced usage
func GetViper() *viper.Viper {
	if v == nil {
		panic("config not initialized - call Init() first")
	}
	return v
}

// LoadEnvironmentConfig merges config.<env>.yaml from the directory of the
// loaded config file (or the working directory) over the current values.
// A missing overlay is not an error.
func LoadEnvironmentConfig(env string) error {
	if env == "" {
		return nil
	}

	dir := "."
	if used := v.ConfigFileUsed(); used != "" {
		dir = filepath.Dir(used)
	}
	envFile := filepath.Join(dir, fmt.Sprintf("config.%s.yaml", env))

	f, err := os.Open(envFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error opening environment config %s: %w", envFile, err)
	}
	defer f.Close()

	v.SetConfigType("yaml")
	if err := v.MergeConfig(f); err != nil {
		return fmt.Errorf("error merging environment config %s: %w", envFile, err)
	}

	merged, err := decode()
	if err != nil {
		return fmt.Errorf("merged config: %w", err)
	}
	swap(merged)

	return nil
}

// Set allows runtime config updates. Get returns a new struct afterwards;
// the result is not validated.
func Set(key string, value interface{}) {
	v.Set(key, value)
	c := &Config{}
	if err := v.Unmarshal(c); err == nil {
		swap(c)
	}
}

// GetString gets a string value from config
func GetString(key string) string {
	return v.GetString(key)
}

// GetInt gets an int value from config
func GetInt(key string) int {
	return v.GetInt(key)
}

// GetBool gets a bool value from config
func GetBool(key string) bool {
	return v.GetBool(key)
}

// GetFloat64 gets a float64 value from config
func GetFloat64(key string) float64 {
	return v.GetFloat64(key)
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	return v.ConfigFileUsed()
}

// WatchConfig enables hot-reloading of the config file. onChange receives the
// new Config once it has decoded and validated; a rejected edit is logged and
// the previous Config stays in place.
func WatchConfig(logger zerolog.Logger, onChange func(*Config)) {
	logger = logger.With().Str("component", "config").Logger()
	v.OnConfigChange(func(e fsnotify.Event) {
		if err := reload(onChange); err != nil {
			logger.Error().Err(err).Str("file", e.Name).Msg("Config reload rejected")
		}
	})
	v.WatchConfig()
}

func reload(onChange func(*Config)) error {
	c, err := decode()
	if err != nil {
		return err
	}
	swap(c)
	if onChange != nil {
		onChange(c)
	}
	return nil
}

// GameConfig converts the game section into environment rules
func (c *Config) GameConfig() game.Config {
	g := c.Game
	return game.Config{
		GridSize:             g.GridSize,
		NumFoods:             g.NumFoods,
		MinDistance:          g.MinDistance,
		WinScore:             g.WinScore,
		MaxSteps:             g.MaxSteps,
		MaxPlacementAttempts: g.MaxPlacementAttempts,
		PursuitProbability:   g.PursuitProbability,
		AxisProbability:      g.AxisProbability,
		Rewards:              g.Rewards,
	}
}

// AgentConfig converts the agent section into hyperparameters
func (c *Config) AgentConfig() agent.Config {
	return agent.Config{
		Alpha:   c.Agent.Alpha,
		Gamma:   c.Agent.Gamma,
		Epsilon: c.Agent.Epsilon,
	}
}

// TrainingConfig converts the training and agent sections into loop settings
func (c *Config) TrainingConfig() training.Config {
	return training.Config{
		Episodes:     c.Training.Episodes,
		LogEvery:     c.Training.LogEvery,
		EpsilonDecay: c.Agent.EpsilonDecay,
		MinEpsilon:   c.Agent.MinEpsilon,
	}
}

// PersistenceConfig converts the experience section
func (c *Config) PersistenceConfig() experience.PersistenceConfig {
	pc := experience.DefaultPersistenceConfig()
	if c.Experience.Enabled {
		pc.Type = experience.PersistenceTypeFile
	}
	pc.BaseDir = c.Experience.Dir
	pc.BatchSize = c.Experience.BatchSize
	pc.MaxFileSize = int64(c.Experience.MaxFileSizeMB) * 1024 * 1024
	pc.RotationInterval = time.Duration(c.Experience.RotationInterval) * time.Second
	return pc
}

// ReportOptions converts the report section
func (c *Config) ReportOptions() report.Options {
	return report.Options{Title: c.Report.Title, Smoothing: c.Report.Smoothing}
}

// Validate validates the configuration values
func Validate(c *Config) error {
	if err := c.GameConfig().Validate(); err != nil {
		return fmt.Errorf("game: %w", err)
	}
	if err := c.AgentConfig().Validate(); err != nil {
		return fmt.Errorf("agent: %w", err)
	}
	if err := c.TrainingConfig().Validate(); err != nil {
		return fmt.Errorf("training: %w", err)
	}
	if c.Training.EvalEpisodes < 0 {
		return fmt.Errorf("training.eval_episodes must be non-negative")
	}
	if c.Training.MonitorInterval < 0 {
		return fmt.Errorf("training.monitor_interval must be non-negative")
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}

	if c.Experience.Enabled && c.Experience.Dir == "" {
		return fmt.Errorf("experience.dir is required when experience is enabled")
	}
	if c.Experience.BatchSize <= 0 {
		return fmt.Errorf("experience.batch_size must be positive")
	}
	if c.Experience.MaxFileSizeMB < 0 {
		return fmt.Errorf("experience.max_file_size_mb must be non-negative")
	}
	if c.Experience.RotationInterval < 0 {
		return fmt.Errorf("experience.rotation_interval must be non-negative")
	}

	if c.Report.Smoothing < 0 {
		return fmt.Errorf("report.smoothing must be non-negative")
	}

	if c.UI.CellSize <= 0 {
		return fmt.Errorf("ui.cell_size must be positive")
	}
	if c.UI.InfoHeight < 0 {
		return fmt.Errorf("ui.info_height must be non-negative")
	}
	if c.UI.TicksPerSecond <= 0 {
		return fmt.Errorf("ui.ticks_per_second must be positive")
	}
	if c.UI.EndPauseMs < 0 {
		return fmt.Errorf("ui.end_pause_ms must be non-negative")
	}

	validateRGB := func(rgb [3]int, name string) error {
		for i, v := range rgb {
			if v < 0 || v > 255 {
				return fmt.Errorf("%s[%d] must be between 0 and 255", name, i)
			}
		}
		return nil
	}

	colors := c.UI.Colors
	for _, entry := range []struct {
		rgb  [3]int
		name string
	}{
		{colors.Player, "ui.colors.player"},
		{colors.Ghost, "ui.colors.ghost"},
		{colors.Food, "ui.colors.food"},
		{colors.Background, "ui.colors.background"},
		{colors.GridLines, "ui.colors.grid_lines"},
		{colors.Text, "ui.colors.text"},
		{colors.Victory, "ui.colors.victory"},
		{colors.Defeat, "ui.colors.defeat"},
	} {
		if err := validateRGB(entry.rgb, entry.name); err != nil {
			return err
		}
	}

	return nil
}
