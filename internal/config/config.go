package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "boardsim.cfg.json"

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds settings for the in-memory SQLite backend that is dumped to disk.
type SQLiteConfig struct {
	OutputDir    string        `json:"outputDir" mapstructure:"outputDir"`
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
}

// DBConfig holds Postgres connection settings
type DBConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
	SSLMode  string `json:"sslMode" mapstructure:"sslMode"`
}

// WebSocketConfig holds settings for streaming to a live viewer
type WebSocketConfig struct {
	URL    string `json:"url" mapstructure:"url"`
	Secret string `json:"secret" mapstructure:"secret"`
}

// StorageConfig selects and configures the telemetry backend
type StorageConfig struct {
	Type      string          `json:"type" mapstructure:"type"`
	Memory    MemoryConfig    `json:"memory" mapstructure:"memory"`
	SQLite    SQLiteConfig    `json:"sqlite" mapstructure:"sqlite"`
	Postgres  DBConfig        `json:"postgres" mapstructure:"postgres"`
	WebSocket WebSocketConfig `json:"websocket" mapstructure:"websocket"`
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled         bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName     string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout    time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	MetricsInterval time.Duration `json:"metricsInterval" mapstructure:"metricsInterval"`
	Endpoint        string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure        bool          `json:"insecure" mapstructure:"insecure"`
}

// RetaliationConfig tunes the self-destruct tripped by a failed steal
type RetaliationConfig struct {
	Chance      float64 `json:"chance" mapstructure:"chance"`
	Damage      float64 `json:"damage" mapstructure:"damage"`
	Penetration float64 `json:"penetration" mapstructure:"penetration"`
	DamageType  string  `json:"damageType" mapstructure:"damageType"`
	ArmourFloor float64 `json:"armourFloor" mapstructure:"armourFloor"`
}

// BoardConfig holds the boarding protocol tuning
type BoardConfig struct {
	MinTime          float64           `json:"minTime" mapstructure:"minTime"`
	MaxTime          float64           `json:"maxTime" mapstructure:"maxTime"`
	ProximityFactor  float64           `json:"proximityFactor" mapstructure:"proximityFactor"`
	MaxRelativeSpeed float64           `json:"maxRelativeSpeed" mapstructure:"maxRelativeSpeed"`
	SkimFraction     float64           `json:"skimFraction" mapstructure:"skimFraction"`
	StunDuration     float64           `json:"stunDuration" mapstructure:"stunDuration"`
	Retaliation      RetaliationConfig `json:"retaliation" mapstructure:"retaliation"`
}

// SimConfig holds settings of the simulation host loop
type SimConfig struct {
	Seed         uint64        `json:"seed" mapstructure:"seed"`
	TickInterval time.Duration `json:"tickInterval" mapstructure:"tickInterval"`
	ScriptFile   string        `json:"scriptFile" mapstructure:"scriptFile"`
}

// GeoConfig anchors the sector plane on the globe for spatial storage
type GeoConfig struct {
	AnchorLon float64 `json:"anchorLon" mapstructure:"anchorLon"`
	AnchorLat float64 `json:"anchorLat" mapstructure:"anchorLat"`
	Scale     float64 `json:"scale" mapstructure:"scale"` // meters per sector unit
}

// InfluxConfig holds InfluxDB settings
type InfluxConfig struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Protocol string `json:"protocol" mapstructure:"protocol"`
	Token    string `json:"token" mapstructure:"token"`
	Org      string `json:"org" mapstructure:"org"`
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("defaultTag", "Skirmish")
	viper.SetDefault("logsDir", "./boardlogs")

	viper.SetDefault("board.minTime", 2.0)
	viper.SetDefault("board.maxTime", 15.0)
	viper.SetDefault("board.proximityFactor", 0.8)
	viper.SetDefault("board.maxRelativeSpeed", 25.0)
	viper.SetDefault("board.skimFraction", 0.1)
	viper.SetDefault("board.stunDuration", 1.0)
	viper.SetDefault("board.retaliation.chance", 0.4)
	viper.SetDefault("board.retaliation.damage", 100.0)
	viper.SetDefault("board.retaliation.penetration", 1.0)
	viper.SetDefault("board.retaliation.damageType", "normal")
	viper.SetDefault("board.retaliation.armourFloor", 1.0)

	viper.SetDefault("sim.seed", 0)
	viper.SetDefault("sim.tickInterval", "100ms")
	viper.SetDefault("sim.scriptFile", "")

	viper.SetDefault("geo.anchorLon", 0.0)
	viper.SetDefault("geo.anchorLat", 0.0)
	viper.SetDefault("geo.scale", 1.0)

	viper.SetDefault("api.serverUrl", "http://localhost:5000/api")
	viper.SetDefault("api.apiKey", "")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "boarding")
	viper.SetDefault("db.sslMode", "disable")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./recordings")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.outputDir", "./recordings")
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")
	viper.SetDefault("storage.websocket.url", "ws://localhost:5000/ws/ingest")
	viper.SetDefault("storage.websocket.secret", "")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "boarding-metrics")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "boardsim")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.metricsInterval", "30s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)
}

// BindFlags binds command line flags onto config keys. Flags that were set on the
// command line win over the file.
func BindFlags(fs *pflag.FlagSet) error {
	bindings := map[string]string{
		"log-level":    "logLevel",
		"storage":      "storage.type",
		"seed":         "sim.seed",
		"script":       "sim.scriptFile",
		"otel-enabled": "otel.enabled",
	}
	for flag, key := range bindings {
		f := fs.Lookup(flag)
		if f == nil {
			continue
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag %s: %w", flag, err)
		}
	}
	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetStorageConfig returns the storage backend configuration. The postgres backend
// uses the top-level db section.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			OutputDir:    viper.GetString("storage.sqlite.outputDir"),
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
		},
		Postgres: GetDBConfig(),
		WebSocket: WebSocketConfig{
			URL:    viper.GetString("storage.websocket.url"),
			Secret: viper.GetString("storage.websocket.secret"),
		},
	}
}

// GetDBConfig returns the Postgres connection settings.
func GetDBConfig() DBConfig {
	return DBConfig{
		Host:     viper.GetString("db.host"),
		Port:     viper.GetString("db.port"),
		Username: viper.GetString("db.username"),
		Password: viper.GetString("db.password"),
		Database: viper.GetString("db.database"),
		SSLMode:  viper.GetString("db.sslMode"),
	}
}

// GetOTelConfig returns the OpenTelemetry configuration.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:         viper.GetBool("otel.enabled"),
		ServiceName:     viper.GetString("otel.serviceName"),
		BatchTimeout:    viper.GetDuration("otel.batchTimeout"),
		MetricsInterval: viper.GetDuration("otel.metricsInterval"),
		Endpoint:        viper.GetString("otel.endpoint"),
		Insecure:        viper.GetBool("otel.insecure"),
	}
}

// GetBoardConfig returns the boarding protocol tuning.
func GetBoardConfig() BoardConfig {
	return BoardConfig{
		MinTime:          viper.GetFloat64("board.minTime"),
		MaxTime:          viper.GetFloat64("board.maxTime"),
		ProximityFactor:  viper.GetFloat64("board.proximityFactor"),
		MaxRelativeSpeed: viper.GetFloat64("board.maxRelativeSpeed"),
		SkimFraction:     viper.GetFloat64("board.skimFraction"),
		StunDuration:     viper.GetFloat64("board.stunDuration"),
		Retaliation: RetaliationConfig{
			Chance:      viper.GetFloat64("board.retaliation.chance"),
			Damage:      viper.GetFloat64("board.retaliation.damage"),
			Penetration: viper.GetFloat64("board.retaliation.penetration"),
			DamageType:  viper.GetString("board.retaliation.damageType"),
			ArmourFloor: viper.GetFloat64("board.retaliation.armourFloor"),
		},
	}
}

// GetSimConfig returns the simulation host settings.
func GetSimConfig() SimConfig {
	return SimConfig{
		Seed:         viper.GetUint64("sim.seed"),
		TickInterval: viper.GetDuration("sim.tickInterval"),
		ScriptFile:   viper.GetString("sim.scriptFile"),
	}
}

// GetGeoConfig returns the sector plane anchor.
func GetGeoConfig() GeoConfig {
	return GeoConfig{
		AnchorLon: viper.GetFloat64("geo.anchorLon"),
		AnchorLat: viper.GetFloat64("geo.anchorLat"),
		Scale:     viper.GetFloat64("geo.scale"),
	}
}

// GetInfluxConfig returns the InfluxDB settings.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:  viper.GetBool("influx.enabled"),
		Host:     viper.GetString("influx.host"),
		Port:     viper.GetString("influx.port"),
		Protocol: viper.GetString("influx.protocol"),
		Token:    viper.GetString("influx.token"),
		Org:      viper.GetString("influx.org"),
	}
}
