package config

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/spf13/viper"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the server will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`

	// RedisURL is the connection string for the Redis instance backing
	// the shipping settings store.
	RedisURL string `mapstructure:"REDIS_URL" required:"true"`

	// Quotes holds the tuning knobs for the rate aggregation fan-out.
	Quotes QuotesConfig `mapstructure:",squash"`

	// Carriers holds the upstream endpoints for the carrier adapters.
	Carriers CarriersConfig `mapstructure:",squash"`
}

// QuotesConfig controls how the per-carrier rate fan-out behaves.
type QuotesConfig struct {
	// CarrierTimeoutSeconds is the deadline for a single carrier rate call.
	CarrierTimeoutSeconds int `mapstructure:"CARRIER_TIMEOUT_SECONDS" default:"10"`
	// MaxParallelCarriers bounds how many carrier calls run concurrently.
	MaxParallelCarriers int `mapstructure:"MAX_PARALLEL_CARRIERS" default:"4"`
}

// CarriersConfig holds the base URLs for each carrier integration.
type CarriersConfig struct {
	// VelocityURL is the base URL of the Velocity Express rating API.
	VelocityURL string `mapstructure:"CARRIER_VELOCITY_URL" default:"https://api.velocity-express.com"`
	// GlobalTransURL is the base URL of the GlobalTrans rating API.
	GlobalTransURL string `mapstructure:"CARRIER_GLOBALTRANS_URL" default:"https://rates.globaltrans.net"`
	// MercurioURL is the public rate-calculator page of Mercurio Cargo.
	MercurioURL string `mapstructure:"CARRIER_MERCURIO_URL" default:"https://www.mercuriocargo.com/cotizador"`
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// processTags iterates over the struct fields, binds env keys and sets
// default values in Viper.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		defaultValue := field.Tag.Get("default")

		if key != "" {
			v.BindEnv(key)
		}

		if key != "" && defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		if field.Tag.Get("required") == "true" {
			if isZero(val.Field(i)) {
				return fmt.Errorf("missing required configuration: %s", field.Tag.Get("mapstructure"))
			}
		}
	}
	return nil
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
