package core

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env          string
		Debug        bool
		TestMode     bool
		AppName      string
		Build        string
		RollbarToken string
		GradeScale   GradeScale

		Server   ServerConfig
		Database DatabaseConfig
		Redis    RedisConfig
	}

	ServerConfig struct {
		Host               string
		Address            string
		DebugAddress       string
		ReadTimeout        time.Duration
		WriteTimeout       time.Duration
		ShutdownTimeout    time.Duration
		DisableRequestLogs bool
		LogRequestBodies   bool
		CORSOrigins        []string
	}

	DatabaseConfig struct {
		Engine           string
		Host             string
		Port             string
		Name             string
		User             string
		Password         string
		AdminUser        string
		AdminPassword    string
		DisableTLS       bool
		MaxOpenConns     int
		MaxIdleConns     int
		ConnMaxIdleTime  time.Duration
		ConnectTimeout   time.Duration
		StatementTimeout time.Duration
	}

	RedisConfig struct {
		Address    string
		Password   string
		DB         int
		SummaryTTL time.Duration
	}
)

// Address returns the "host:port" the database listens on.
func (c DatabaseConfig) Address() string {
	return c.Host + ":" + c.Port
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "English Center")
	v.SetDefault("build", "develop")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("grading.scale", "")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugAddress", ":4000")
	v.SetDefault("server.readTimeout", 5*time.Second)
	v.SetDefault("server.writeTimeout", 10*time.Second)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.disableRequestLogs", false)
	v.SetDefault("server.logRequestBodies", false)
	v.SetDefault("server.corsOrigins", []string{"*"})

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "english_center")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.adminUser", "")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("database.maxOpenConns", 20)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxIdleTime", 30*time.Second)
	v.SetDefault("database.connectTimeout", 2*time.Second)
	v.SetDefault("database.statementTimeout", 10*time.Second)

	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.summaryTTL", 10*time.Minute)
}

// NewConfig loads the configuration for the environment named by $ENV (DEV, TEST, QA or PROD).
// Values come from defaults, then `config/.env.<env>` (if present), then the process environment.
func NewConfig() *Config {
	v := viper.New()
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.Set("testMode", true)
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}

	// server.address <- SERVER_ADDRESS, database.maxOpenConns <- DATABASE_MAXOPENCONNS
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	scale, err := ParseGradeScale(v.GetString("grading.scale"))
	if err != nil {
		log.Fatalf("config.grading.scale: %v", err)
	}

	return &Config{
		Env:          env,
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		AppName:      v.GetString("appName"),
		Build:        v.GetString("build"),
		RollbarToken: v.GetString("rollbarToken"),
		GradeScale:   scale,
		Server: ServerConfig{
			Host:               v.GetString("server.host"),
			Address:            v.GetString("server.address"),
			DebugAddress:       v.GetString("server.debugAddress"),
			ReadTimeout:        v.GetDuration("server.readTimeout"),
			WriteTimeout:       v.GetDuration("server.writeTimeout"),
			ShutdownTimeout:    v.GetDuration("server.shutdownTimeout"),
			DisableRequestLogs: v.GetBool("server.disableRequestLogs"),
			LogRequestBodies:   v.GetBool("server.logRequestBodies"),
			CORSOrigins:        v.GetStringSlice("server.corsOrigins"),
		},
		Database: DatabaseConfig{
			Engine:           v.GetString("database.engine"),
			Host:             v.GetString("database.host"),
			Port:             v.GetString("database.port"),
			Name:             v.GetString("database.name"),
			User:             v.GetString("database.user"),
			Password:         v.GetString("database.password"),
			AdminUser:        v.GetString("database.adminUser"),
			AdminPassword:    v.GetString("database.adminPassword"),
			DisableTLS:       v.GetBool("database.disableTLS"),
			MaxOpenConns:     v.GetInt("database.maxOpenConns"),
			MaxIdleConns:     v.GetInt("database.maxIdleConns"),
			ConnMaxIdleTime:  v.GetDuration("database.connMaxIdleTime"),
			ConnectTimeout:   v.GetDuration("database.connectTimeout"),
			StatementTimeout: v.GetDuration("database.statementTimeout"),
		},
		Redis: RedisConfig{
			Address:    v.GetString("redis.address"),
			Password:   v.GetString("redis.password"),
			DB:         v.GetInt("redis.db"),
			SummaryTTL: v.GetDuration("redis.summaryTTL"),
		},
	}
}

func (c *Config) String() string {
	return fmt.Sprintf("%s (%s) env=%s debug=%t", c.AppName, c.Build, c.Env, c.Debug)
}
