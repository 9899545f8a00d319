package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

var (
	once     sync.Once
	instance *Config
)

const envFilePath = "./configs/.env"

type Config struct {
}

// New loads ./configs/.env once. A missing file is fine: values then come from the
// process environment only.
func New() *Config {
	once.Do(func() {
		err := godotenv.Load(envFilePath)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Fatal("loading envs error: ", err)
		}
		instance = &Config{}
	})
	return instance
}

func (c *Config) GetString(key string) string {
	return os.Getenv(key)
}

func (c *Config) GetStringOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func (c *Config) GetInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func (c *Config) GetBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func (c *Config) GetDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

// GetLocation resolves an IANA zone name, falling back to time.Local.
func (c *Config) GetLocation(key string) *time.Location {
	name := c.GetStringOr(key, "Local")
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("unknown time zone %q in %s, using local time", name, key)
		return time.Local
	}
	return loc
}
