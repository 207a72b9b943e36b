package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const envPrefix = "FUNDFLOW_"

type Application struct {
	Listen   string   `koanf:"listen"`
	Timezone string   `koanf:"timezone"`
	Database Database `koanf:"db"`
	Metrics  Metrics  `koanf:"metrics"`
}

type Database struct {
	// Path is the SQLite file. ":memory:" keeps everything in process memory.
	Path          string `koanf:"path"`
	BusyTimeoutMs int    `koanf:"busytimeoutms"`
}

type Metrics struct {
	Enabled bool `koanf:"enabled"`
}

// Defaults returns the configuration used when neither a file nor env vars override a key.
func Defaults() Application {
	return Application{
		Listen:   ":8181",
		Timezone: "Local",
		Database: Database{
			Path:          "fundflow.db",
			BusyTimeoutMs: 5000,
		},
		Metrics: Metrics{
			Enabled: true,
		},
	}
}

// Location resolves the configured timezone used to decide what "today" is.
func (a Application) Location() (*time.Location, error) {
	if a.Timezone == "" || strings.EqualFold(a.Timezone, "Local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", a.Timezone, err)
	}
	return loc, nil
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			// FUNDFLOW_DB_PATH -> db.path
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, envPrefix)), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
