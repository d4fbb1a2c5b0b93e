package config

import (
	"errors"
	"os"
	"strings"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

var ErrFileNotFound = errors.New("config file not found")

type App struct {
	Name string `mapstructure:"name"`
}

type API struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type CustomList struct {
	// Лимиты remote API: максимум элементов в одном списке
	// и минимальная длина префикса одного элемента (IPv4)
	MaxItems      int `mapstructure:"max_items"`
	MinIPv4Prefix int `mapstructure:"min_ipv4_prefix"`
}

type RPZ struct {
	Zone string `mapstructure:"zone"`
	View string `mapstructure:"view"`
}

type Logger struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type Config struct {
	App        App        `mapstructure:"app"`
	API        API        `mapstructure:"api"`
	CustomList CustomList `mapstructure:"custom_list"`
	RPZ        RPZ        `mapstructure:"rpz"`
	Logger     Logger     `mapstructure:"logger"`
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "b1cblock")
	v.SetDefault("api.base_url", "https://csp.infoblox.com")
	// пустые дефолты нужны: AllSettings() отдаёт только известные ключи,
	// без дефолта ENV-переопределение такого ключа теряется
	v.SetDefault("api.api_key", "")
	v.SetDefault("api.timeout", "30s")
	v.SetDefault("custom_list.max_items", 50000)
	v.SetDefault("custom_list.min_ipv4_prefix", 24)
	v.SetDefault("rpz.zone", "country-block.rpz.local")
	v.SetDefault("rpz.view", "default")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.file", "")
}

func LoadConfig(cfgFilePath string) (*Config, error) {
	v := viper.New()

	// ENV с префиксом B1C, __ вместо . и _ вместо - в ключах
	v.SetEnvPrefix("B1C")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// если конфиг не задан - ищем по стандартным путям
	if cfgFilePath == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/b1cblock")
	} else {
		if !fileExists(cfgFilePath) {
			return nil, ErrFileNotFound
		}
		v.SetConfigFile(cfgFilePath)
	}

	if err := v.ReadInConfig(); err != nil {
		// без файла работаем на дефолтах и ENV: ключ API всё равно
		// обычно приходит из окружения
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	decoderCfg := &mapstructure.DecoderConfig{
		TagName:          "mapstructure",
		Result:           &cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	}
	dec, err := mapstructure.NewDecoder(decoderCfg)
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(v.AllSettings()); err != nil {
		return nil, err
	}
	return &cfg, nil
}
