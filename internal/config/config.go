package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

type Config struct {
	App struct {
		Env string
	} `mapstructure:"app"`

	Telegram struct {
		Token   string
		AdminID int64  `mapstructure:"admin_id"`
		BotName string `mapstructure:"bot_name"`
	} `mapstructure:"telegram"`

	HTTP struct {
		Addr string
	} `mapstructure:"http"`

	Postgres struct {
		DSN string
	} `mapstructure:"postgres"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`
}

func Load(path string) (Config, error) {
	// токен и DSN можно переопределить через .env рядом с бинарём
	_ = gotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Unmarshal не видит automatic env для вложенных ключей,
	// секреты привязываем явно: APP_TELEGRAM_TOKEN и т.д.
	for _, key := range []string{"telegram.token", "telegram.admin_id", "telegram.bot_name", "postgres.dsn"} {
		_ = v.BindEnv(key)
	}

	var c Config
	if err := v.ReadInConfig(); err != nil {
		return c, err
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	// без токена и админа боту нечего делать — падаем на старте
	if c.Telegram.Token == "" {
		return c, errors.New("telegram.token не задан")
	}
	if c.Telegram.AdminID == 0 {
		return c, errors.New("telegram.admin_id не задан")
	}
	return c, nil
}
