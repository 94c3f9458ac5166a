package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"seminar/grouping"
)

type config struct {
	PGConn       string
	ClientID     string
	ClientSecret string
	Admins       []string
	Addr         string
	CommitPolicy string
	LogFormat    string
	LogLevel     string
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	flags.String("pgconn", "", "Postgres connection string")
	flags.String("client-id", "", "Google OAuth client ID")
	flags.String("client-secret", "", "secret used to sign session tokens")
	flags.String("admins", "", "comma-separated organizer emails")
	flags.String("addr", ":8080", "listen address")
	flags.String("commit-policy", "atomic", "encounter commit policy: atomic or incremental")
	flags.String("log-format", "json", "log format: json or text")
	flags.String("log-level", "info", "log level: debug, info, warn, error or none")

	// PGCONN, CLIENT_ID and friends are read without a prefix.
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v.BindPFlags(flags)
}

func loadConfig(v *viper.Viper) (config, error) {
	cfg := config{
		PGConn:       v.GetString("pgconn"),
		ClientID:     v.GetString("client-id"),
		ClientSecret: v.GetString("client-secret"),
		Addr:         v.GetString("addr"),
		CommitPolicy: v.GetString("commit-policy"),
		LogFormat:    v.GetString("log-format"),
		LogLevel:     v.GetString("log-level"),
	}
	for _, a := range strings.Split(v.GetString("admins"), ",") {
		if a = strings.TrimSpace(a); a != "" {
			cfg.Admins = append(cfg.Admins, a)
		}
	}

	for _, req := range []struct{ key, val string }{
		{"PGCONN", cfg.PGConn},
		{"CLIENT_ID", cfg.ClientID},
		{"CLIENT_SECRET", cfg.ClientSecret},
	} {
		if req.val == "" {
			return config{}, fmt.Errorf("%s is required", req.key)
		}
	}
	if len(cfg.Admins) == 0 {
		return config{}, fmt.Errorf("ADMINS is required")
	}
	if _, err := grouping.ParseCommitPolicy(cfg.CommitPolicy); err != nil {
		return config{}, err
	}
	return cfg, nil
}
