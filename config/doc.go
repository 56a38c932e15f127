// Package config loads service configuration from a YAML file, an optional
// .env file and the process environment.
//
// Every nested mapstructure key is bound to an upper-case environment
// variable built from its path, so `history.supabase.url` can be set with
// HISTORY_SUPABASE_URL. Extra names can be bound with WithEnvAlias.
//
//	var cfg app.Config
//	err := config.LoadConfig("linguacast", &cfg, config.WithEnvAlias("history.supabase.url", "SUPABASE_URL"))
package config
