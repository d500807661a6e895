package config

// ValidateForRun checks everything the service needs before serving traffic.
// The schedule source always lives in postgres; redis is only required when
// it backs the dispatch log.
func ValidateForRun(cfg *Config) error {
	if err := cfg.Postgres.Validate(); err != nil {
		return err
	}

	if cfg.LogBackend == BackendRedis {
		if err := cfg.Redis.Validate(); err != nil {
			return err
		}
	}

	return cfg.Channels.Validate()
}
