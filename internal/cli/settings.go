package cli

import (
	"fmt"

	"racket/internal/config"
	"racket/internal/configmgr"
	"racket/internal/httpapi"
)

// flagValues holds persistent and serve flags. Empty values leave the
// lower-precedence source in place.
type flagValues struct {
	settingsPath string
	root         string
	configName   string
	logLevel     string
	logFormat    string

	addr         string
	predictor    string
	predictorURL string
}

// resolveSettings layers defaults < settings file < RACKET_* env < flags.
func resolveSettings(fv *flagValues) (config.Config, error) {
	cfg := config.Default()
	if fv.settingsPath != "" {
		fileCfg, err := config.Load(fv.settingsPath)
		if err != nil {
			return cfg, fmt.Errorf("load settings %s: %w", fv.settingsPath, err)
		}
		cfg.Merge(fileCfg)
	}
	if err := cfg.ApplyEnv(lookupEnv); err != nil {
		return cfg, err
	}
	cfg.Merge(config.Config{
		Addr:             fv.addr,
		InstallationRoot: fv.root,
		ConfigFileName:   fv.configName,
		Predictor:        fv.predictor,
		PredictorURL:     fv.predictorURL,
		LogLevel:         fv.logLevel,
		LogFormat:        fv.logFormat,
	})
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func newConfigManager(cfg config.Config) *configmgr.Manager {
	return configmgr.New(configmgr.Options{
		Root:      cfg.InstallationRoot,
		FileName:  cfg.ConfigFileName,
		Publisher: httpapi.ConfigEventCounter{},
	})
}
