package config

// Environment identifies the runtime environment the demo host runs in.
type Environment string

const (
	// EnvDev marks the development environment.
	EnvDev Environment = "dev"
	// EnvStaging marks the staging environment.
	EnvStaging Environment = "staging"
	// EnvProd marks the production environment.
	EnvProd Environment = "prod"
)

// TelemetryEnvironment maps the config environment onto the label used in metrics.
func (e Environment) TelemetryEnvironment() string {
	switch e {
	case EnvProd:
		return "production"
	case EnvStaging:
		return "staging"
	default:
		return "development"
	}
}

func boolPtr(v bool) *bool { return &v }
