package tui

import (
	"github.com/charmbracelet/huh"
	"github.com/quantmind-br/offsync/internal/config"
)

func CreateSiteForm(values *ConfigValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("root_url").
				Title("Root URL").
				Description("Site whose offline manifests are synchronized").
				Value(&values.RootURL).
				Placeholder("https://reviews.example.com").
				Validate(ValidateRootURL),

			huh.NewInput().
				Key("manifest_list_path").
				Title("Manifest List Path").
				Description("Location of the manifest list, relative to the root URL").
				Value(&values.ManifestListPath).
				Placeholder(config.DefaultManifestListPath),
		),
	).WithTheme(GetTheme())
}

func CreateStorageForm(values *ConfigValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("directory").
				Title("Storage Directory").
				Description("Where captures and manifest versions are kept").
				Value(&values.StorageDirectory).
				Placeholder("~/.offsync/data"),

			huh.NewConfirm().
				Key("in_memory").
				Title("In Memory").
				Description("Keep everything in memory; nothing survives a restart").
				Value(&values.InMemory),

			huh.NewSelect[string]().
				Key("versions_driver").
				Title("Versions Store").
				Description("How synchronized manifest versions are recorded").
				Options(
					huh.NewOption("SQLite database", config.DriverSQLite),
					huh.NewOption("JSON file", config.DriverJSON),
				).
				Value(&values.VersionsDriver),

			huh.NewInput().
				Key("versions_path").
				Title("Versions Path").
				Description("Override the versions file location (leave empty for default)").
				Value(&values.VersionsPath),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Key("require_consent").
				Title("Require Consent").
				Description("Only store locally after `offsync grant`").
				Value(&values.RequireConsent),

			huh.NewInput().
				Key("consent_file").
				Title("Consent File").
				Description("Marker file recording the grant").
				Value(&values.ConsentFile).
				Placeholder("~/.offsync/consent"),
		),
	).WithTheme(GetTheme())
}

func CreateNetworkForm(values *ConfigValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("timeout").
				Title("Request Timeout").
				Description("HTTP request timeout (e.g., 30s, 1m)").
				Value(&values.Timeout).
				Placeholder("30s").
				Validate(ValidateDuration),

			huh.NewInput().
				Key("max_retries").
				Title("Max Retries").
				Description("Retries for transient failures (0-10)").
				Value(&values.MaxRetries).
				Placeholder("3").
				Validate(ValidateIntRange(0, 10)),

			huh.NewInput().
				Key("user_agent").
				Title("User Agent").
				Description("Custom User-Agent header (leave empty for default)").
				Value(&values.UserAgent).
				Placeholder("Mozilla/5.0..."),

			huh.NewInput().
				Key("proxy_url").
				Title("Proxy URL").
				Description("HTTP proxy for all requests (leave empty for none)").
				Value(&values.ProxyURL).
				Validate(ValidateOptionalURL),
		),
	).WithTheme(GetTheme())
}

func CreateConnectivityForm(values *ConfigValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("probe_url").
				Title("Probe URL").
				Description("Checked periodically; defaults to the root URL").
				Value(&values.ProbeURL).
				Validate(ValidateOptionalURL),

			huh.NewInput().
				Key("probe_interval").
				Title("Probe Interval").
				Description("Time between probes (e.g., 15s, 1m)").
				Value(&values.ProbeInterval).
				Placeholder("15s").
				Validate(ValidateDuration),

			huh.NewInput().
				Key("flag_file").
				Title("Offline Flag File").
				Description("The platform counts as offline while this file exists").
				Value(&values.FlagFile),
		),
	).WithTheme(GetTheme())
}

func CreateServerForm(values *ConfigValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("address").
				Title("Listen Address").
				Description("Address for `offsync serve`").
				Value(&values.ServerAddress).
				Placeholder(config.DefaultServerAddress),

			huh.NewInput().
				Key("definitions").
				Title("Manifest Definitions").
				Description("YAML or JSON file describing the published manifests").
				Value(&values.Definitions).
				Placeholder("./manifests.yaml"),
		),
	).WithTheme(GetTheme())
}

func CreateLoggingForm(values *ConfigValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("level").
				Title("Log Level").
				Description("Minimum log level to display").
				Options(
					huh.NewOption("Trace", "trace"),
					huh.NewOption("Debug", "debug"),
					huh.NewOption("Info", "info"),
					huh.NewOption("Warn", "warn"),
					huh.NewOption("Error", "error"),
				).
				Value(&values.LogLevel),

			huh.NewSelect[string]().
				Key("format").
				Title("Log Format").
				Description("Output format for logs").
				Options(
					huh.NewOption("Pretty (human-readable)", "pretty"),
					huh.NewOption("JSON (structured)", "json"),
				).
				Value(&values.LogFormat),

			huh.NewInput().
				Key("file").
				Title("Log File").
				Description("Also write rotated JSON logs here (leave empty to disable)").
				Value(&values.LogFile),
		),
	).WithTheme(GetTheme())
}

func GetFormForCategory(category string, values *ConfigValues) *huh.Form {
	switch category {
	case "site":
		return CreateSiteForm(values)
	case "storage":
		return CreateStorageForm(values)
	case "network":
		return CreateNetworkForm(values)
	case "connectivity":
		return CreateConnectivityForm(values)
	case "server":
		return CreateServerForm(values)
	case "logging":
		return CreateLoggingForm(values)
	default:
		return nil
	}
}
