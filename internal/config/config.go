package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Init wires environment, config.env and the root command's persistent
// flags into viper. Call it before Execute.
func Init(root *cobra.Command) {
	viper.AutomaticEnv()
	_ = godotenv.Load("config.env")
	if root != nil {
		root.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
		BindFlag(KeyLogLevel, root.PersistentFlags().Lookup("log-level"))
	}
	setDefaults()
}

// BindFlag binds a cobra flag to a config key. Unknown flags are ignored.
func BindFlag(key string, flag *pflag.Flag) {
	if flag == nil {
		return
	}
	_ = viper.BindPFlag(key, flag)
}

func setDefaults() {
	viper.SetDefault(KeyLogLevel, "info")

	viper.SetDefault(KeyGHPath, "gh")
	viper.SetDefault(KeyGHTimeout, "2m")
	viper.SetDefault(KeyPRState, "all")
	viper.SetDefault(KeyPRLimit, 30)
	viper.SetDefault(KeyPRSource, "gh")
	viper.SetDefault(KeyFetchTries, 3)

	viper.SetDefault(KeyOutputDir, ".")
	viper.SetDefault(KeyReportFile, "pr_analysis.md")
	viper.SetDefault(KeyChartFile, "pr_analysis.png")

	viper.SetDefault(KeyDBDebug, false)
	viper.SetDefault(KeyMigrationsDir, "")
	viper.SetDefault(KeyDBAutoMigrate, true)

	viper.SetDefault(KeySummaryEnabled, false)
	viper.SetDefault(KeySummaryModel, "llama3.1")
	viper.SetDefault(KeyOllamaURL, "http://localhost:11434")
	viper.SetDefault(KeySummaryBudget, 3000)
	viper.SetDefault(KeyLLMCallTimeout, "2m")

	viper.SetDefault(KeyManifestPath, "package.json")
	viper.SetDefault(KeySourceDir, "src")
	viper.SetDefault(KeySourceExt, ".ts")
	viper.SetDefault(KeyImportAlias, "@/")
	viper.SetDefault(KeyPackageGraphFile, "package-dependencies.png")
	viper.SetDefault(KeySourceGraphFile, "source-dependencies.png")
}

func LogLevel() string       { return viper.GetString(KeyLogLevel) }
func GHPath() string         { return viper.GetString(KeyGHPath) }
func GHTimeout() string      { return viper.GetString(KeyGHTimeout) }
func GitHubRepo() string     { return viper.GetString(KeyGitHubRepo) }
func GitHubToken() string    { return viper.GetString(KeyGitHubToken) }
func PRState() string        { return viper.GetString(KeyPRState) }
func PRLimit() int           { return viper.GetInt(KeyPRLimit) }
func PRSource() string       { return strings.ToLower(viper.GetString(KeyPRSource)) }
func PRInputFile() string    { return viper.GetString(KeyPRInputFile) }
func FetchAttempts() int     { return viper.GetInt(KeyFetchTries) }
func OutputDir() string      { return viper.GetString(KeyOutputDir) }
func ReportFile() string     { return viper.GetString(KeyReportFile) }
func ChartFile() string      { return viper.GetString(KeyChartFile) }
func PostgresURL() string    { return viper.GetString(KeyPostgresURL) }
func DBDebug() bool          { return viper.GetBool(KeyDBDebug) }
func MigrationsDir() string  { return viper.GetString(KeyMigrationsDir) }
func DBAutoMigrate() bool    { return viper.GetBool(KeyDBAutoMigrate) }
func SummaryEnabled() bool   { return viper.GetBool(KeySummaryEnabled) }
func SummaryModel() string   { return viper.GetString(KeySummaryModel) }
func OllamaURL() string      { return viper.GetString(KeyOllamaURL) }
func SummaryBudget() int     { return viper.GetInt(KeySummaryBudget) }
func LLMCallTimeout() string { return viper.GetString(KeyLLMCallTimeout) }
func ManifestPath() string   { return viper.GetString(KeyManifestPath) }
func SourceDir() string      { return viper.GetString(KeySourceDir) }
func SourceExt() string      { return viper.GetString(KeySourceExt) }
func ImportAlias() string    { return viper.GetString(KeyImportAlias) }
func ProjectName() string    { return viper.GetString(KeyProjectName) }
func PackageGraphFile() string {
	return viper.GetString(KeyPackageGraphFile)
}
func SourceGraphFile() string { return viper.GetString(KeySourceGraphFile) }

// ParseDuration parses a config duration, returning fallback for blank values.
func ParseDuration(value string, fallback time.Duration) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback, nil
	}
	return time.ParseDuration(trimmed)
}
