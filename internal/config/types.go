package config

// Config holds all configuration for the application.
type Config struct {
	DBName        string
	MigrationsDir string
	Turso         TursoConfig
	BatchLimit    int
	BackupDir     string
	Standings     StandingsConfig
	Slack         SlackConfig
	ProjectID     string
	MetricsAddr   string
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

type SlackConfig struct {
	Token     string
	ChannelID string
}

type StandingsConfig struct {
	FormWindow        int
	MinMatchesVisible int
}
