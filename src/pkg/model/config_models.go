package model

// Config holds the application configuration loaded from the JSON config file.
type Config struct {
	DatabaseType   string `json:"database_type"`
	DatabaseDir    string `json:"database_dir"`
	DatabaseFile   string `json:"database_file"`
	LogFolder      string `json:"log_folder"`
	CommandLog     string `json:"command_log"`
	ErrorLog       string `json:"error_log"`
	InfoLog        string `json:"info_log"`
	Source         string `json:"source"`
	BrowseRoot     string `json:"browse_root"`
	SessionTimeout int    `json:"session_timeout_minutes"`
}
