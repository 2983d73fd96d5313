package config

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by burrow, e.g.
// BURROW_CIB_FILE
const EnvPrefix = "BURROW"

// Setting keys. Each key is also the name of a persistent flag.
const (
	KeyPCS             = "pcs"
	KeyCIBFile         = "cib-file"
	KeyCheck           = "check"
	KeyLogLevel        = "log-level"
	KeyLogJSON         = "log-json"
	KeyLogFile         = "log-file"
	KeyJournal         = "journal"
	KeyMetricsTextfile = "metrics-textfile"
	KeySandboxDir      = "sandbox-dir"
)

// Settings configures the tool itself, as opposed to the desired
// cluster state
type Settings struct {
	PCS             string
	CIBFile         string
	Check           bool
	LogLevel        string
	LogJSON         bool
	LogFile         string
	Journal         string
	MetricsTextfile string
	SandboxDir      string
}

// DefaultJournal is where runs are recorded unless configured otherwise
const DefaultJournal = "/var/lib/burrow/journal.db"

// AddFlags registers the persistent flags of the root command
func AddFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.String(KeyPCS, "pcs", "pcs binary")
	f.String(KeyCIBFile, "", "Operate on this CIB file instead of the live cluster")
	f.Bool(KeyCheck, false, "Report changes without applying them")
	f.String(KeyLogLevel, "info", "Log level (debug, info, warn, error)")
	f.Bool(KeyLogJSON, false, "Log in JSON format")
	f.String(KeyLogFile, "", "Also write JSON logs to this rotated file")
	f.String(KeyJournal, DefaultJournal, "Run journal database (empty disables the journal)")
	f.String(KeyMetricsTextfile, "", "Write metrics to this node_exporter textfile after the run")
	f.String(KeySandboxDir, "", "Directory for scratch CIB files")
}

// NewViper binds the persistent flags of cmd and BURROW_* environment
// variables. Flags set on the command line win over the environment.
func NewViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	if err := v.BindPFlags(cmd.PersistentFlags()); err != nil {
		return nil, err
	}
	return v, nil
}

// LoadSettings reads Settings from v
func LoadSettings(v *viper.Viper) Settings {
	return Settings{
		PCS:             v.GetString(KeyPCS),
		CIBFile:         v.GetString(KeyCIBFile),
		Check:           v.GetBool(KeyCheck),
		LogLevel:        v.GetString(KeyLogLevel),
		LogJSON:         v.GetBool(KeyLogJSON),
		LogFile:         v.GetString(KeyLogFile),
		Journal:         v.GetString(KeyJournal),
		MetricsTextfile: v.GetString(KeyMetricsTextfile),
		SandboxDir:      v.GetString(KeySandboxDir),
	}
}
