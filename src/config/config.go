package config

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"

	"github.com/weavenet/weaver/src/common"
	"github.com/weavenet/weaver/src/tx"
)

// Default filenames.
const (
	// DefaultFirewallDir is the default name of the folder containing
	// firewall signature files.
	DefaultFirewallDir = "firewall"
)

// Default configuration values.
const (
	DefaultLogLevel         = "debug"
	DefaultPort             = 1984
	DefaultCacheSize        = 65536
	DefaultMaxPeers         = 50
	DefaultGetMorePeersTime = 120 * time.Second
	DefaultIgnorePeersTime  = 300 * time.Second
	DefaultNetTimeout       = 10 * time.Second
)

// Config contains all the configuration properties of a weaver node.
type Config struct {
	// DataDir is the top-level directory containing weaver configuration and
	// data
	DataDir string `mapstructure:"datadir"`

	// LogLevel determines the chattiness of the log output.
	LogLevel string `mapstructure:"log"`

	// Port is the local HTTP listening port. It doubles as the return
	// address conveyed when forwarding blocks to remote peers.
	Port uint16 `mapstructure:"port"`

	// Peers is the initial list of remote peers, as "a.b.c.d:port" strings.
	// When empty, the peer list persisted in the datadir is loaded instead.
	Peers []string `mapstructure:"peers"`

	// MaxPeers caps the remote peer list maintained by the refresher.
	MaxPeers int `mapstructure:"max-peers"`

	// CacheSize bounds the bridge's processed-id window.
	CacheSize int `mapstructure:"cache-size"`

	// GetMorePeersTime is the period of the remote peer-list refresh.
	GetMorePeersTime time.Duration `mapstructure:"get-more-peers-time"`

	// IgnorePeersTime is how long a peer placed on the ignore list stays
	// suppressed before being reinstated.
	IgnorePeersTime time.Duration `mapstructure:"ignore-peers-time"`

	// NetTimeout is the timeout of outbound HTTP calls to remote peers.
	NetTimeout time.Duration `mapstructure:"net-timeout"`

	// FirewallDir is the directory containing firewall signature files.
	FirewallDir string `mapstructure:"firewall-dir"`

	// NoService disables the local HTTP interface.
	NoService bool `mapstructure:"no-service"`

	// AllowUnsignedTxs lets unsigned transactions verify. Debugging aid
	// only; enabling it on a live node breaks the economic contract, so a
	// loud warning is printed whenever it is set.
	AllowUnsignedTxs bool `mapstructure:"allow-unsigned-txs"`

	// StrictLedger closes the genesis escape hatch: transaction
	// verification fails against an empty wallet ledger instead of passing
	// unconditionally.
	StrictLedger bool `mapstructure:"strict-ledger"`

	// Moniker defines the friendly name of this node
	Moniker string `mapstructure:"moniker"`

	logger         *logrus.Logger
	warnedUnsigned bool
}

// NewDefaultConfig returns a config object with default values.
func NewDefaultConfig() *Config {
	config := &Config{
		DataDir:          DefaultDataDir(),
		LogLevel:         DefaultLogLevel,
		Port:             DefaultPort,
		MaxPeers:         DefaultMaxPeers,
		CacheSize:        DefaultCacheSize,
		GetMorePeersTime: DefaultGetMorePeersTime,
		IgnorePeersTime:  DefaultIgnorePeersTime,
		NetTimeout:       DefaultNetTimeout,
		FirewallDir:      DefaultFirewallDirPath(),
	}

	return config
}

// NewTestConfig returns a config object with default values and a special
// logger for debugging tests.
func NewTestConfig(t testing.TB, level logrus.Level) *Config {
	config := NewDefaultConfig()
	config.logger = common.NewTestLogger(t, level)
	return config
}

// SetDataDir sets the top-level weaver directory, and updates the firewall
// directory if it is currently set to the default value. If it is not, the
// user has explicitly set it to something else, so avoid changing it again
// here.
func (c *Config) SetDataDir(dataDir string) {
	c.DataDir = dataDir
	if c.FirewallDir == DefaultFirewallDirPath() {
		c.FirewallDir = filepath.Join(dataDir, DefaultFirewallDir)
	}
}

// BindAddr returns the address:port the local HTTP interface binds to.
func (c *Config) BindAddr() string {
	return ":" + strconv.Itoa(int(c.Port))
}

// Logger returns a formatted logrus Entry, with prefix set to "weaver".
func (c *Config) Logger() *logrus.Entry {
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.Level = LogLevel(c.LogLevel)
		c.logger.Formatter = new(prefixed.TextFormatter)
	}

	if c.AllowUnsignedTxs && !c.warnedUnsigned {
		c.warnedUnsigned = true
		c.logger.Warn("allow-unsigned-txs is set: unsigned transactions will verify. " +
			"Never enable this on a live node.")
	}

	return c.logger.WithField("prefix", "weaver")
}

// SetLogger supplies a pre-configured logger, overriding the one Logger()
// would lazily build.
func (c *Config) SetLogger(logger *logrus.Logger) {
	c.logger = logger
}

// VerifyOptions returns the transaction verification options implied by the
// configuration.
func (c *Config) VerifyOptions() tx.VerifyOptions {
	return tx.VerifyOptions{
		AllowUnsigned: c.AllowUnsignedTxs,
		StrictLedger:  c.StrictLedger,
	}
}

// DefaultFirewallDirPath returns the default path for the firewall
// signature files.
func DefaultFirewallDirPath() string {
	return filepath.Join(DefaultDataDir(), DefaultFirewallDir)
}

// DefaultDataDir return the default directory name for top-level weaver
// config based on the underlying OS, attempting to respect conventions.
func DefaultDataDir() string {
	// Try to place the data folder in the user's home dir
	home := HomeDir()
	if home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, ".Weaver")
		} else if runtime.GOOS == "windows" {
			return filepath.Join(home, "AppData", "Roaming", "Weaver")
		} else {
			return filepath.Join(home, ".weaver")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

// HomeDir returns the user's home directory.
func HomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// LogLevel parses a string into a Logrus log level.
func LogLevel(l string) logrus.Level {
	switch l {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.DebugLevel
	}
}
