package config

import (
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// NetAddress holds structured network address data for host and port.
// It implements the pflag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// Flags is the set of command-line values bound by RegisterFlags. Its
// Config method turns whatever the user passed into a partial
// StructuredConfig suitable for merging.
type Flags struct {
	serverAddress  NetAddress
	configPath     string
	dsn            string
	folder         string
	rootDir        string
	logPath        string
	logLevel       string
	tokenSignKey   string
	debounceWindow time.Duration
	remoteTimeout  time.Duration
	schedule       string
	device         string
}

// RegisterFlags binds all configuration flags to fs.
//
// Flags:
//
//	-a, --address          folder server address in format [host]:[port]
//	-c, --config           JSON or YAML file path with configs
//	-d, --dsn              local store DSN
//	-f, --folder           sync folder reference (file:///..., http://...)
//	    --root             directory served by the folder server
//	    --log-file         client log file path
//	    --log-level        log level name
//	    --token-sign-key   bearer token signing key
//	    --debounce         debounce window (e.g. "60s")
//	    --remote-timeout   timeout of a single remote call
//	    --schedule         cron spec of the periodic sync job
//	    --device           device name used in bearer tokens
func RegisterFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{}

	fs.VarP(&f.serverAddress, "address", "a", "Net address host:port")
	fs.StringVarP(&f.configPath, "config", "c", "", "JSON or YAML config file path")
	fs.StringVarP(&f.dsn, "dsn", "d", "", "Local store DSN")
	fs.StringVarP(&f.folder, "folder", "f", "", "Sync folder reference")
	fs.StringVar(&f.rootDir, "root", "", "Directory served by the folder server")
	fs.StringVar(&f.logPath, "log-file", "", "Client log file path")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level")
	fs.StringVar(&f.tokenSignKey, "token-sign-key", "", "Bearer token signing key")
	fs.DurationVar(&f.debounceWindow, "debounce", 0, "Debounce window (e.g. 60s)")
	fs.DurationVar(&f.remoteTimeout, "remote-timeout", 0, "Timeout of a single remote call (e.g. 30s)")
	fs.StringVar(&f.schedule, "schedule", "", "Cron spec of the periodic sync job")
	fs.StringVar(&f.device, "device", "", "Device name used in bearer tokens")

	return f
}

// Config returns the values collected by the flag set. Unset flags stay
// zero so they do not shadow other sources when merged.
func (f *Flags) Config() *StructuredConfig {
	if f == nil {
		return nil
	}

	return &StructuredConfig{
		Storage: Storage{
			DB: DB{DSN: f.dsn},
		},
		Sync: Sync{
			Folder:         f.folder,
			DebounceWindow: f.debounceWindow,
			RemoteTimeout:  f.remoteTimeout,
			Schedule:       f.schedule,
			TokenSignKey:   f.tokenSignKey,
			Device:         f.device,
		},
		Server: Server{
			HTTPAddress:  f.serverAddress.String(),
			RootDir:      f.rootDir,
			TokenSignKey: f.tokenSignKey,
		},
		Log: Log{
			Path:  f.logPath,
			Level: f.logLevel,
		},
		FilePath: f.configPath,
	}
}

// String returns a canonical host:port string for a NetAddress, or an empty
// string when nothing was set.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 || port > 65535 {
		return errors.New("port number must be in range 1..65535")
	}

	if host != "localhost" && host != "" {
		if ip := net.ParseIP(host); ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}

// Type implements pflag.Value.
func (a *NetAddress) Type() string {
	return "host:port"
}
