package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags from args (usually os.Args[1:]).
//
// Flags:
//
//	-a server address in format [host]:[port]
//	-grpc-address grpc server address in format [host]:[port]
//	-d database DSN
//	-c/-config json or yaml file path with configs
//	-max-body-length logged body bound in characters
//	-slow-query-threshold slow SQL threshold in milliseconds
//	-include-stacktrace add stack traces to ERROR records
//	-log-requests write REQUEST lines
//	-trace-disabled turn trace logging off
func ParseFlags(args []string) (*StructuredConfig, error) {
	var serverAddress, grpcServerAddress NetAddress
	var databaseDSN string
	var configPath string
	var maxBodyLength, slowQueryThreshold int
	var includeStacktrace, logRequests, traceEnabled *bool

	fs := flag.NewFlagSet("go-trace-keeper", flag.ContinueOnError)
	fs.Var(&serverAddress, "a", "Net address host:port")
	fs.Var(&grpcServerAddress, "grpc-address", "Net grpc server address host:port")
	fs.StringVar(&databaseDSN, "d", "", "Database DSN")
	fs.StringVar(&configPath, "c", "", "JSON or YAML config file path")
	fs.StringVar(&configPath, "config", "", "JSON or YAML config file path (alias)")
	fs.IntVar(&maxBodyLength, "max-body-length", 0, "Max logged body length in characters")
	fs.IntVar(&slowQueryThreshold, "slow-query-threshold", 0, "Slow SQL threshold in milliseconds")
	fs.BoolFunc("include-stacktrace", "Include stack traces in ERROR records", func(s string) error {
		v, err := strconv.ParseBool(s)
		includeStacktrace = &v
		return err
	})
	fs.BoolFunc("log-requests", "Write REQUEST lines when calls start", func(s string) error {
		v, err := strconv.ParseBool(s)
		logRequests = &v
		return err
	})
	fs.BoolFunc("trace-disabled", "Turn trace logging off", func(s string) error {
		v, err := strconv.ParseBool(s)
		traceEnabled = Bool(!v)
		return err
	})

	if err := fs.Parse(args); err != nil {
		return nil, errors.Join(ErrInvalidFlags, err)
	}

	return &StructuredConfig{
		Logging: Logging{
			Enabled:                traceEnabled,
			IncludeErrorStacktrace: includeStacktrace,
			LogRequests:            logRequests,
			MaxBodyLength:          maxBodyLength,
		},
		SQL: SQL{
			SlowQueryThresholdMs: slowQueryThreshold,
		},
		Server: Server{
			HTTPAddress: serverAddress.String(),
			GRPCAddress: grpcServerAddress.String(),
		},
		Storage: Storage{
			DB: DB{DSN: databaseDSN},
		},
		ConfigFilePath: configPath,
	}, nil
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
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

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
