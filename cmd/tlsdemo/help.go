package main

import (
	"fmt"

	"github.com/fatih/color"
	flag "github.com/spf13/pflag"
)

var (
	flagMode        string
	flagAddress     string
	flagCertificate string
	flagPrivateKey  string
	flagMinVersion  string
	flagMaxVersion  string
	flagLogLevel    string
	flagHelp        bool
	flagVersion     bool
)

func init() {
	flag.StringVarP(&flagMode, "mode", "m", "server", "Connection mode: server or client")
	flag.StringVarP(&flagAddress, "address", "a", "localhost:8443", "Address to listen on or dial")
	flag.StringVarP(&flagCertificate, "certificate", "c", "", "Server certificate (PEM); generated in-memory when omitted")
	flag.StringVarP(&flagPrivateKey, "private-key", "k", "", "Server private key (PEM)")
	flag.StringVarP(&flagMinVersion, "min-version", "", "1.0", "Minimum negotiated version: 1.0, 1.1, or 1.2")
	flag.StringVarP(&flagMaxVersion, "max-version", "", "1.2", "Maximum negotiated version: 1.0, 1.1, or 1.2")
	flag.StringVarP(&flagLogLevel, "log-level", "l", "info", "Log level: error, warn, info, or debug")

	flag.BoolVarP(&flagHelp, "help", "h", false, "Print usage information and exit")
	flag.BoolVarP(&flagVersion, "version", "v", false, "Print version information and exit")
}

const helpString = `Minimal TLS 1.0/1.1/1.2 handshake demonstration

Usage: tlsdemo [OPTION]...

Mode:
  -m, --mode=MODE            server or client (default: server)
  -a, --address=HOST:PORT    address to listen on or dial (default: localhost:8443)

Server authentication:
  -c, --certificate=FILE     server certificate, PEM (default: generated in memory)
  -k, --private-key=FILE     server private key, PEM

Protocol:
      --min-version=VER      minimum negotiated version (default: 1.0)
      --max-version=VER      maximum negotiated version (default: 1.2)

Miscellaneous:
  -l, --log-level=LEVEL      error, warn, info, or debug (default: info)
  -h, --help                 prints this help message and exits
  -v, --version              prints version information and exits
`

func help() {
	c := color.New(color.FgCyan)
	c.Println("tlsdemo")
	fmt.Println(helpString)
}
