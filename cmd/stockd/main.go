package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kmorrow/stocklog/internal/cli"
)

func main() {
	addr := flag.String("addr", os.Getenv("STOCKD_ADDR"), "Listen address (default 127.0.0.1:7270)")
	unixPath := flag.String("unix", os.Getenv("STOCKD_UNIX"), "Listen on unix socket path")
	token := flag.String("token", os.Getenv("STOCKD_TOKEN"), "Shared token for local auth")
	dbPath := flag.String("db", "", "Database path override (defaults to config)")
	flag.Parse()

	opts := cli.DaemonOptions{
		Addr:   *addr,
		Unix:   *unixPath,
		Token:  *token,
		DBPath: *dbPath,
	}

	if err := cli.ServeDaemon(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
