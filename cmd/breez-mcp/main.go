// Copyright (c) 2026 Breez MCP Contributors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Command breez-mcp serves a Breez Spark Lightning wallet over the Model
// Context Protocol.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rusq/osenv/v2"

	breezmcp "github.com/breez/breez-mcp"
	"github.com/breez/breez-mcp/internal/mcp"
	"github.com/breez/breez-mcp/wallet"
)

var build = "dev"

// secrets defines the names of the supported secret files that we load our
// secrets from.  Inexperienced windows users might have bad experience trying
// to create .env file with the notepad as it will battle for having the
// "txt" extension.  Let it have it.
var secrets = []string{".env", ".env.txt", "secrets.txt"}

// closeTimeout bounds the wallet teardown: payments already in flight are
// given this long to settle before the session is dropped.
const closeTimeout = 30 * time.Second

// params is the command line parameters.
type params struct {
	cfg breezmcp.Config

	logFile      string
	logJSON      bool
	traceFile    string
	printVersion bool
	verbose      bool
}

func main() {
	loadSecrets(secrets)

	p, err := parseCmdLine(os.Args[1:])
	if err != nil {
		slog.Error("invalid parameters", "error", err)
		os.Exit(2)
	}
	if p.printVersion {
		fmt.Println(build)
		return
	}

	lg, stopLog, err := initLog(p.logFile, p.logJSON, p.verbose)
	if err != nil {
		slog.Error("unable to initialise logging", "error", err)
		os.Exit(1)
	}
	defer stopLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, lg, p); err != nil {
		lg.ErrorContext(ctx, "breez-mcp terminated", "error", err)
		stopLog()
		os.Exit(1)
	}
}

func run(ctx context.Context, lg *slog.Logger, p params) error {
	stopTrace := initTrace(p.traceFile)
	defer stopTrace()

	// Configuration problems must abort before any transport accepts a
	// connection; New validates and fails with a ConfigError.
	mgr, err := breezmcp.New(p.cfg, breezmcp.WithLogger(lg))
	if err != nil {
		return err
	}
	if err := mgr.Connect(ctx); err != nil {
		return err
	}
	defer func() {
		// The serve context is already cancelled at this point, so the
		// teardown gets its own deadline.
		closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if err := mgr.Close(closeCtx); err != nil {
			lg.Error("wallet teardown failed", "error", err)
		}
	}()

	srv, err := mcp.New(mgr, mcp.WithLogger(lg))
	if err != nil {
		return err
	}

	switch p.cfg.Transport {
	case breezmcp.TransportHTTP:
		return srv.ServeHTTP(ctx, p.cfg.HTTPAddr, p.cfg.HTTPPath)
	default:
		return srv.ServeStdio(ctx)
	}
}

// loadSecrets load secrets from the files in secrets slice.
func loadSecrets(files []string) {
	for _, f := range files {
		godotenv.Load(f)
	}
}

// parseCmdLine parses the command line arguments.  Credentials are taken
// from the environment only: secrets on the command line leak through the
// process list.
func parseCmdLine(args []string) (params, error) {
	fs := flag.NewFlagSet("breez-mcp", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(
			fs.Output(),
			"breez-mcp %s\n"+
				"MCP server for a Breez Spark Lightning wallet.\n\n"+
				"Credentials are read from the environment (or a .env file):\n"+
				"  BREEZ_API_KEY, BREEZ_MNEMONIC, BREEZ_NETWORK, BREEZ_DATA_DIR,\n"+
				"  BREEZ_DAEMON_URL\n\n"+
				"Usage:  %s [flags]\n\n",
			build, filepath.Base(os.Args[0]))
		fs.PrintDefaults()
	}

	var p params
	var transport string
	fs.StringVar(&transport, "transport", osenv.Value("BREEZ_TRANSPORT", "stdio"), "`transport` to serve on, one of \"stdio\" or \"http\" (environment: BREEZ_TRANSPORT)")
	fs.StringVar(&p.cfg.HTTPAddr, "listen", osenv.Value("BREEZ_HTTP_ADDR", ""), "listen `address` for -transport=http (environment: BREEZ_HTTP_ADDR)")
	fs.StringVar(&p.cfg.HTTPPath, "path", osenv.Value("BREEZ_HTTP_PATH", ""), "endpoint `path` for -transport=http (environment: BREEZ_HTTP_PATH)")
	fs.StringVar(&p.logFile, "log", osenv.Value("LOG_FILE", ""), "log `file`, if not specified, messages are printed to STDERR")
	fs.BoolVar(&p.logJSON, "log-json", osenv.Value("JSON_LOG", false), "log in JSON format")
	fs.StringVar(&p.traceFile, "trace", osenv.Value("TRACE_FILE", ""), "trace `file` (optional)")
	fs.BoolVar(&p.verbose, "v", osenv.Value("DEBUG", false), "verbose messages")
	fs.BoolVar(&p.printVersion, "V", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return p, err
	}

	p.cfg.APIKey = osenv.Secret("BREEZ_API_KEY", "")
	p.cfg.Mnemonic = osenv.Secret("BREEZ_MNEMONIC", "")
	p.cfg.Network = wallet.Network(osenv.Value("BREEZ_NETWORK", ""))
	p.cfg.DataDir = osenv.Value("BREEZ_DATA_DIR", "")
	p.cfg.DaemonURL = osenv.Value("BREEZ_DAEMON_URL", "")
	p.cfg.Transport = breezmcp.Transport(transport)

	return p, nil
}
