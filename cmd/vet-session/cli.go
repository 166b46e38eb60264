// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/vetclinic/vet-session/internal/infrastructure/config"
	"github.com/vetclinic/vet-session/pkg/env"
)

// parseCLIFlags parses the global flags, the command name and its arguments
func parseCLIFlags(args []string, stderr io.Writer) (*config.CLIConfig, error) {
	fs := flag.NewFlagSet("vet-session", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// ENV > Default precedence, flags override both
	debug := fs.Bool("d", env.GetBool("DEBUG", false), "enable debug logging")
	gatewayHost := fs.String("gateway", "", "gateway base URL (overrides GATEWAY_HOST)")
	store := fs.String("store", "", "session store: memory, file, redis, nats (overrides SESSION_STORE)")
	sessionFile := fs.String("session-file", "", "session file for the file store (overrides SESSION_FILE)")
	sessionID := fs.String("session-id", "", "session id for shared stores (overrides SESSION_ID)")
	timeout := fs.Duration("timeout", 0, "gateway request timeout (overrides GATEWAY_TIMEOUT)")
	broadcast := fs.Bool("broadcast", false, "publish state changes on NATS")
	auditFlag := fs.Bool("audit", false, "index state changes in OpenSearch")
	configCheck := fs.Bool("check-config", false, "check configuration and exit")
	version := fs.Bool("version", false, "print version and exit")
	help := fs.Bool("help", false, "show help")

	fs.Usage = func() { usage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cli := &config.CLIConfig{
		Debug:       *debug,
		GatewayHost: *gatewayHost,
		Store:       *store,
		SessionFile: *sessionFile,
		SessionID:   *sessionID,
		Timeout:     *timeout,
		Broadcast:   *broadcast,
		Audit:       *auditFlag,
		ConfigCheck: *configCheck,
		Version:     *version,
		Help:        *help,
	}
	if fs.NArg() > 0 {
		cli.Command = fs.Arg(0)
		cli.Args = fs.Args()[1:]
	}
	if cli.Command == cmdCheckConfig {
		cli.ConfigCheck = true
	}
	return cli, nil
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "vet-session: veterinary clinic session client\n")
	fmt.Fprintf(w, "=============================================\n\n")
	fmt.Fprintf(w, "Usage: vet-session [options] <command> [command options]\n\n")

	fmt.Fprintf(w, "Commands:\n")
	fmt.Fprintf(w, "  sign-in  -email <e> | -employee <n> -password <p>   Sign in and store the token\n")
	fmt.Fprintf(w, "  sign-up  -email <e> | -employee <n> -password <p>   Create an employee (admin session)\n")
	fmt.Fprintf(w, "  sign-out                                           Clear the local session\n")
	fmt.Fprintf(w, "  whoami                                             Show the current principal\n")
	fmt.Fprintf(w, "  avatar   [-id <employee>] [-upload <file>]         Show or upload an avatar\n")
	fmt.Fprintf(w, "  profiles [-offset <n>] [-limit <n>]                List employee profiles\n")
	fmt.Fprintf(w, "  profile  [-id <employee>] [-name <n>] [-last-name <n>]  Show or update a profile\n")
	fmt.Fprintf(w, "  customers [-offset <n>] [-limit <n>]               List customers\n")
	fmt.Fprintf(w, "  customer -id <customer>                            Show a customer and its avatar\n")
	fmt.Fprintf(w, "  pets     [-customer <customer>]                    List pets, optionally of one customer\n")
	fmt.Fprintf(w, "  pet      -id <pet>                                 Show a pet\n")
	fmt.Fprintf(w, "  watch                                              Print broadcast state events\n")
	fmt.Fprintf(w, "  health                                             Check session dependencies\n")
	fmt.Fprintf(w, "  check-config                                       Validate configuration and exit\n\n")

	fmt.Fprintf(w, "Options:\n")
	fmt.Fprintf(w, "  -d                    Enable debug logging with source location\n")
	fmt.Fprintf(w, "  -gateway <url>        Gateway base URL\n")
	fmt.Fprintf(w, "  -store <backend>      Session store: memory, file, redis, nats\n")
	fmt.Fprintf(w, "  -session-file <path>  Session file for the file store\n")
	fmt.Fprintf(w, "  -session-id <id>      Session id for redis and nats stores\n")
	fmt.Fprintf(w, "  -timeout <duration>   Gateway request timeout\n")
	fmt.Fprintf(w, "  -broadcast            Publish state changes on NATS\n")
	fmt.Fprintf(w, "  -audit                Index state changes in OpenSearch\n")
	fmt.Fprintf(w, "  -version              Print version and exit\n")
	fmt.Fprintf(w, "  -help                 Show this help message\n\n")

	fmt.Fprintf(w, "Environment Variables:\n")
	fmt.Fprintf(w, "    GATEWAY_HOST=http://...   Gateway base URL\n")
	fmt.Fprintf(w, "    NO_PROFILE_PICTURE=/...   Fallback avatar path\n")
	fmt.Fprintf(w, "    SESSION_STORE=file        Session store backend\n")
	fmt.Fprintf(w, "    REDIS_URL=redis://...     Redis store URL\n")
	fmt.Fprintf(w, "    NATS_URL=nats://...       NATS server URL\n")
	fmt.Fprintf(w, "    OPENSEARCH_URL=http...    OpenSearch URL\n")
	fmt.Fprintf(w, "    LOG_LEVEL=warn            Logging level (debug,info,warn,error)\n")
	fmt.Fprintf(w, "    LOG_FORMAT=text           Log format (json,text)\n\n")

	fmt.Fprintf(w, "Configuration precedence: CLI flags > Environment variables > Defaults\n")
}
