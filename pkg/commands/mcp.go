package commands

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/diary/pkg/runner/mcp"
)

type mcpOptions struct {
	Transport   string
	HTTPHost    string
	HTTPPort    int
	HTTPPath    string
	HTTPTLSCert string
	HTTPTLSKey  string
}

func (o *mcpOptions) addHTTPFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.HTTPHost, "http-host", "127.0.0.1", "host/interface for HTTP transport")
	cmd.Flags().IntVar(&o.HTTPPort, "http-port", 8080, "port for HTTP transport (use 0 for random)")
	cmd.Flags().StringVar(&o.HTTPPath, "http-path", "/mcp", "HTTP endpoint path")
	cmd.Flags().StringVar(&o.HTTPTLSCert, "http-tls-cert", "", "TLS certificate file for HTTPS")
	cmd.Flags().StringVar(&o.HTTPTLSKey, "http-tls-key", "", "TLS private key file for HTTPS")
}

func (o *mcpOptions) runner(cmd *cobra.Command, e *env) (*mcp.Runner, error) {
	path := strings.TrimSpace(o.HTTPPath)
	if path == "" {
		path = "/mcp"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	runner := &mcp.Runner{
		App:              e.Service,
		Name:             "diary",
		Version:          version,
		HTTPEndpointPath: path,
		HTTPServerCert:   strings.TrimSpace(o.HTTPTLSCert),
		HTTPServerKey:    strings.TrimSpace(o.HTTPTLSKey),
	}

	switch strings.ToLower(strings.TrimSpace(o.Transport)) {
	case "", string(mcp.TransportHTTP):
		host := strings.TrimSpace(o.HTTPHost)
		if host == "" {
			host = "127.0.0.1"
		}
		port := o.HTTPPort
		if port < 0 || port > 65535 {
			return nil, fmt.Errorf("invalid http-port %d", port)
		}

		addr := net.JoinHostPort(host, strconv.Itoa(port))
		runner.Transport = mcp.TransportHTTP
		runner.HTTPListenAddr = addr
		runner.OnHTTPListening = func(a net.Addr) {
			tcpAddr, ok := a.(*net.TCPAddr)
			if !ok {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "MCP HTTP server listening on %s%s\n", addr, path)
				return
			}

			displayHost := host
			if displayHost == "" || displayHost == "0.0.0.0" || displayHost == "::" {
				if tcpAddr.IP != nil && !tcpAddr.IP.IsUnspecified() {
					displayHost = tcpAddr.IP.String()
				} else {
					displayHost = "127.0.0.1"
				}
			}

			if strings.Contains(displayHost, ":") && !strings.HasPrefix(displayHost, "[") {
				displayHost = "[" + displayHost + "]"
			}

			scheme := "http"
			if runner.HTTPServerCert != "" && runner.HTTPServerKey != "" {
				scheme = "https"
			}

			_, _ = fmt.Fprintf(cmd.ErrOrStderr(),
				"MCP HTTP server listening on %s://%s:%d%s\n",
				scheme,
				displayHost,
				tcpAddr.Port,
				path,
			)
		}
	case string(mcp.TransportStdio):
		runner.Transport = mcp.TransportStdio
	default:
		return nil, fmt.Errorf("unsupported transport %q (expected http or stdio)", o.Transport)
	}
	return runner, nil
}

func addMCP(topLevel *cobra.Command) {
	mo := &mcpOptions{}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "start the Model Context Protocol server",
		Long: `Launch an MCP server that exposes diary entries, days, months and journal
commands through the Model Context Protocol.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(e *env) error {
				runner, err := mo.runner(cmd, e)
				if err != nil {
					return err
				}
				return runner.Do(cmd.Context())
			})
		},
	}

	cmd.Flags().StringVar(&mo.Transport, "transport", string(mcp.TransportHTTP), "transport to use: http or stdio")
	mo.addHTTPFlags(cmd)

	topLevel.AddCommand(cmd)
}
