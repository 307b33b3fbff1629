package cli

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"roster-cli/internal/web"

	"github.com/spf13/cobra"
)

func newWebCmd(app *App) *cobra.Command {
	var addr string
	var open, readOnly bool
	var poll time.Duration

	cmd := &cobra.Command{
		Use:   "web",
		Short: "Serve the schedule in a browser with drag and drop",
		Long: strings.TrimSpace(`
Serve the planning window from a local HTTP server.

Bars on the chart can be dropped on another time and worker row, board cards
can be dragged between worker lists. The page follows changes made by the
CLI or a TUI on the same store.
`),
		Example: strings.TrimSpace(`
roster web --addr 127.0.0.1:3336
roster web --read-only --open=false
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := resolveDir(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			listenAddr := strings.TrimSpace(addr)
			if listenAddr == "" {
				return writeErr(cmd, errors.New("web: missing --addr"))
			}

			srv, err := web.NewServer(web.ServerConfig{
				Addr:         listenAddr,
				Dir:          dir,
				ActorID:      app.actor(),
				ReadOnly:     readOnly,
				Config:       app.config(),
				Logger:       app.logger(),
				PollInterval: poll,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			defer srv.Close()

			ln, err := net.Listen("tcp", listenAddr)
			if err != nil {
				return writeErr(cmd, err)
			}
			actualAddr := ln.Addr().String()
			url := "http://" + actualAddr + "/"

			opened := false
			openErr := ""
			if open {
				if err := openPath(url); err != nil {
					openErr = err.Error()
				} else {
					opened = true
				}
			}
			var hints []string
			if !opened {
				hints = append(hints, "open "+url)
			}
			_ = writeData(cmd, app, map[string]any{
				"addr":      actualAddr,
				"url":       url,
				"dir":       dir,
				"readOnly":  readOnly,
				"opened":    opened,
				"openError": openErr,
				"startedAt": time.Now().UTC().Format(time.RFC3339Nano),
			}, hints...)

			fmt.Fprintf(cmd.ErrOrStderr(), "Roster web running at %s\n", url)
			if openErr != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Failed to open browser: %s\n", openErr)
			}
			return http.Serve(ln, srv.Handler())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:3336", "Bind address (host:port or :port)")
	cmd.Flags().BoolVar(&open, "open", true, "Open the page in your default browser")
	cmd.Flags().BoolVar(&readOnly, "read-only", false, "Refuse drops and reorders")
	cmd.Flags().DurationVar(&poll, "poll", time.Second, "How often to check the store for outside changes (0 disables)")
	return cmd
}

func openPath(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("empty path")
	}
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", path).Run()
	case "windows":
		return exec.Command("cmd", "/c", "start", "", path).Run()
	default:
		return exec.Command("xdg-open", path).Run()
	}
}
