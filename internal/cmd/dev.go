package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/sfckit/sfcc/internal/cmdtypes"
	"github.com/sfckit/sfcc/internal/cmdutil"
	"github.com/sfckit/sfcc/internal/devserver"
	"github.com/sfckit/sfcc/internal/output"
)

// NewDevCmd creates the dev command.
func NewDevCmd(g *cmdtypes.GlobalConfig) *cobra.Command {
	var (
		f    cmdutil.CompileFlags
		addr string
	)

	c := &cobra.Command{
		Use:   "dev [dir]",
		Short: "Serve components with live reload",
		Long: `Serve a directory over HTTP, compiling components on request.

Requests for <file>.vue.js, <file>.vue.css, <file>.vue.<n>.module.css and
their .map files are answered from the compiled component; everything
else is served as a static file. Saved components are recompiled and a
notification is pushed to browsers subscribed at ` + devserver.ReloadPath + `.

Examples:
  sfcc dev src
  sfcc dev --addr 127.0.0.1:8080`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := cmdutil.LoadConfig(c, g)
			if err != nil {
				return err
			}
			cfg.Root = cmdutil.ResolveDir(args, cfg.Root)

			fs := afero.NewOsFs()
			opts, compilers := cmdutil.CompilerOptions(fs, cfg)
			defer compilers.Close()

			srv, err := devserver.New(fs, cfg.Root, opts, cfg.Dev.CacheSize)
			if err != nil {
				return err
			}
			w, err := devserver.NewWatcher(cfg.Root)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			output.Println(output.FormatCheckmark("Serving " + output.StyleNoun.Render(cfg.Root) + " at http://" + displayAddr(cfg.Dev.Addr)))
			return srv.ListenAndServe(ctx, cfg.Dev.Addr, w)
		},
	}

	f.AddTo(c)
	c.Flags().StringVar(&addr, "addr", "", "Listen address (default: from config, :5173)")

	return c
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
