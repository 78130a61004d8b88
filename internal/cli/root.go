package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"kernelprovider/internal/config"
	"kernelprovider/internal/httpapi"
)

// Options are the persistent flags shared by every command.
type Options struct {
	ConfigFile string
	KernelDirs []string
	RuntimeDir string
	Addr       string
	LogLevel   string
}

// Execute runs the CLI with os.Args.
func Execute() error {
	return BuildRootCmd(&Options{}).Execute()
}

// loadConfig reads the config file (if any) and applies defaults and env
// overrides. Flags set on the command line win over both.
func loadConfig(opts *Options) (config.Config, error) {
	var cfg config.Config
	if opts.ConfigFile != "" {
		c, err := config.Load(opts.ConfigFile)
		if err != nil {
			return cfg, err
		}
		cfg = c
	}
	cfg.ApplyDefaults()
	if len(opts.KernelDirs) > 0 {
		cfg.KernelDirs = append(append([]string(nil), opts.KernelDirs...), cfg.KernelDirs...)
	}
	if opts.RuntimeDir != "" {
		cfg.RuntimeDir = opts.RuntimeDir
	}
	if opts.Addr != "" {
		cfg.Addr = opts.Addr
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// BuildRootCmd constructs the command tree bound to opts.
func BuildRootCmd(opts *Options) *cobra.Command {
	root := &cobra.Command{
		Use:           "kernelprovider",
		Short:         "Resolve and launch Jupyter kernels through a lifecycle manager",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "Config file (.yaml, .json or .toml)")
	root.PersistentFlags().StringSliceVar(&opts.KernelDirs, "kernel-dir", nil, "Extra kernel spec directory, searched before the Jupyter defaults (repeatable)")
	root.PersistentFlags().StringVar(&opts.RuntimeDir, "runtime-dir", "", "Directory for connection files")
	root.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "Log level: debug|info|warn|error (defaults KERNELPROVIDER_LOG_LEVEL or info)")

	root.AddCommand(specsCmd(opts), launchCmd(opts), serveCmd(opts), completionCmd(root))
	return root
}

func specsCmd(opts *Options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "specs",
		Short: "List kernel specs owned by the provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			log := newLogger(cfg.LogLevel)
			svc, _, err := buildService(cfg, &log)
			if err != nil {
				return err
			}
			specs := svc.KernelSpecs()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(specs)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tDISPLAY NAME\tLIFECYCLE MANAGER\tRESOURCE DIR")
			for _, s := range specs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Name, s.DisplayName, s.LifecycleManager, s.ResourceDir)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func launchCmd(opts *Options) *cobra.Command {
	var (
		cwd    string
		params []string
	)
	cmd := &cobra.Command{
		Use:     "launch <kernel-spec>",
		Short:   "Launch a kernel and keep it running until interrupted",
		Example: "  kernelprovider launch python3-local --cwd ~/notebooks --param env.FOO=bar",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			kp, err := parseParams(params)
			if err != nil {
				return err
			}
			log := newLogger(cfg.LogLevel)
			svc, _, err := buildService(cfg, &log)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ki, err := svc.Launch(ctx, args[0], cwd, kp)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(ki); err != nil {
				return err
			}

			exited := make(chan struct{})
			go func() {
				defer close(exited)
				tick := time.NewTicker(250 * time.Millisecond)
				defer tick.Stop()
				for {
					if k, err := svc.Get(ki.ID); err != nil || !k.Alive {
						return
					}
					select {
					case <-ctx.Done():
						return
					case <-tick.C:
					}
				}
			}()
			select {
			case <-exited:
				log.Info().Str("kernel_id", ki.ID).Msg("kernel exited")
			case <-ctx.Done():
				log.Info().Str("kernel_id", ki.ID).Msg("interrupted; shutting down kernel")
			}
			<-exited
			sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return svc.ShutdownAll(sctx)
		},
	}
	cmd.Flags().StringVar(&cwd, "cwd", "", "Working directory for the kernel process")
	cmd.Flags().StringArrayVar(&params, "param", nil, "Kernel parameter key=value; env.NAME=value sets an environment variable (repeatable)")
	return cmd
}

func serveCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the kernel provider HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			log := newLogger(cfg.LogLevel)
			svc, reg, err := buildService(cfg, &log)
			if err != nil {
				return err
			}
			httpapi.SetLogger(log)
			httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
			httpapi.SetCORSOptions(len(cfg.CORSOrigins) > 0, cfg.CORSOrigins, nil, nil)
			return serve(cmd.Context(), cfg.Addr, httpapi.NewMux(svc), svc.ShutdownAll, reg.Dirs(), log)
		},
	}
	cmd.Flags().StringVar(&opts.Addr, "addr", "", "HTTP listen address, e.g. :8888 (defaults KERNELPROVIDER_ADDR)")
	return cmd
}

// serve runs srv until SIGINT/SIGTERM, then shuts down HTTP and kernels.
func serve(ctx context.Context, addr string, h http.Handler, shutdownKernels func(context.Context) error, dirs []string, log zerolog.Logger) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Strs("kernel_dirs", dirs).Msg("kernelprovider listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
	}
	return shutdownKernels(sctx)
}

func completionCmd(root *cobra.Command) *cobra.Command {
	completion := &cobra.Command{Use: "completion", Short: "Generate the autocompletion script for the specified shell"}
	completion.AddCommand(&cobra.Command{Use: "bash", Short: "Bash completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenBashCompletion(cmd.OutOrStdout()) }})
	completion.AddCommand(&cobra.Command{Use: "zsh", Short: "Zsh completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenZshCompletion(cmd.OutOrStdout()) }})
	completion.AddCommand(&cobra.Command{Use: "fish", Short: "Fish completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenFishCompletion(cmd.OutOrStdout(), true) }})
	completion.AddCommand(&cobra.Command{Use: "powershell", Short: "PowerShell completion", RunE: func(cmd *cobra.Command, args []string) error {
		return root.GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
	}})
	return completion
}
