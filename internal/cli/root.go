// Package cli provides the command-line interface for ftpc.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ftpc/ftpc/internal/config"
	"github.com/ftpc/ftpc/internal/logging"
	"github.com/ftpc/ftpc/internal/storage"
	"github.com/ftpc/ftpc/internal/tui"
)

var (
	cfgFile string
	verbose bool

	logger *logging.Logger
)

// Version information - set by the main package at startup.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// connectTimeout bounds the initial backend connection so an unreachable
// server turns into an error screen instead of a hang.
const connectTimeout = 30 * time.Second

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ftpc [remote] [path]",
		Short: "Terminal file browser for FTP, SFTP, S3, Azure and local storage",
		Long: `ftpc ` + Version + ` - Built: ` + BuildTime + `
Interactive terminal browser for remote storage.

Remotes are defined in a TOML configuration file (default ~/.ftpc.toml),
one table per remote with a 'type' key naming the backend:

  [myserver]
  type = "sftp"
  url = "files.example.com"
  username = "me"
  key_filename = "~/.ssh/id_ed25519"

Run with no arguments to pick a remote interactively; name a remote
(and optionally a start path) to connect directly.`,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// The TUI owns the terminal, so log output goes to a file.
			logger = logging.NewFileLogger()
			if verbose {
				logging.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowser(args)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file path (default ~/.ftpc.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
	rootCmd.Version = Version + " (" + BuildTime + ")"

	rootCmd.AddCommand(newListRemotesCmd())
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func runBrowser(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	remoteName := ""
	initialPath := "/"
	if len(args) > 0 {
		remoteName = args[0]
	}
	if len(args) > 1 {
		initialPath = args[1]
	}

	if remoteName == "" {
		selection, err := tui.RunSelector(remoteInfos(cfg))
		if err != nil {
			return err
		}
		if selection == nil {
			return nil
		}
		remoteName = selection.Remote
		initialPath = selection.Path
	}

	remote, err := cfg.Remote(remoteName)
	if err != nil {
		return err
	}

	backend, err := buildBackend(remote)
	if err != nil {
		return err
	}

	logger.Info().Str("remote", remoteName).Str("path", initialPath).Msg("connecting")

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	err = backend.Connect(ctx)
	cancel()
	if err != nil {
		logger.Error().Err(err).Str("remote", remoteName).Msg("connect failed")
		if showErr := tui.ShowError(err); showErr != nil {
			return showErr
		}
		return err
	}
	defer backend.Close()

	return tui.RunSession(backend, initialPath, logger)
}

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

func newListRemotesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remotes",
		Short: "List configured remotes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			for _, r := range cfg.Remotes() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", r.RemoteName(), r.RemoteType())
			}
			return nil
		},
	}
}

// remoteInfos converts remote definitions into selector rows.
func remoteInfos(cfg *config.Config) []tui.RemoteInfo {
	var infos []tui.RemoteInfo
	for _, r := range cfg.Remotes() {
		infos = append(infos, tui.RemoteInfo{
			Name:    r.RemoteName(),
			Kind:    string(r.RemoteType()),
			Details: remoteDetails(r),
		})
	}
	return infos
}

func remoteDetails(r config.Remote) []string {
	var lines []string
	switch r := r.(type) {
	case *config.FTPRemote:
		lines = append(lines, "Address: "+r.Addr(), "Username: "+r.User())
		if r.TLS {
			lines = append(lines, "TLS: explicit")
		}
	case *config.SFTPRemote:
		lines = append(lines, "Address: "+r.Addr(), "Username: "+r.Username)
		if r.KeyFile != "" {
			lines = append(lines, "Key file: "+r.KeyFile)
		}
	case *config.S3Remote:
		lines = append(lines, "Bucket: "+r.BucketName())
		if r.Region != "" {
			lines = append(lines, "Region: "+r.Region)
		}
		if r.EndpointURL != "" {
			lines = append(lines, "Endpoint: "+r.EndpointURL)
		}
	case *config.AzureRemote:
		lines = append(lines, "URL: "+r.URL, "Container: "+r.Container)
	}
	return lines
}

// buildBackend resolves a remote definition into a concrete storage
// backend. The type switch is the single place where remote kinds turn
// into implementations.
func buildBackend(r config.Remote) (storage.Storage, error) {
	switch r := r.(type) {
	case *config.LocalRemote:
		return newLocalBackend(r), nil
	case *config.FTPRemote:
		return newFTPBackend(r), nil
	case *config.SFTPRemote:
		return newSFTPBackend(r), nil
	case *config.S3Remote:
		return newS3Backend(r), nil
	case *config.AzureRemote:
		return newAzureBackend(r), nil
	default:
		return nil, fmt.Errorf("remote %s has unsupported type %s", r.RemoteName(), r.RemoteType())
	}
}
