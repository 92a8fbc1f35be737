package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"liyu1981.xyz/safetrack-monitor-service/pkg/common"
	stGrpc "liyu1981.xyz/safetrack-monitor-service/pkg/grpc"
	"liyu1981.xyz/safetrack-monitor-service/pkg/models"
	"liyu1981.xyz/safetrack-monitor-service/pkg/safetrack"
)

const remoteTimeout = 30 * time.Second

var (
	grpcAddr        string
	adminUser       string
	adminPass       string
	includeArchived bool
	outputPath      string
	daysToKeep      int
)

// controlTarget runs a control command either against the configured store
// directly or against a running server over gRPC.
type controlTarget struct {
	local  *safetrack.SafeTrack
	remote *stGrpc.AlertServiceClient
	close  func()
}

func openControlTarget(ctx context.Context) (*controlTarget, error) {
	if grpcAddr != "" {
		cc, err := grpc.NewClient(grpcAddr,
			grpc.WithTransportCredentials(insecure.NewCredentials()),
			grpc.WithPerRPCCredentials(stGrpc.Credentials{User: adminUser, Pass: adminPass}),
		)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", grpcAddr, err)
		}
		return &controlTarget{
			remote: stGrpc.NewAlertServiceClient(cc),
			close:  func() { _ = cc.Close() },
		}, nil
	}

	cfg, err := common.LoadConfig()
	if err != nil {
		return nil, err
	}
	common.ConfigureLogger(common.LogOptions{Dir: cfg.LogDir, Level: zap.WarnLevel})
	store, release, err := openStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.StoreBackend, err)
	}
	return &controlTarget{local: buildSafeTrack(store, cfg), close: release}, nil
}

func withControlTarget(fn func(ctx context.Context, t *controlTarget) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), remoteTimeout)
		defer cancel()

		t, err := openControlTarget(ctx)
		if err != nil {
			return err
		}
		defer t.close()
		return fn(ctx, t)
	}
}

func addControlCommands(root *cobra.Command) {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the alert export document to stdout or a file",
		RunE: withControlTarget(func(ctx context.Context, t *controlTarget) error {
			var doc []byte
			var err error
			if t.remote != nil {
				doc, err = t.remote.Export(ctx, includeArchived)
			} else {
				doc, err = t.local.Alerts.ExportSnapshot(includeArchived)
			}
			if err != nil {
				return err
			}
			if outputPath == "" {
				_, err = os.Stdout.Write(append(doc, '\n'))
				return err
			}
			return os.WriteFile(outputPath, doc, 0o644)
		}),
	}
	exportCmd.Flags().BoolVar(&includeArchived, "archived", false, "include archived alerts")
	exportCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")

	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace alert collections from an export document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return withControlTarget(func(ctx context.Context, t *controlTarget) error {
				var ok bool
				if t.remote != nil {
					if ok, err = t.remote.Import(ctx, doc); err != nil {
						return err
					}
				} else {
					ok = t.local.Alerts.ImportSnapshot(doc)
				}
				if !ok {
					return fmt.Errorf("import of %s rejected", args[0])
				}
				fmt.Println("import ok")
				return nil
			})(cmd, args)
		},
	}

	cleanupCmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Archive active alerts older than the retention window",
		RunE: withControlTarget(func(ctx context.Context, t *controlTarget) error {
			if t.remote != nil {
				reply, err := t.remote.Cleanup(ctx, int32(daysToKeep))
				if err != nil {
					return err
				}
				if reply.Error != "" {
					return fmt.Errorf("cleanup failed: %s", reply.Error)
				}
				fmt.Printf("archived %d alerts\n", reply.Moved)
				return nil
			}
			result := t.local.Alerts.CleanupOlderThan(daysToKeep)
			if result.Err != nil {
				return fmt.Errorf("cleanup failed: %w", result.Err)
			}
			fmt.Printf("archived %d alerts\n", result.Moved)
			return nil
		}),
	}
	cleanupCmd.Flags().IntVar(&daysToKeep, "days", safetrack.DefaultCleanupDays, "days to keep")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Print storage statistics as JSON",
		RunE: withControlTarget(func(ctx context.Context, t *controlTarget) error {
			var stats models.StorageStats
			if t.remote != nil {
				var err error
				if stats, err = t.remote.Stats(ctx); err != nil {
					return err
				}
			} else {
				stats = t.local.Alerts.Stats()
			}
			out, err := json.MarshalIndent(stats, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}),
	}

	for _, c := range []*cobra.Command{exportCmd, importCmd, cleanupCmd, statsCmd} {
		c.Flags().StringVar(&grpcAddr, "grpc-addr", "", "control a running server over gRPC instead of opening the store")
		c.Flags().StringVar(&adminUser, "user", os.Getenv(common.EnvPrefix+"_ADMIN_USER"), "admin user for --grpc-addr")
		c.Flags().StringVar(&adminPass, "pass", os.Getenv(common.EnvPrefix+"_ADMIN_PASS"), "admin password for --grpc-addr")
		root.AddCommand(c)
	}
}
