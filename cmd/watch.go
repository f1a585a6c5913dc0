package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/beka-birhanu/vinom-drift/encoder"
	"github.com/beka-birhanu/vinom-drift/infrastruture/broadcast"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

const clearScreen = "\033[H\033[2J"

var (
	watchRedisAddr string
	watchChannel   string
)

func init() {
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Print snapshots broadcast by a running server",
		RunE:  runWatch,
	}

	watchCmd.Flags().StringVar(&watchRedisAddr, "redis-addr", envOr("REDIS_ADDR", "localhost:6379"), "Redis address")
	watchCmd.Flags().StringVar(&watchChannel, "channel", envOr("REDIS_CHANNEL", "vinom-drift:snapshots"), "Redis channel")

	rootCmd.AddCommand(watchCmd)
}

func envOr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := redis.NewClient(&redis.Options{Addr: watchRedisAddr})
	defer client.Close()

	subscriber, err := broadcast.NewRedisBroadcaster(client, watchChannel, 0)
	if err != nil {
		return err
	}
	payloads, err := subscriber.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", watchChannel, err)
	}

	decoder := &encoder.Protobuf{}
	out := cmd.OutOrStdout()
	for payload := range payloads {
		snap, err := decoder.UnmarshalSnapshot(payload)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "skipping frame: %v\n", err)
			continue
		}
		art, err := snap.Render()
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "skipping frame %d: %v\n", snap.Version, err)
			continue
		}
		fmt.Fprint(out, clearScreen+art)
		fmt.Fprintf(out, "tick %d, generation %d, path length %d\n", snap.Tick, snap.Generation, len(snap.Path))
	}
	return nil
}
