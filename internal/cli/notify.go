package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"pickupwatch/pkg/config"
	"pickupwatch/pkg/notifier"
	"pickupwatch/pkg/wechat"

	"github.com/spf13/cobra"
)

var ErrNoChannels = errors.New("no notification channel enabled")

type connectionTester interface {
	TestConnection(ctx context.Context) error
}

func newNotifyTestCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "notify-test",
		Short: "Send a test message through every enabled notification channel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			return testChannels(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}
}

// testChannels reports each channel on its own line and joins the failures
func testChannels(ctx context.Context, cfg *config.Config, out io.Writer) error {
	channels := map[string]connectionTester{}
	if cfg.Telegram.Enabled {
		channels["telegram"] = notifier.NewTelegramNotifier(cfg.Telegram)
	}
	if cfg.WeCom.Enabled {
		channels["wecom"] = wechat.NewClient(cfg.WeCom)
	}
	if len(channels) == 0 {
		return ErrNoChannels
	}

	var errs []error
	for _, name := range []string{"telegram", "wecom"} {
		ch, ok := channels[name]
		if !ok {
			continue
		}
		if err := ch.TestConnection(ctx); err != nil {
			fmt.Fprintf(out, "%s: %v\n", name, err)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		fmt.Fprintf(out, "%s: ok\n", name)
	}
	return errors.Join(errs...)
}
