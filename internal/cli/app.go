package cli

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"pickupwatch/pkg/apple"
	"pickupwatch/pkg/config"
	"pickupwatch/pkg/metrics"
	"pickupwatch/pkg/notifier"
	"pickupwatch/pkg/wechat"
)

// app holds the components shared by check and watch
type app struct {
	cfg       *config.Config
	selection *apple.Selection
	checker   *apple.Checker
	metrics   *metrics.Metrics
}

// newApp wires session, fulfillment client, notifier and checker for cfg
func newApp(cfg *config.Config, out io.Writer, notifyOnce bool) (*app, error) {
	sel, err := apple.NewCatalog(cfg.Countries).Resolve(cfg.Selection.Country, cfg.Selection.Models, cfg.Selection.Zip)
	if err != nil {
		return nil, fmt.Errorf("invalid selection: %w", err)
	}

	httpClient := &http.Client{Timeout: time.Duration(cfg.Apple.RequestTimeout) * time.Second}
	session := apple.NewSession(cfg.Apple, apple.WithHTTPClient(httpClient))
	fulfillment := apple.NewFulfillmentClient(cfg.Apple, httpClient)

	push := newNotifier(cfg)

	m := metrics.New()
	checker := apple.NewChecker(session, fulfillment, push, apple.CheckerOptions{
		NotifyOnce:     notifyOnce,
		NotifyFailures: push != nil,
		Output:         out,
		Metrics:        m,
	})

	return &app{cfg: cfg, selection: sel, checker: checker, metrics: m}, nil
}

// newNotifier builds one sender per enabled channel. Channels with on_error
// off only receive availability reports. Returns nil when nothing is enabled.
func newNotifier(cfg *config.Config) apple.Notifier {
	var senders notifier.Multi
	if cfg.Telegram.Enabled {
		senders = append(senders, channel(notifier.NewTelegramNotifier(cfg.Telegram), cfg.Telegram.OnError))
	}
	if cfg.WeCom.Enabled {
		senders = append(senders, channel(wechat.NewClient(cfg.WeCom), cfg.WeCom.OnError))
	}
	if len(senders) == 0 {
		return nil
	}
	return senders
}

func channel(s notifier.Sender, onError bool) notifier.Sender {
	if onError {
		return s
	}
	return notifier.AvailabilityOnly(s)
}
