package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/kardianos/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"picam-cli/internal/camera"
	"picam-cli/internal/client"
	"picam-cli/internal/config"
	"picam-cli/internal/metrics"
	"picam-cli/internal/publish"
	"picam-cli/pkg/models"
)

const reloginRetry = 30 * time.Second

// Variables to hold flag values
var (
	watchOutput   string
	serviceAction string
)

// --- SERVICE WRAPPER ---

// program implements the kardianos/service interface
type program struct {
	settings config.Settings

	ctx    context.Context
	cancel context.CancelFunc

	api       *client.CameraClient
	poller    *camera.Poller
	server    *http.Server
	scheduler *cron.Cron
	mqtt      *publish.StatusPublisher
}

func (p *program) Start(s service.Service) error {
	// Start should not block. Do the actual work async.
	p.ctx, p.cancel = context.WithCancel(context.Background())
	if err := p.setup(); err != nil {
		p.cancel()
		return err
	}
	go p.run()
	return nil
}

func (p *program) setup() error {
	st := p.settings

	policy, err := camera.ParseUnknownStatusPolicy(st.UnknownStatus)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	m, err := metrics.New(registry)
	if err != nil {
		return err
	}

	p.api = setupCameraClient(st)

	var surface camera.Surface = camera.DiscardSurface{}
	if watchOutput != "" {
		surface = &camera.FileSurface{Path: watchOutput, Logger: logger}
	}
	renderer := camera.NewRenderer(surface, p.api, logger, m)

	onChange := func(prev, next models.CameraStatus) {}
	if st.MQTTBroker != "" {
		pub, err := publish.Connect(publish.MQTTConfig{
			Broker:   st.MQTTBroker,
			ClientID: st.MQTTClientID,
			Username: st.MQTTUsername,
			Password: st.MQTTPassword,
			Topic:    st.MQTTTopic,
		}, logger)
		if err != nil {
			// Status publishing is optional; polling goes on without it.
			logger.Warn("MQTT disabled", zap.Error(err))
		} else {
			p.mqtt = pub
			onChange = pub.PublishStatus
		}
	}

	p.poller = camera.NewPoller(p.api, nil, renderer, camera.PollerConfig{
		Interval:       st.PollInterval,
		Logger:         logger,
		Observer:       m,
		OnStatusChange: onChange,
	})
	registry.MustRegister(&metrics.StateCollector{Status: p.poller.Oracle(), Guard: p.api.Guard()})

	dispatcher := camera.NewDispatcher(p.poller.Oracle(), p.api, camera.DispatcherConfig{
		Policy:        policy,
		RateLimit:     st.CommandRate,
		Logger:        logger,
		Observer:      m,
		AfterDispatch: p.poller.Refresh,
	})

	if st.PhotoSchedule != "" {
		p.scheduler, err = camera.SchedulePhotos(p.ctx, st.PhotoSchedule, dispatcher, logger)
		if err != nil {
			return err
		}
	}

	flow := camera.NewLoginFlow(p.ctx, p.api, p.api.Guard(), p.poller, nil, logger, m)
	trigger := make(chan struct{}, 1)
	p.api.Guard().OnLoginRequired(func() {
		select {
		case trigger <- struct{}{}:
		default:
		}
	})
	go p.relogin(flow, trigger)

	if st.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{
			ErrorLog: zap.NewStdLog(logger),
		}))
		p.server = &http.Server{
			Addr:    st.MetricsAddr,
			Handler: mux,
		}
	}
	return nil
}

func (p *program) run() {
	p.poller.Start(p.ctx)

	if p.scheduler != nil {
		p.scheduler.Start()
	}

	if p.server == nil {
		return
	}
	logger.Info("metrics listening", zap.String("addr", p.server.Addr))

	// Blocking call to listen
	if err := p.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("HTTP server error", zap.Error(err))
	}
}

// relogin submits the stored credentials whenever the guard reports an
// expired session. A denied login is not retried; a transport error is.
func (p *program) relogin(flow *camera.LoginFlow, trigger <-chan struct{}) {
	ticker := time.NewTicker(reloginRetry)
	defer ticker.Stop()

	retry := false
	for {
		select {
		case <-p.ctx.Done():
			return
		case <-trigger:
		case <-ticker.C:
			if !retry || !p.api.Guard().LoginRequired() {
				continue
			}
		}

		st := p.settings
		if st.Username == "" || st.Password == "" {
			logger.Warn("login required; set PICAM_PASSWORD or run 'picam-cli login'")
			continue
		}

		granted, err := flow.Submit(p.ctx, st.Username, st.Password)
		retry = err != nil
		if !granted {
			continue
		}
		if err := config.SaveSession(st.BaseURL, st.Username, p.api.SessionCookies()); err != nil {
			logger.Warn("session not saved", zap.Error(err))
		}
	}
}

func (p *program) Stop(s service.Service) error {
	// Stop should not block. Signal the app to stop.
	logger.Info("Stopping service...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if p.scheduler != nil {
		<-p.scheduler.Stop().Done()
	}
	if p.server != nil {
		if err := p.server.Shutdown(ctx); err != nil {
			logger.Warn("Server forced to shutdown", zap.Error(err))
		}
	}
	if p.cancel != nil {
		p.cancel()
	}
	if p.poller != nil {
		p.poller.Stop()
	}
	if p.mqtt != nil {
		p.mqtt.Close()
	}
	return nil
}

// --- COMMAND ---

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Continuously poll the camera",
	Long: `Polls the camera status and preview once per interval, keeps the latest
frame on disk, exposes Prometheus metrics and publishes status changes to MQTT.
Can be installed as a system service.`,
	Run: func(cmd *cobra.Command, args []string) {
		settings := config.Load()

		// 1. Define Service Configuration
		svcConfig := &service.Config{
			Name:        "picam-watch",
			DisplayName: "PiCam Watcher",
			Description: "Polls a gopicam camera and exports its status",
			// Arguments passed to the binary when run as a service
			Arguments: []string{"watch", "--config", viper.ConfigFileUsed()},
		}
		if watchOutput != "" {
			svcConfig.Arguments = append(svcConfig.Arguments, "--output", watchOutput)
		}

		prg := &program{settings: settings}

		s, err := service.New(prg, svcConfig)
		if err != nil {
			log.Fatal(err)
		}

		// 2. Handle Service Control Actions (Install, Start, Stop, Uninstall)
		if serviceAction != "" {
			if serviceAction == "install" && settings.BaseURL == "" {
				log.Fatal("Error: run 'picam-cli login' before installing the service.")
			}

			err = service.Control(s, serviceAction)
			if err != nil {
				log.Fatalf("Failed to %s service: %v", serviceAction, err)
			}
			fmt.Printf("Service action '%s' completed successfully.\n", serviceAction)
			return
		}

		// 3. Run the Service (Blocking)
		// This happens when the Service Manager starts the binary, OR when run interactively without flags
		if err = s.Run(); err != nil {
			logger.Error("service exited", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchOutput, "output", "", "Keep the latest preview frame in this file")
	watchCmd.Flags().Duration("interval", camera.DefaultPollInterval, "Poll interval")
	watchCmd.Flags().String("metrics-addr", ":9110", "Prometheus listen address (empty disables)")
	watchCmd.Flags().String("photo-schedule", "", "Cron schedule (with seconds) for automatic photos")
	_ = viper.BindPFlag("poll_interval", watchCmd.Flags().Lookup("interval"))
	_ = viper.BindPFlag("metrics_addr", watchCmd.Flags().Lookup("metrics-addr"))
	_ = viper.BindPFlag("photo_schedule", watchCmd.Flags().Lookup("photo-schedule"))

	// Flag for Service Control
	watchCmd.Flags().StringVar(&serviceAction, "service", "", "Service action: install, uninstall, start, stop")
}
