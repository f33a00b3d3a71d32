package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"failureguard/internal/handlers"
	"failureguard/internal/llm"
	"failureguard/internal/logger"
	"failureguard/internal/notify"
	"failureguard/internal/repository"
	"failureguard/internal/repository/db"
	"failureguard/internal/server"
	"failureguard/internal/service"

	"github.com/spf13/viper"
)

const (
	workerStagger   = 500 * time.Millisecond
	shutdownTimeout = 10 * time.Second
)

// @title        FailureGuard API
// @version      1.0
// @description  Predictive-maintenance backend: latest machine readings, health bands, anomaly history and an LLM maintenance assistant.
// @BasePath     /
func main() {
	cfgErr := loadConfig()

	// init logger
	log := logger.Get(viper.GetString("log.level"))
	defer func() { _ = log.Sync() }()

	if cfgErr != nil {
		log.Fatalw("error reading config", "err", cfgErr)
	}

	// open DB
	conn, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(conn, repository.Paths{
		ProcessedLog:   viper.GetString("data.processed_log"),
		DocumentsIndex: viper.GetString("data.documents_index"),
		DocumentsDir:   viper.GetString("data.documents_dir"),
		StrictLog:      viper.GetBool("store.strict"),
	})

	deps := service.Deps{
		Simulator: service.SimulatorConfig{
			CSVPath:      viper.GetString("data.sensor_csv"),
			Machines:     viper.GetStringSlice("simulator.machines"),
			Tick:         viper.GetDuration("simulator.tick"),
			AnomalyAfter: viper.GetInt("simulator.anomaly_after"),
		},
		Pipeline: service.PipelineConfig{
			CSVPath:      viper.GetString("data.sensor_csv"),
			PollInterval: viper.GetDuration("pipeline.poll_interval"),
		},
		Log: log,
	}
	if key := strings.TrimSpace(viper.GetString("llm.api_key")); key != "" {
		deps.LLM = llm.NewClient(llm.Config{
			APIKey:  key,
			BaseURL: viper.GetString("llm.base_url"),
			Model:   viper.GetString("llm.model"),
		})
	} else {
		log.Warnw("llm api key not set; /query answers in demo mode")
	}
	if notifier := openNotifier(log); notifier != nil {
		defer notifier.Close()
		deps.Notifier = notifier
	}

	services := service.NewService(repos, deps)
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wait, err := startWorkers(ctx, services, log)
	if err != nil {
		log.Fatalw("failed to start workers", "err", err)
	}

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
	if err := wait(); err != nil {
		log.Errorw("worker exited with error", "err", err)
	}
}

func setDefaults() {
	viper.SetDefault("port", "8000")
	viper.SetDefault("log.level", logger.InfoLevel)
	viper.SetDefault("data.sensor_csv", "data/sensor_data.csv")
	viper.SetDefault("data.processed_log", "data/processed_stream.jsonl")
	viper.SetDefault("data.documents_index", "data/documents_index.jsonl")
	viper.SetDefault("data.documents_dir", "documents")
	viper.SetDefault("db.path", "data/failureguard.db")
	viper.SetDefault("simulator.enabled", true)
	viper.SetDefault("simulator.tick", service.DefaultTick)
	viper.SetDefault("simulator.anomaly_after", service.DefaultAnomalyAfter)
	viper.SetDefault("simulator.machines", service.DefaultMachines)
	viper.SetDefault("pipeline.poll_interval", time.Second)
	viper.SetDefault("store.strict", false)
	viper.SetDefault("llm.base_url", llm.DefaultBaseURL)
	viper.SetDefault("llm.model", llm.DefaultModel)
	viper.SetDefault("mqtt.topic", notify.DefaultTopic)
	viper.SetDefault("mqtt.client_id", notify.DefaultClientID)
	viper.SetDefault("mqtt.queue_size", notify.DefaultQueueSize)
}

// loadConfig reads configs/config.yml when present. FAILUREGUARD_* env vars
// override file values; GROQ_API_KEY is honoured for the LLM key.
func loadConfig() error {
	setDefaults()

	viper.SetEnvPrefix("FAILUREGUARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	if err := viper.BindEnv("llm.api_key", "FAILUREGUARD_LLM_API_KEY", "GROQ_API_KEY"); err != nil {
		return err
	}

	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	log.Infow("opening sqlite", "path", dbPath)
	return db.InitDB(dbPath)
}

// openNotifier connects the MQTT alert publisher when a broker is configured.
// A connection failure disables alert fan-out instead of stopping the process.
func openNotifier(log *logger.Logger) *notify.MQTTNotifier {
	broker := strings.TrimSpace(viper.GetString("mqtt.broker"))
	if broker == "" {
		return nil
	}
	n, err := notify.NewMQTTNotifier(notify.MQTTConfig{
		Broker:    broker,
		ClientID:  viper.GetString("mqtt.client_id"),
		Username:  viper.GetString("mqtt.username"),
		Password:  viper.GetString("mqtt.password"),
		Topic:     viper.GetString("mqtt.topic"),
		QueueSize: viper.GetInt("mqtt.queue_size"),
	}, log.Named("mqtt"))
	if err != nil {
		log.Errorw("mqtt_connect_failed", "broker", broker, "err", err)
		return nil
	}
	log.Infow("mqtt_connected", "broker", broker)
	return n
}

// startWorkers launches the generator (if enabled), the pipeline and the
// document indexer. The generator goes first so the pipeline finds a fresh CSV.
func startWorkers(ctx context.Context, services *service.Service, log *logger.Logger) (func() error, error) {
	sup := service.NewSupervisor(workerStagger, log.Named("supervisor"))
	if viper.GetBool("simulator.enabled") {
		sup.Add("simulator", services.Simulator)
	}
	sup.Add("pipeline", services.Pipeline)
	sup.Add("indexer", services.Indexer)
	return sup.Start(ctx)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		log.Infow("http server listening", "addr", server.Addr(port))
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
