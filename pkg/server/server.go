package server

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KyleBrandon/temp-monitor/config"
	"github.com/KyleBrandon/temp-monitor/internal/clock"
	"github.com/KyleBrandon/temp-monitor/internal/database"
	"github.com/KyleBrandon/temp-monitor/internal/mqtt"
	"github.com/KyleBrandon/temp-monitor/internal/sensor"
	"github.com/KyleBrandon/temp-monitor/pkg/server/commands"
	"github.com/KyleBrandon/temp-monitor/pkg/server/health"
	"github.com/KyleBrandon/temp-monitor/pkg/server/monitor"
	"github.com/KyleBrandon/temp-monitor/pkg/server/status"
	"github.com/KyleBrandon/temp-monitor/pkg/server/temperatures"
	"github.com/KyleBrandon/temp-monitor/pkg/utils"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/nikoksr/notify"
	"github.com/nikoksr/notify/service/twilio"
)

const (
	DEFAULT_SERVER_PORT          = "8080"
	DEFAULT_CONFIG_FILE_LOCATION = "./config/config.json"
	DEFAULT_MQTT_CLIENT_PREFIX   = "temp-monitor-"
	SHUTDOWN_TIMEOUT             = 5 * time.Second
)

// Used by "flag" to read command line argument
var (
	cmdLineFlagMockSensor bool
	cmdLineFlagLogLevel   string
	cmdLineFlagClock      string
)

type ServerConfig struct {
	mux                *http.ServeMux
	mctx               *monitor.MonitorContext
	ServerPort         string
	UseMockSensor      bool
	LogFileLocation    string
	ConfigFileLocation string
	DeviceID           string
	ApiKey             string
	Logger             *slog.Logger
	LoggerLevel        *slog.LevelVar
	LogFile            *os.File
	Notifier           *notify.Notify

	Settings       config.Config
	Sensors        sensor.Sensors
	Clock          clock.Clock
	Archive        database.Archiver
	ArchiveConfig  database.ArchiveSettings
	MQTTConfig     mqtt.ClientConfig
	MQTTClient     *mqtt.Client
	Bridge         *mqtt.Bridge
	OriginPatterns []string
}

// init will read and initialize the global command line variables
func init() {
	flag.BoolVar(&cmdLineFlagMockSensor, "use_mock_sensor", false, "Indicate if we should use a mock sensor for the server instance.")
	flag.StringVar(&cmdLineFlagLogLevel, "log_level", config.DefaultLogLevel.String(), "The log level to start the server at")
	flag.StringVar(&cmdLineFlagClock, "clock", clock.CLOCK_SYSTEM, "The reading clock: system (unix seconds) or tick (counter)")
}

// InitializeServer wires the sensor, monitor and transports together and
// serves until the process is interrupted.
func InitializeServer() error {
	slog.Debug(">>InitializeServer")
	defer slog.Debug("<<InitializeServer")

	sc, err := initializeServerConfig()
	if err != nil {
		return err
	}

	defer sc.close()

	sinks := []monitor.Sink{monitor.NewLogSink(os.Stdout)}
	if sc.Bridge != nil {
		sinks = append(sinks, sc.Bridge)
	}

	var notifier monitor.Notifier
	if sc.Notifier != nil {
		notifier = sc.Notifier
	}

	settings := monitor.MonitorSettings{
		DeviceID:         sc.DeviceID,
		BufferCapacity:   sc.Settings.BufferCapacity,
		SampleRateHz:     sc.Settings.SampleRateHz,
		ReportEvery:      sc.Settings.ReportEvery,
		AlertHighCelsius: sc.Settings.AlertHighCelsius,
		AlertLowCelsius:  sc.Settings.AlertLowCelsius,
	}
	sc.mctx = monitor.InitializeMonitorContext(settings, sc.Sensors, sc.Clock, sinks, sc.Archive, notifier)

	if sc.Bridge != nil {
		if err := sc.Bridge.Start(sc.mctx); err != nil {
			slog.Error("failed to start the MQTT bridge", "error", err)
		}
	}

	sc.mux = http.NewServeMux()

	healthHandler := health.NewHandler(sc.LoggerLevel, sc.Logger, sc.ApiKey)
	healthHandler.RegisterRoutes(sc.mux)

	statusHandler := status.NewHandler(sc.mctx, sc.OriginPatterns)
	statusHandler.RegisterRoutes(sc.mux)

	temperatureHandler := temperatures.NewHandler(sc.mctx)
	temperatureHandler.RegisterRoutes(sc.mux)

	commandHandler := commands.NewHandler(sc.mctx, sc.ApiKey)
	commandHandler.RegisterRoutes(sc.mux)

	sc.runServer()

	return nil
}

// runServer will start listening for connections
func (sc *ServerConfig) runServer() {
	slog.Info(">>runServer")
	defer slog.Info("<<runServer")

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", sc.ServerPort),
		Handler: sc.mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown failed", "error", err)
		}
	}()

	slog.Info("Starting server", "port", sc.ServerPort, "device_id", sc.DeviceID)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
	}

	sc.mctx.CancelAndWait()
}

func initializeServerConfig() (*ServerConfig, error) {
	slog.Info(">>initializeServerConfig")
	defer slog.Info("<<initializeServerConfig")

	sc := &ServerConfig{}

	// MUST BE FIRST
	if err := sc.readEnvironmentVariables(); err != nil {
		return nil, err
	}

	if err := sc.configureLogger(); err != nil {
		return nil, err
	}

	settings, err := config.LoadConfigSettings(sc.ConfigFileLocation)
	if err != nil {
		slog.Error("failed to load config file", "error", err)
		return nil, err
	}

	sensors, err := sensor.NewSensorConfig(settings.Devices, sc.UseMockSensor)
	if err != nil {
		slog.Error("failed to initialize sensors", "error", err)
		return nil, err
	}

	sc.Settings = settings
	sc.Sensors = sensors
	sc.OriginPatterns = settings.OriginPatterns
	sc.Clock = clock.New(cmdLineFlagClock)

	// the archive and broker are optional, the monitor runs without them
	sc.openArchive()
	sc.connectMQTT()

	return sc, nil
}

func (sc *ServerConfig) readEnvironmentVariables() error {
	slog.Info(">>readEnvironmentVariables")
	defer slog.Info("<<readEnvironmentVariables")

	err := godotenv.Load()
	if err != nil {
		slog.Warn("could not load .env file", "error", err)
	}

	sc.ServerPort = os.Getenv("PORT")
	if len(sc.ServerPort) == 0 {
		sc.ServerPort = DEFAULT_SERVER_PORT
	}

	sc.LogFileLocation = os.Getenv("LOG_FILE_LOCATION")

	sc.ConfigFileLocation = os.Getenv("CONFIG_FILE_LOCATION")
	if len(sc.ConfigFileLocation) == 0 {
		sc.ConfigFileLocation = DEFAULT_CONFIG_FILE_LOCATION
	}

	sc.DeviceID = os.Getenv("DEVICE_ID")
	if len(sc.DeviceID) == 0 {
		sc.DeviceID = uuid.NewString()
		slog.Info("no DEVICE_ID configured, generated one", "device_id", sc.DeviceID)
	}

	sc.ApiKey = os.Getenv("API_KEY")
	if len(sc.ApiKey) == 0 {
		slog.Warn("no API_KEY configured, commands are not protected")
	}

	sc.ArchiveConfig = database.ArchiveSettings{
		Driver:             os.Getenv("ARCHIVE_DRIVER"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		ClickHouseAddr:     os.Getenv("CLICKHOUSE_ADDR"),
		ClickHouseDatabase: os.Getenv("CLICKHOUSE_DB"),
		ClickHouseUsername: os.Getenv("CLICKHOUSE_USER"),
		ClickHousePassword: os.Getenv("CLICKHOUSE_PASS"),
	}

	sc.MQTTConfig = mqtt.ClientConfig{
		Broker:   os.Getenv("MQTT_BROKER"),
		ClientID: os.Getenv("MQTT_CLIENT_ID"),
		Username: os.Getenv("MQTT_USERNAME"),
		Password: os.Getenv("MQTT_PASSWORD"),
	}
	if len(sc.MQTTConfig.ClientID) == 0 {
		sc.MQTTConfig.ClientID = DEFAULT_MQTT_CLIENT_PREFIX + sc.DeviceID
	}

	twilioAccountSID := os.Getenv("TWILIO_ACCOUNT_SID")
	twilioAuthToken := os.Getenv("TWILIO_AUTH_TOKEN")
	twilioFromPhone := os.Getenv("TWILIO_FROM_PHONE_NO")
	twilioToPhone := os.Getenv("TWILIO_TO_PHONE_NO")
	if len(twilioAccountSID) != 0 {
		slog.Info("Twilio account information present, configuring Notifier")

		twilioService, err := twilio.New(twilioAccountSID, twilioAuthToken, twilioFromPhone)
		if err != nil {
			return fmt.Errorf("failed to initialize Twilio service: %w", err)
		}

		twilioService.AddReceivers(twilioToPhone)

		notifier := notify.New()
		notifier.UseServices(twilioService)
		sc.Notifier = notifier
	}

	// mock sensor flag is a command line flag for debugging
	sc.UseMockSensor = cmdLineFlagMockSensor

	return nil
}

// configureLogger will initialize the slog to stderr and save the log level so it can be set via API.
func (sc *ServerConfig) configureLogger() error {
	slog.Info(">>configureLogger")
	defer slog.Info("<<configureLogger")

	currentLevel := new(slog.LevelVar)

	level, err := utils.ParseLogLevel(cmdLineFlagLogLevel)
	if err != nil {
		slog.Error("Failed to parse the log level, setting to DefaultLogLevel", "error", err, "log_level", cmdLineFlagLogLevel)
		level = config.DefaultLogLevel
	}

	currentLevel.Set(level)

	// by default we will write to stderr
	logFile := os.Stderr
	if len(sc.LogFileLocation) != 0 {
		slog.Info("Save to log file", "file", sc.LogFileLocation)
		logFile, err = os.OpenFile(sc.LogFileLocation, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
	}

	fileHandler := slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: currentLevel})

	logger := slog.New(fileHandler)

	slog.SetDefault(logger)

	sc.Logger = logger
	sc.LoggerLevel = currentLevel
	sc.LogFile = logFile

	return nil
}

func (sc *ServerConfig) openArchive() {
	archive, err := database.OpenArchive(context.Background(), sc.ArchiveConfig)
	if err != nil {
		slog.Error("failed to open the reading archive, continuing without it", "driver", sc.ArchiveConfig.Driver, "error", err)
		return
	}

	sc.Archive = archive
}

func (sc *ServerConfig) connectMQTT() {
	if len(sc.MQTTConfig.Broker) == 0 {
		slog.Info("no MQTT_BROKER configured, MQTT bridge disabled")
		return
	}

	client, err := mqtt.NewClient(sc.MQTTConfig)
	if err != nil {
		slog.Error("failed to connect to the MQTT broker, continuing without it", "error", err)
		return
	}

	sc.MQTTClient = client
	sc.Bridge = mqtt.NewBridge(client.Connection(), mqtt.BridgeConfig{DeviceID: sc.DeviceID})
}

func (sc *ServerConfig) close() {
	if sc.Bridge != nil {
		if err := sc.Bridge.Stop(); err != nil {
			slog.Warn("failed to stop the MQTT bridge", "error", err)
		}
	}

	if sc.MQTTClient != nil {
		sc.MQTTClient.Close()
	}

	if sc.Archive != nil {
		if err := sc.Archive.Close(); err != nil {
			slog.Warn("failed to close the reading archive", "error", err)
		}
	}

	if err := sc.Sensors.Close(); err != nil {
		slog.Warn("failed to close the sensors", "error", err)
	}

	if sc.LogFile != os.Stderr {
		sc.LogFile.Close()
	}
}
