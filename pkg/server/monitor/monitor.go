package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/KyleBrandon/temp-monitor/internal/clock"
	"github.com/KyleBrandon/temp-monitor/internal/database"
	"github.com/KyleBrandon/temp-monitor/internal/protocol"
	"github.com/KyleBrandon/temp-monitor/internal/reading"
	"github.com/KyleBrandon/temp-monitor/internal/sensor"
)

// InitializeMonitorContext creates the handler, initializes it with the current
// time and starts the sampling and notification routines. archive and notifier
// may be nil.
func InitializeMonitorContext(
	settings MonitorSettings,
	sensors sensor.Sensors,
	clk clock.Clock,
	sinks []Sink,
	archive database.Archiver,
	notifier Notifier,
) *MonitorContext {
	slog.Debug(">>InitializeMonitorContext")
	defer slog.Debug("<<InitializeMonitorContext")

	mctx := newMonitorContext(settings, sensors, clk, sinks, archive, notifier)
	mctx.startMonitorRoutines()

	return mctx
}

func newMonitorContext(
	settings MonitorSettings,
	sensors sensor.Sensors,
	clk clock.Clock,
	sinks []Sink,
	archive database.Archiver,
	notifier Notifier,
) *MonitorContext {
	if settings.ReportEvery <= 0 {
		settings.ReportEvery = DEFAULT_REPORT_EVERY
	}

	ctx, cancel := context.WithCancel(context.Background())

	mctx := &MonitorContext{
		wg:                &sync.WaitGroup{},
		ctx:               ctx,
		monitorCancelFunc: cancel,
		handler:           protocol.NewHandler(settings.BufferCapacity, settings.SampleRateHz),
		sensors:           sensors,
		clock:             clk,
		sinks:             sinks,
		archive:           archive,
		settings:          settings,
	}

	mctx.Notification.NotifyCh = make(chan NotificationTask, NOTIFICATION_QUEUE_SIZE)
	mctx.Notification.notifier = notifier

	mctx.handler.Init(clk.Now())

	return mctx
}

// CancelAndWait for the monitor routines to exit.
func (mctx *MonitorContext) CancelAndWait() {
	mctx.monitorCancelFunc()

	mctx.wg.Wait()
}

func (mctx *MonitorContext) startMonitorRoutines() {
	mctx.wg.Add(1)
	go mctx.monitorNotifications()

	mctx.wg.Add(1)
	go mctx.monitorTemperature()
}

// ProcessCommand answers a command at the current clock time. It never advances
// the clock.
func (mctx *MonitorContext) ProcessCommand(cmd protocol.Command) protocol.Response {
	mctx.Lock()
	defer mctx.Unlock()

	return mctx.handler.ProcessCommand(cmd, mctx.clock.Now())
}

func (mctx *MonitorContext) AddReading(t reading.Temperature) error {
	mctx.Lock()
	defer mctx.Unlock()

	return mctx.handler.AddReading(t, mctx.clock.Stamp())
}

// Readings returns the buffered readings, oldest first.
func (mctx *MonitorContext) Readings() []reading.Reading {
	mctx.Lock()
	defer mctx.Unlock()

	return mctx.handler.Readings()
}

// Reset re-initializes the handler as if the device had just booted.
func (mctx *MonitorContext) Reset() {
	slog.Info(">>Reset")
	defer slog.Info("<<Reset")

	mctx.Lock()
	defer mctx.Unlock()

	mctx.handler.Init(mctx.clock.Now())
	mctx.sinceReport = 0
	mctx.Alert.High = false
	mctx.Alert.Low = false
}

// SampleInterval is the ticker period for the configured rate, never shorter
// than MIN_SAMPLE_INTERVAL.
func (mctx *MonitorContext) SampleInterval() time.Duration {
	interval := time.Second / time.Duration(mctx.handler.SampleRate())
	if interval < MIN_SAMPLE_INTERVAL {
		return MIN_SAMPLE_INTERVAL
	}

	return interval
}

func (mctx *MonitorContext) monitorTemperature() {
	slog.Debug(">>monitorTemperature")
	defer slog.Debug("<<monitorTemperature")

	defer mctx.wg.Done()

	ticker := time.NewTicker(mctx.SampleInterval())
	defer ticker.Stop()

	for {
		select {
		case <-mctx.ctx.Done():
			slog.Debug("monitorTemperature: context done")
			return

		case <-ticker.C:
			mctx.sample()
		}
	}
}

// sample takes one reading and stores it. Every ReportEvery readings it
// emits status, statistics and the latest reading to the sinks.
func (mctx *MonitorContext) sample() {
	t, err := mctx.sensors.ReadTemperature()
	if err != nil {
		slog.Error("failed to read the temperature", "error", err)
		return
	}

	var reports []protocol.Response

	mctx.Lock()
	now := mctx.clock.Stamp()
	err = mctx.handler.AddReading(t, now)
	if err == nil {
		mctx.sinceReport++
		if mctx.sinceReport >= mctx.settings.ReportEvery {
			mctx.sinceReport = 0
			reports = []protocol.Response{
				mctx.handler.ProcessCommand(protocol.GetStatus, now),
				mctx.handler.ProcessCommand(protocol.GetStats, now),
				mctx.handler.ProcessCommand(protocol.GetLatestReading, now),
			}
		}
	}
	mctx.Unlock()

	if err != nil {
		slog.Error("failed to add reading", "error", err)
		return
	}

	mctx.archiveReading(reading.NewReading(t, now))
	mctx.checkAlerts(t)
	mctx.emit(reports)
}

func (mctx *MonitorContext) archiveReading(r reading.Reading) {
	if mctx.archive == nil {
		return
	}

	err := mctx.archive.SaveReading(mctx.ctx, mctx.settings.DeviceID, r)
	if err != nil {
		slog.Error("failed to archive reading", "error", err)
	}
}

// checkAlerts notifies once when the temperature crosses a threshold and once
// when it returns.
func (mctx *MonitorContext) checkAlerts(t reading.Temperature) {
	mctx.Lock()
	defer mctx.Unlock()

	if high := mctx.settings.AlertHighCelsius; high != nil {
		above := t.Celsius > *high
		if above != mctx.Alert.High {
			mctx.Alert.High = above
			if above {
				mctx.notify(fmt.Sprintf("Temperature %.1f°C is above %.1f°C", t.Celsius, *high))
			} else {
				mctx.notify(fmt.Sprintf("Temperature %.1f°C is back below %.1f°C", t.Celsius, *high))
			}
		}
	}

	if low := mctx.settings.AlertLowCelsius; low != nil {
		below := t.Celsius < *low
		if below != mctx.Alert.Low {
			mctx.Alert.Low = below
			if below {
				mctx.notify(fmt.Sprintf("Temperature %.1f°C is below %.1f°C", t.Celsius, *low))
			} else {
				mctx.notify(fmt.Sprintf("Temperature %.1f°C is back above %.1f°C", t.Celsius, *low))
			}
		}
	}
}

func (mctx *MonitorContext) notify(message string) {
	select {
	case mctx.Notification.NotifyCh <- NotificationTask{Message: message}:
	default:
		slog.Warn("notification queue is full, dropping message", "message", message)
	}
}

// emit hands the responses to every sink. A failing sink is logged and does
// not affect the stored readings.
func (mctx *MonitorContext) emit(reports []protocol.Response) {
	for _, resp := range reports {
		for _, sink := range mctx.sinks {
			if err := sink.Emit(mctx.ctx, resp); err != nil {
				slog.Error("failed to emit response", "kind", protocol.Kind(resp), "error", err)
			}
		}
	}
}

func (mctx *MonitorContext) monitorNotifications() {
	slog.Debug(">>monitorNotifications")
	defer slog.Debug("<<monitorNotifications")

	defer mctx.wg.Done()
	for {
		select {
		case <-mctx.ctx.Done():
			slog.Debug("monitorNotifications: context done")
			return

		case task, ok := <-mctx.Notification.NotifyCh:
			if !ok {
				slog.Error("The notification channel was closed")
				return
			}

			mctx.sendNotification(task)
		}
	}
}

func (mctx *MonitorContext) sendNotification(task NotificationTask) {
	if mctx.Notification.notifier == nil {
		slog.Warn("Notifier is not registered for notifications", "message", task.Message)
		return
	}

	err := mctx.Notification.notifier.Send(context.Background(), NOTIFICATION_SUBJECT, task.Message)
	if err != nil {
		slog.Error("failed to send message", "error", err, "message", task.Message)
	}
}
