package exporter

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/muurk/opensprinkler/internal/logging"
	"github.com/muurk/opensprinkler/internal/sprinkler"
	"github.com/muurk/opensprinkler/internal/transport"
)

const namespace = "opensprinkler"

// Source is the part of sprinkler.Client the collector needs.
type Source interface {
	GetAll(ctx context.Context, pw string) (*sprinkler.Aggregate, error)
}

func newDesc(name, help string, labels ...string) *prometheus.Desc {
	return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, labels, nil)
}

var (
	upDesc             = newDesc("up", "Whether the last /ja request succeeded")
	scrapeDurationDesc = newDesc("scrape_duration_seconds", "Duration of the /ja request")
	infoDesc           = newDesc("info", "Controller identity", "device", "firmware", "hardware", "mac")
	deviceTimeDesc     = newDesc("device_time_seconds", "Controller clock (local time as epoch seconds)")
	enabledDesc        = newDesc("enabled", "Whether station operation is enabled")
	rainDelayDesc      = newDesc("rain_delay_active", "Whether a rain delay is in effect")
	rainDelayStopDesc  = newDesc("rain_delay_stop_seconds", "When the rain delay ends (0 when none)")
	sensorDesc         = newDesc("sensor_active", "Whether a sensor is triggered", "sensor")
	stationActiveDesc  = newDesc("station_active", "Whether a station valve is open", "station", "name")
	stationDisableDesc = newDesc("station_disabled", "Whether a station is disabled", "station", "name")
	waterLevelDesc     = newDesc("water_level_percent", "Watering level (weather adjustment) in percent")
	queuePausedDesc    = newDesc("queue_paused", "Whether the station queue is paused")
	queueLengthDesc    = newDesc("queue_length", "Number of queued station runs")
	programsDesc       = newDesc("programs", "Number of stored programs")
	rebootCauseDesc    = newDesc("last_reboot_cause", "Code of the last reboot cause")
	lastRebootDesc     = newDesc("last_reboot_seconds", "Time of the last reboot")
	weatherErrorDesc   = newDesc("weather_error_code", "Result of the last weather call (0 is success)")
	flowCountDesc      = newDesc("flow_count", "Flow sensor pulse count in the current window")
	currentDesc        = newDesc("current_draw_milliamps", "Solenoid current draw")
	rssiDesc           = newDesc("rssi_dbm", "Wi-Fi signal strength")
)

// Collector implements prometheus.Collector. Every Collect issues one /ja
// request; nothing is cached between scrapes.
type Collector struct {
	source   Source
	password string
	timeout  time.Duration

	scrapeErrors *prometheus.CounterVec
}

// NewCollector creates a collector reading from source with password.
func NewCollector(source Source, password string, timeout time.Duration) *Collector {
	return &Collector{
		source:   source,
		password: password,
		timeout:  timeout,
		scrapeErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scrape_errors_total",
				Help:      "Failed /ja requests by reason",
			},
			[]string{"reason"},
		),
	}
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		upDesc, scrapeDurationDesc, infoDesc, deviceTimeDesc, enabledDesc,
		rainDelayDesc, rainDelayStopDesc, sensorDesc, stationActiveDesc,
		stationDisableDesc, waterLevelDesc, queuePausedDesc, queueLengthDesc,
		programsDesc, rebootCauseDesc, lastRebootDesc, weatherErrorDesc,
		flowCountDesc, currentDesc, rssiDesc,
	} {
		ch <- d
	}
	c.scrapeErrors.Describe(ch)
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ctx := context.Background()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	all, err := c.source.GetAll(ctx, c.password)
	elapsed := time.Since(start)

	ch <- prometheus.MustNewConstMetric(scrapeDurationDesc, prometheus.GaugeValue, elapsed.Seconds())

	if err != nil {
		logging.Error("Scrape failed", zap.Error(err), zap.Duration("elapsed", elapsed))
		c.scrapeErrors.WithLabelValues(errorReason(err)).Inc()
		c.scrapeErrors.Collect(ch)
		ch <- prometheus.MustNewConstMetric(upDesc, prometheus.GaugeValue, 0)
		return
	}

	logging.Debug("Scrape complete", zap.Duration("elapsed", elapsed))
	c.scrapeErrors.Collect(ch)
	ch <- prometheus.MustNewConstMetric(upDesc, prometheus.GaugeValue, 1)
	collectAggregate(ch, all)
}

func collectAggregate(ch chan<- prometheus.Metric, all *sprinkler.Aggregate) {
	gauge := func(desc *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, v, labels...)
	}

	cv, opts := &all.Settings, &all.Options

	gauge(infoDesc, 1, cv.DeviceName, opts.FirmwareVersion(), strconv.Itoa(opts.HardwareVersion), cv.MAC)
	gauge(deviceTimeDesc, float64(cv.Time))
	gauge(enabledDesc, boolValue(cv.IsEnabled()))
	gauge(rainDelayDesc, boolValue(cv.RainDelayActive()))
	gauge(rainDelayStopDesc, float64(cv.RainDelayEnd))
	gauge(sensorDesc, boolValue(cv.Sensor1Active()), "1")
	if cv.Sensor2 != nil {
		gauge(sensorDesc, boolValue(cv.Sensor2Active()), "2")
	}
	gauge(waterLevelDesc, float64(opts.WaterLevel))
	gauge(queuePausedDesc, boolValue(cv.QueuePaused()))
	gauge(queueLengthDesc, float64(cv.QueueLength))
	gauge(programsDesc, float64(all.Programs.NumPrograms))
	gauge(rebootCauseDesc, float64(cv.RebootCause))
	gauge(lastRebootDesc, float64(cv.LastReboot))
	gauge(weatherErrorDesc, float64(cv.WeatherError))
	gauge(flowCountDesc, float64(cv.FlowCount))
	if cv.Current != nil {
		gauge(currentDesc, float64(*cv.Current))
	}
	if cv.RSSI != nil {
		gauge(rssiDesc, float64(*cv.RSSI))
	}

	n := all.Status.NumStations
	if n == 0 {
		n = len(all.Status.Status)
	}
	for sid := 0; sid < n; sid++ {
		station := strconv.Itoa(sid + 1)
		name := all.Stations.Name(sid)
		gauge(stationActiveDesc, boolValue(all.Status.Active(sid)), station, name)
		gauge(stationDisableDesc, boolValue(sprinkler.StationBit(all.Stations.Disabled, sid)), station, name)
	}
}

func errorReason(err error) string {
	switch {
	case transport.IsTimeout(err):
		return "timeout"
	case transport.IsNetworkError(err):
		return "network"
	case transport.IsHTTPError(err):
		return "http"
	case transport.IsParseError(err):
		return "parse"
	default:
		return "other"
	}
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
