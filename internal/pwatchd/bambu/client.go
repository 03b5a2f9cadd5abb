// Package bambu maintains MQTT links to Bambu Lab printers on the LAN.
//
// Each printer runs its own MQTT broker on port 8883 behind a
// self-signed certificate. The daemon connects as user "bblp" with the
// printer's access code, subscribes to device/<serial>/report and asks
// for a full state push. Subsequent reports are incremental.
package bambu

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/printwatch/printwatch/api/types/v1alpha1"
	"github.com/printwatch/printwatch/internal/pwatchd/errors"
	"github.com/printwatch/printwatch/internal/pwatchd/hms"
)

// ClientConfig holds everything needed to reach one printer
type ClientConfig struct {
	IPAddress    string
	SerialNumber string
	AccessCode   string
	Model        string

	Port           int
	Username       string
	KeepAlive      time.Duration
	ConnectTimeout time.Duration

	// Trace enables wire-level logging of every payload crossing the
	// link. Verbose; meant for debugging report parsing against real
	// devices.
	Trace bool
}

// JobUpdate describes a print start or completion detected from state
// transitions in the report stream
type JobUpdate struct {
	JobName string
	Failed  bool
}

// Events carries the callbacks a Client fires as reports arrive. All
// callbacks are optional and are invoked from the MQTT receive
// goroutine, so they must not block.
type Events struct {
	// OnSnapshot fires after every applied report with the merged state
	OnSnapshot func(v1alpha1.TelemetrySnapshot)
	// OnPrintStart fires when the device transitions into RUNNING
	OnPrintStart func(JobUpdate)
	// OnPrintDone fires when a running job reaches FINISH or FAILED
	OnPrintDone func(JobUpdate)
	// OnHMS fires when codes appear that were not in the previous report
	OnHMS func([]hms.Error)
	// OnLinkUp fires when the MQTT session is established
	OnLinkUp func()
	// OnLinkDown fires when the MQTT session is lost
	OnLinkDown func(error)
}

// Client is the link to a single printer
type Client struct {
	cfg    ClientConfig
	events Events
	logger *slog.Logger
	trace  zerolog.Logger

	conn mqtt.Client

	mu        sync.Mutex
	snap      v1alpha1.TelemetrySnapshot
	prevState string
	prevJob   string
	prevCodes map[string]struct{}
}

// NewClient creates a client for one printer. Connect must be called
// before reports arrive.
func NewClient(cfg ClientConfig, events Events, logger *slog.Logger) *Client {
	if cfg.Port == 0 {
		cfg.Port = 8883
	}
	if cfg.Username == "" {
		cfg.Username = "bblp"
	}
	if cfg.KeepAlive == 0 {
		cfg.KeepAlive = 30 * time.Second
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}

	trace := zerolog.Nop()
	if cfg.Trace {
		trace = zerolog.New(os.Stdout).With().Timestamp().
			Str("component", "bambu-link").
			Str("serial", cfg.SerialNumber).
			Logger()
	}

	return &Client{
		cfg:    cfg,
		events: events,
		logger: logger.With(
			"serial", cfg.SerialNumber,
			"address", cfg.IPAddress,
		),
		trace:     trace,
		prevCodes: make(map[string]struct{}),
	}
}

func (c *Client) reportTopic() string {
	return fmt.Sprintf("device/%s/report", c.cfg.SerialNumber)
}

func (c *Client) requestTopic() string {
	return fmt.Sprintf("device/%s/request", c.cfg.SerialNumber)
}

// Connect dials the printer's broker and subscribes to its report
// topic. The session auto-reconnects until Disconnect is called.
func (c *Client) Connect() error {
	const op = "BambuClient.Connect"

	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("ssl://%s:%d", c.cfg.IPAddress, c.cfg.Port)).
		SetClientID(fmt.Sprintf("pwatchd-%s", c.cfg.SerialNumber)).
		SetUsername(c.cfg.Username).
		SetPassword(c.cfg.AccessCode).
		SetKeepAlive(c.cfg.KeepAlive).
		SetConnectTimeout(c.cfg.ConnectTimeout).
		SetAutoReconnect(true).
		SetOrderMatters(true)

	// Printers present self-signed certificates
	opts.SetTLSConfig(&tls.Config{
		InsecureSkipVerify: true, // #nosec G402
	})

	opts.SetOnConnectHandler(func(conn mqtt.Client) {
		c.logger.Info("printer link established")

		token := conn.Subscribe(c.reportTopic(), 0, c.handleMessage)
		if !token.WaitTimeout(c.cfg.ConnectTimeout) {
			c.logger.Error("report subscription timed out")
			return
		}
		if err := token.Error(); err != nil {
			c.logger.Error("report subscription failed", "error", err)
			return
		}

		// Incremental reports only make sense against a full baseline
		c.RequestPushAll()

		c.mu.Lock()
		c.snap.Connected = true
		c.mu.Unlock()

		if c.events.OnLinkUp != nil {
			c.events.OnLinkUp()
		}
	})

	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		c.logger.Warn("printer link lost", "error", err)

		c.mu.Lock()
		c.snap.Connected = false
		c.mu.Unlock()

		if c.events.OnLinkDown != nil {
			c.events.OnLinkDown(err)
		}
	})

	c.conn = mqtt.NewClient(opts)

	token := c.conn.Connect()
	if !token.WaitTimeout(c.cfg.ConnectTimeout) {
		return errors.NewError("LINK_TIMEOUT",
			fmt.Sprintf("Timed out connecting to printer at %s", c.cfg.IPAddress),
			op, errors.ErrLinkDown)
	}
	if err := token.Error(); err != nil {
		return errors.NewError("LINK_FAILED",
			fmt.Sprintf("Failed to connect to printer at %s", c.cfg.IPAddress),
			op, err)
	}
	return nil
}

// Disconnect tears the link down
func (c *Client) Disconnect() {
	if c.conn != nil && c.conn.IsConnected() {
		c.conn.Disconnect(250)
	}
	c.mu.Lock()
	c.snap.Connected = false
	c.mu.Unlock()
	c.logger.Info("printer link closed")
}

// Connected reports whether the MQTT session is up
func (c *Client) Connected() bool {
	return c.conn != nil && c.conn.IsConnectionOpen()
}

// Snapshot returns the current merged telemetry state
func (c *Client) Snapshot() v1alpha1.TelemetrySnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// RequestPushAll asks the printer to publish its complete state
func (c *Client) RequestPushAll() {
	if c.conn == nil {
		return
	}
	c.conn.Publish(c.requestTopic(), 0, false, pushAllRequest)
}

// SendCommand publishes an arbitrary command document on the request
// topic
func (c *Client) SendCommand(command interface{}) error {
	const op = "BambuClient.SendCommand"

	if c.conn == nil || !c.conn.IsConnectionOpen() {
		return errors.NewError("LINK_DOWN", "Printer link is not connected", op, errors.ErrLinkDown)
	}

	payload, err := json.Marshal(command)
	if err != nil {
		return errors.NewError("INVALID_COMMAND", "Failed to encode command", op, err)
	}

	c.trace.Debug().
		Str("topic", c.requestTopic()).
		Bytes("payload", payload).
		Msg("command published")

	token := c.conn.Publish(c.requestTopic(), 0, false, payload)
	if !token.WaitTimeout(c.cfg.ConnectTimeout) {
		return errors.NewError("PUBLISH_TIMEOUT", "Timed out publishing command", op, errors.ErrLinkDown)
	}
	if err := token.Error(); err != nil {
		return errors.NewError("PUBLISH_FAILED", "Failed to publish command", op, err)
	}
	return nil
}

func (c *Client) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	c.trace.Debug().
		Str("topic", msg.Topic()).
		Bytes("payload", msg.Payload()).
		Msg("report received")

	var report reportMessage
	if err := json.Unmarshal(msg.Payload(), &report); err != nil {
		c.logger.Debug("discarding malformed report", "error", err)
		return
	}
	if report.Print == nil {
		return
	}
	c.applyReport(report.Print)
}

// applyReport merges one incremental report into the snapshot and
// derives job and HMS events from the transition.
func (c *Client) applyReport(r *printReport) {
	c.mu.Lock()

	snap := &c.snap
	snap.Connected = true

	if r.GcodeState != nil {
		snap.GcodeState = *r.GcodeState
	}
	if r.GcodeFile != nil && *r.GcodeFile != "" {
		snap.CurrentJob = *r.GcodeFile
	}
	// The subtask name is the human-readable job name and wins over
	// the gcode file name when both are present
	if r.SubtaskName != nil && *r.SubtaskName != "" {
		snap.CurrentJob = *r.SubtaskName
	}
	if r.Percent != nil {
		snap.Progress = float64(*r.Percent)
	}
	if r.RemainingTime != nil {
		snap.RemainingTime = *r.RemainingTime
	}
	if r.LayerNum != nil {
		snap.Layer = *r.LayerNum
	}
	if r.TotalLayerNum != nil {
		snap.TotalLayers = *r.TotalLayerNum
	}
	c.applyTemperatures(r)

	var raised []hms.Error
	if r.hmsPresent {
		active := hms.FromReport(r.HMS)
		snap.HMSErrors = hms.ToAPI(active, c.cfg.Model)

		seen := make(map[string]struct{}, len(active))
		for _, e := range active {
			key := e.Code.String()
			seen[key] = struct{}{}
			if _, ok := c.prevCodes[key]; !ok {
				raised = append(raised, e)
			}
		}
		c.prevCodes = seen
	}

	started, finished := c.jobTransition(snap)

	c.prevState = snap.GcodeState
	if snap.CurrentJob != "" {
		c.prevJob = snap.CurrentJob
	}

	out := *snap
	c.mu.Unlock()

	if started != nil && c.events.OnPrintStart != nil {
		c.events.OnPrintStart(*started)
	}
	if finished != nil && c.events.OnPrintDone != nil {
		c.events.OnPrintDone(*finished)
	}
	if len(raised) > 0 && c.events.OnHMS != nil {
		c.events.OnHMS(raised)
	}
	if c.events.OnSnapshot != nil {
		c.events.OnSnapshot(out)
	}
}

func (c *Client) applyTemperatures(r *printReport) {
	set := func(name string, v *float64) {
		if v == nil {
			return
		}
		if c.snap.Temperatures == nil {
			c.snap.Temperatures = make(map[string]float64)
		}
		c.snap.Temperatures[name] = *v
	}

	set("bed", r.BedTemper)
	set("bed_target", r.BedTargetTemper)
	set("nozzle", r.NozzleTemper)
	set("nozzle_target", r.NozzleTarget)
	set("nozzle_2", r.NozzleTemper2)
	set("nozzle_2_target", r.NozzleTarget2)
	set("chamber", r.ChamberTemper)
}

// jobTransition inspects the state change carried by the last report.
// A job starts when the device enters RUNNING, or when the job name
// changes while it stays RUNNING. A job ends when RUNNING gives way to
// FINISH or FAILED.
func (c *Client) jobTransition(snap *v1alpha1.TelemetrySnapshot) (started, finished *JobUpdate) {
	if snap.GcodeState == "RUNNING" && snap.CurrentJob != "" {
		if c.prevState != "RUNNING" {
			started = &JobUpdate{JobName: snap.CurrentJob}
		} else if c.prevJob != "" && snap.CurrentJob != c.prevJob {
			started = &JobUpdate{JobName: snap.CurrentJob}
		}
	}

	if c.prevState == "RUNNING" && (snap.GcodeState == "FINISH" || snap.GcodeState == "FAILED") {
		name := c.prevJob
		if name == "" {
			name = snap.CurrentJob
		}
		finished = &JobUpdate{
			JobName: name,
			Failed:  snap.GcodeState == "FAILED",
		}
	}
	return started, finished
}
