package sprinkler

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/muurk/opensprinkler/internal/logging"
	"github.com/muurk/opensprinkler/internal/transport"
)

// DefaultPort is the controller's default HTTP port.
const DefaultPort = 80

// Transport performs one GET round trip and decodes the JSON body into out.
// Implementations return an error for network failures and non-2xx
// statuses. *transport.HTTP is the production implementation.
type Transport interface {
	Get(ctx context.Context, rawURL string, query transport.Query, out any) error
}

// Client represents a connection to one OpenSprinkler controller.
// It holds no per-call state and may be used concurrently.
type Client struct {
	// BaseURL is the controller endpoint (e.g., "http://192.168.1.20")
	BaseURL string

	// Transport performs the requests
	Transport Transport
}

// NewClient creates a client for a controller
// host: Controller IP address or hostname (e.g., "192.168.1.20")
// port: Controller HTTP port (typically 80)
func NewClient(host string, port int) *Client {
	return NewClientWithURL(fmt.Sprintf("http://%s:%d", host, port))
}

// NewClientWithURL creates a client with a full base URL
// baseURL: Full base URL (e.g., "http://os-garden.local:8080")
func NewClientWithURL(baseURL string) *Client {
	return NewClientWithTransport(baseURL, transport.NewHTTP())
}

// NewClientWithTransport creates a client that sends every request through t.
func NewClientWithTransport(baseURL string, t Transport) *Client {
	return &Client{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		Transport: t,
	}
}

// SetTimeout sets the request timeout when the client uses the default HTTP
// transport. Other transports are left alone.
func (c *Client) SetTimeout(timeout time.Duration) {
	if h, ok := c.Transport.(*transport.HTTP); ok {
		h.SetTimeout(timeout)
	}
}

func (c *Client) get(ctx context.Context, path string, query transport.Query, out any) error {
	return c.Transport.Get(ctx, c.BaseURL+path, query, out)
}

// read issues an authenticated read and decodes the body into out.
func (c *Client) read(ctx context.Context, path, pw string, params transport.Query, out any) error {
	return c.get(ctx, path, withPassword(pw, params), out)
}

// command issues an authenticated mutation and wraps its result code.
func (c *Client) command(ctx context.Context, path, pw string, params transport.Query) (*CommandResult, error) {
	var result CommandResult
	if err := c.get(ctx, path, withPassword(pw, params), &result); err != nil {
		return nil, err
	}
	logging.LogCommandResult(path, int(result.Code), result.Message())
	return &result, nil
}

func withPassword(pw string, params transport.Query) transport.Query {
	q := make(transport.Query, 0, len(params)+1)
	q.Add("pw", pw)
	return append(q, params...)
}

func pidQuery(pid int) transport.Query {
	var q transport.Query
	q.AddInt("pid", pid)
	return q
}

// GetControllerVariables calls /jc.
func (c *Client) GetControllerVariables(ctx context.Context, pw string) (*ControllerVariables, error) {
	var cv ControllerVariables
	if err := c.read(ctx, "/jc", pw, nil, &cv); err != nil {
		return nil, err
	}
	return &cv, nil
}

// SetControllerVariables calls /cv. See ControllerVariablesUpdate for how
// en is always sent.
func (c *Client) SetControllerVariables(ctx context.Context, pw string, update ControllerVariablesUpdate) (*CommandResult, error) {
	return c.command(ctx, "/cv", pw, update.ToQuery())
}

// GetOptions calls /jo.
func (c *Client) GetOptions(ctx context.Context, pw string) (*Options, error) {
	var opts Options
	if err := c.read(ctx, "/jo", pw, nil, &opts); err != nil {
		return nil, err
	}
	return &opts, nil
}

// SetPassword calls /sp. npw and cpw are the new password and its
// confirmation, both already hashed (see HashPassword).
func (c *Client) SetPassword(ctx context.Context, pw, npw, cpw string) (*CommandResult, error) {
	var q transport.Query
	q.Add("npw", npw)
	q.Add("cpw", cpw)
	return c.command(ctx, "/sp", pw, q)
}

// GetStationNamesAndAttributes calls /jn.
func (c *Client) GetStationNamesAndAttributes(ctx context.Context, pw string) (*StationNamesAndAttributes, error) {
	var sn StationNamesAndAttributes
	if err := c.read(ctx, "/jn", pw, nil, &sn); err != nil {
		return nil, err
	}
	return &sn, nil
}

// GetSpecialStationData calls /je.
func (c *Client) GetSpecialStationData(ctx context.Context, pw string) (SpecialStationData, error) {
	var data SpecialStationData
	if err := c.read(ctx, "/je", pw, nil, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// SetStationNamesAndAttributes calls /cs.
func (c *Client) SetStationNamesAndAttributes(ctx context.Context, pw string, update StationAttributesUpdate) (*CommandResult, error) {
	return c.command(ctx, "/cs", pw, update.ToQuery())
}

// GetStationStatus calls /js.
func (c *Client) GetStationStatus(ctx context.Context, pw string) (*StationStatus, error) {
	var st StationStatus
	if err := c.read(ctx, "/js", pw, nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// ManualStationRun calls /cm to open or close one station.
func (c *Client) ManualStationRun(ctx context.Context, pw string, run StationRun) (*CommandResult, error) {
	return c.command(ctx, "/cm", pw, run.ToQuery())
}

// ManualStartProgram calls /mp.
func (c *Client) ManualStartProgram(ctx context.Context, pw string, run ProgramRun) (*CommandResult, error) {
	return c.command(ctx, "/mp", pw, run.ToQuery())
}

// GetPrograms calls /jp.
func (c *Client) GetPrograms(ctx context.Context, pw string) (*ProgramData, error) {
	var pd ProgramData
	if err := c.read(ctx, "/jp", pw, nil, &pd); err != nil {
		return nil, err
	}
	return &pd, nil
}

// ChangeProgram calls /cp to add (pid -1) or modify a program.
func (c *Client) ChangeProgram(ctx context.Context, pw string, change ProgramChange) (*CommandResult, error) {
	return c.command(ctx, "/cp", pw, change.ToQuery())
}

// DeleteProgram calls /dp. pid -1 deletes every program.
func (c *Client) DeleteProgram(ctx context.Context, pw string, pid int) (*CommandResult, error) {
	return c.command(ctx, "/dp", pw, pidQuery(pid))
}

// MoveProgramUp calls /up.
func (c *Client) MoveProgramUp(ctx context.Context, pw string, pid int) (*CommandResult, error) {
	return c.command(ctx, "/up", pw, pidQuery(pid))
}

// StartRunOnceProgram calls /cr.
func (c *Client) StartRunOnceProgram(ctx context.Context, pw string, prog RunOnceProgram) (*CommandResult, error) {
	return c.command(ctx, "/cr", pw, prog.ToQuery())
}

// GetLogData calls /jl. The query is passed through as given; mixing
// start/end with hist is left to the controller.
func (c *Client) GetLogData(ctx context.Context, pw string, query LogQuery) (LogData, error) {
	var data LogData
	if err := c.read(ctx, "/jl", pw, query.ToQuery(), &data); err != nil {
		return nil, err
	}
	return data, nil
}

// DeleteLogData calls /dl.
func (c *Client) DeleteLogData(ctx context.Context, pw string, day LogDay) (*CommandResult, error) {
	var q transport.Query
	q.Add("day", day.String())
	return c.command(ctx, "/dl", pw, q)
}

// ChangeJavascriptURL calls /cu.
func (c *Client) ChangeJavascriptURL(ctx context.Context, pw, jsp string) (*CommandResult, error) {
	var q transport.Query
	q.Add("jsp", jsp)
	return c.command(ctx, "/cu", pw, q)
}

// Aggregate is the /ja response: /jc, /jo, /jn, /js and /jp in one body.
type Aggregate struct {
	Settings ControllerVariables       `json:"settings"`
	Options  Options                   `json:"options"`
	Stations StationNamesAndAttributes `json:"stations"`
	Status   StationStatus             `json:"status"`
	Programs ProgramData               `json:"programs"`
}

// GetAll calls /ja, which returns every read snapshot in a single request.
func (c *Client) GetAll(ctx context.Context, pw string) (*Aggregate, error) {
	var all Aggregate
	if err := c.read(ctx, "/ja", pw, nil, &all); err != nil {
		return nil, err
	}
	return &all, nil
}

// PauseQueue calls /pq.
func (c *Client) PauseQueue(ctx context.Context, pw string, pause QueuePause) (*CommandResult, error) {
	return c.command(ctx, "/pq", pw, pause.ToQuery())
}

// GetDebugPrintout calls /db. It takes no password and its body varies by
// firmware, so it is returned undecoded.
func (c *Client) GetDebugPrintout(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/db", nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
