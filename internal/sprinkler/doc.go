// Package sprinkler provides a typed client for the OpenSprinkler
// controller's HTTP query-string API.
//
// The controller exposes a GET-only API: every read and every mutation is a
// single request to a short path (/jc, /cv, /cs, ...) with parameters in the
// query string and a JSON body in the response. This package maps structured
// Go parameters onto that flat vocabulary and decodes the responses into
// typed snapshots.
//
// # Basic Usage
//
//	client := sprinkler.NewClient("192.168.1.20", 80)
//	pw := sprinkler.HashPassword("opendoor")
//
//	vars, err := client.GetControllerVariables(ctx, pw)
//	if err != nil {
//	    // transport failure: network, timeout or non-2xx
//	}
//	fmt.Println(vars.Summary())
//
// # Command Results
//
// Mutation endpoints answer {"result": n}. A non-success code is not a Go
// error; it is returned as a CommandResult so callers can inspect it:
//
//	res, err := client.ManualStationRun(ctx, pw, sprinkler.StationRun{
//	    StationID: 2,
//	    Enable:    true,
//	    Timer:     sprinkler.Int(600),
//	})
//	if err != nil {
//	    return err
//	}
//	if !res.IsSuccess() {
//	    fmt.Println(res.Message())
//	}
//
// CommandResult.Err converts a rejected command into a *CommandError for
// code that prefers Go error flow.
//
// # Parameter Encoding
//
// Every parameter struct has a ToQuery method that returns the ordered query
// the firmware expects. Optional values are pointers (see Int, Bool, String);
// a nil pointer means the parameter is not sent. Several endpoints have
// asymmetric rules (/cv always sends en, /cp and /pq pick one parameter set
// by priority); those rules live in the ToQuery methods.
//
// # Transport
//
// The Client delegates I/O to a Transport. NewClient and NewClientWithURL
// use transport.HTTP; tests and alternative stacks inject their own through
// NewClientWithTransport. Transport errors are returned unchanged. The client
// does not retry, cache or time out on its own.
//
// # Bit Fields
//
// The firmware packs per-station flags into one byte per 8-station board
// (masop, ignore_rain, stn_dis, ...). StationBit and SetStationBit address
// those bytes by station index, and StationAttributesBuilder produces a
// /cs update containing only the boards that changed.
package sprinkler
