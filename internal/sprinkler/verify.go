package sprinkler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/opensprinkler/internal/logging"
)

// VerificationOptions configures how an applied /cs update is checked
type VerificationOptions struct {
	// MaxRetries is the number of re-reads after the first one
	// Default: 3
	MaxRetries int

	// InitialDelay gives the controller time to write its flash
	// Default: 500ms
	InitialDelay time.Duration

	// RetryDelay is the delay between attempts
	// Default: 1s
	RetryDelay time.Duration

	// UseExponentialBackoff doubles RetryDelay after each attempt, up to
	// MaxRetryDelay
	UseExponentialBackoff bool

	// MaxRetryDelay caps the backoff
	// Default: 5s
	MaxRetryDelay time.Duration
}

// DefaultVerificationOptions returns the defaults used by the CLI
func DefaultVerificationOptions() *VerificationOptions {
	return &VerificationOptions{
		MaxRetries:            3,
		InitialDelay:          500 * time.Millisecond,
		RetryDelay:            1 * time.Second,
		UseExponentialBackoff: true,
		MaxRetryDelay:         5 * time.Second,
	}
}

// VerificationResult is the outcome of VerifyStationAttributes
type VerificationResult struct {
	Success  bool
	Attempts int

	// Actual is the last /jn snapshot read back
	Actual *StationNamesAndAttributes

	// Mismatches lists the fields that still differ after the last attempt
	Mismatches []string

	Err error
}

// VerifyStationAttributes re-reads /jn until every field in expected matches
// or the retries run out. Transport errors are retried like mismatches.
// Special station data is not part of /jn and is not checked.
func (c *Client) VerifyStationAttributes(ctx context.Context, pw string, expected StationAttributesUpdate, opts *VerificationOptions) *VerificationResult {
	if opts == nil {
		opts = DefaultVerificationOptions()
	}
	result := &VerificationResult{}

	if err := sleepCtx(ctx, opts.InitialDelay); err != nil {
		result.Err = err
		return result
	}

	delay := opts.RetryDelay
	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, delay); err != nil {
				result.Err = err
				return result
			}
			if opts.UseExponentialBackoff {
				delay *= 2
				if delay > opts.MaxRetryDelay {
					delay = opts.MaxRetryDelay
				}
			}
		}
		result.Attempts++

		actual, err := c.GetStationNamesAndAttributes(ctx, pw)
		if err != nil {
			result.Err = fmt.Errorf("attempt %d: failed to read stations: %w", result.Attempts, err)
			logging.Debug("Verification read failed", zap.Int("attempt", result.Attempts), zap.Error(err))
			continue
		}
		result.Actual = actual
		result.Mismatches = stationMismatches(expected, actual)

		if len(result.Mismatches) == 0 {
			result.Success = true
			result.Err = nil
			return result
		}
		logging.Debug("Station attributes not applied yet",
			zap.Int("attempt", result.Attempts),
			zap.Strings("mismatches", result.Mismatches),
		)
		result.Err = fmt.Errorf("verification failed after %d attempts: %s", result.Attempts, formatMismatches(result.Mismatches))
	}
	return result
}

// UpdateStationsAndVerify sends a /cs update and verifies it was applied.
// A rejected command is reported through Err without verifying.
func (c *Client) UpdateStationsAndVerify(ctx context.Context, pw string, update StationAttributesUpdate, opts *VerificationOptions) *VerificationResult {
	res, err := c.SetStationNamesAndAttributes(ctx, pw, update)
	if err != nil {
		return &VerificationResult{Err: fmt.Errorf("update failed: %w", err)}
	}
	if err := res.Err(); err != nil {
		return &VerificationResult{Err: err}
	}
	return c.VerifyStationAttributes(ctx, pw, update, opts)
}

func stationMismatches(expected StationAttributesUpdate, actual *StationNamesAndAttributes) []string {
	var mismatches []string

	for _, sid := range sortedKeys(expected.Names) {
		got := ""
		if sid < len(actual.Names) {
			got = actual.Names[sid]
		}
		if got != expected.Names[sid] {
			mismatches = append(mismatches, fmt.Sprintf("station %d name: expected %q, got %q", sid, expected.Names[sid], got))
		}
	}
	for _, sid := range sortedKeys(expected.Groups) {
		got := byteAt(actual.Groups, sid)
		if got != expected.Groups[sid] {
			mismatches = append(mismatches, fmt.Sprintf("station %d group: expected %s, got %s", sid, GroupName(expected.Groups[sid]), GroupName(got)))
		}
	}

	fields := []struct {
		name     string
		expected map[int]int
		actual   []int
	}{
		{"master1", expected.Master1, actual.Master1},
		{"master2", expected.Master2, actual.Master2},
		{"ignore_rain", expected.IgnoreRain, actual.IgnoreRain},
		{"ignore_sn1", expected.IgnoreSensor1, actual.IgnoreSensor1},
		{"ignore_sn2", expected.IgnoreSensor2, actual.IgnoreSensor2},
		{"stn_dis", expected.Disabled, actual.Disabled},
		{"stn_spe", expected.Special, actual.Special},
	}
	for _, f := range fields {
		for _, board := range sortedKeys(f.expected) {
			if got := byteAt(f.actual, board); got != f.expected[board] {
				mismatches = append(mismatches, fmt.Sprintf("%s board %d: expected %d, got %d", f.name, board, f.expected[board], got))
			}
		}
	}
	return mismatches
}

func byteAt(values []int, i int) int {
	if i < 0 || i >= len(values) {
		return 0
	}
	return values[i]
}

func formatMismatches(mismatches []string) string {
	switch len(mismatches) {
	case 0:
		return "none"
	case 1:
		return mismatches[0]
	}
	return fmt.Sprintf("%d mismatches: %s", len(mismatches), strings.Join(mismatches, "; "))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
