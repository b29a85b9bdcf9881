package sprinkler

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// MaxStationTimer is the longest manual station run accepted by /cm
	MaxStationTimer = 64800

	// MaxRainDelay is the longest rain delay in hours accepted by /cv
	MaxRainDelay = 32767

	// MaxPauseDuration is the longest queue pause in seconds
	MaxPauseDuration = 64800
)

// ValidationError is returned by the Validate functions. The client never
// validates on its own; the CLI calls these before sending a command.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Message
}

// NewValidationError creates a validation error
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// ValidateStationIndex checks sid against the number of stations.
// nstations <= 0 skips the upper bound.
func ValidateStationIndex(sid, nstations int) error {
	if sid < 0 {
		return NewValidationError(fmt.Sprintf("station index must be >= 0, got %d", sid))
	}
	if nstations > 0 && sid >= nstations {
		return NewValidationError(fmt.Sprintf("station index must be 0-%d, got %d", nstations-1, sid))
	}
	return nil
}

// ValidateStationTimer checks a /cm timer value (1-64800 seconds).
func ValidateStationTimer(seconds int) error {
	if seconds < 1 || seconds > MaxStationTimer {
		return NewValidationError(fmt.Sprintf("station timer must be 1-%d seconds, got %d", MaxStationTimer, seconds))
	}
	return nil
}

// ValidateRainDelay checks a /cv rain delay in hours. 0 clears the delay.
func ValidateRainDelay(hours int) error {
	if hours < 0 || hours > MaxRainDelay {
		return NewValidationError(fmt.Sprintf("rain delay must be 0-%d hours, got %d", MaxRainDelay, hours))
	}
	return nil
}

// ValidatePauseDuration checks a /pq duration.
func ValidatePauseDuration(seconds int) error {
	if seconds < 0 || seconds > MaxPauseDuration {
		return NewValidationError(fmt.Sprintf("pause duration must be 0-%d seconds, got %d", MaxPauseDuration, seconds))
	}
	return nil
}

// ValidateProgramIndex checks pid against the number of programs.
// allowAll permits -1 (every program, or a new program for /cp).
func ValidateProgramIndex(pid, nprogs int, allowAll bool) error {
	if pid == -1 && allowAll {
		return nil
	}
	if pid < 0 {
		return NewValidationError(fmt.Sprintf("program index must be >= 0, got %d", pid))
	}
	if nprogs >= 0 && pid >= nprogs {
		return NewValidationError(fmt.Sprintf("program index %d out of range (%d programs)", pid, nprogs))
	}
	return nil
}

// ValidateName checks a station or program name against the controller's
// length limit. maxlen <= 0 skips the length check.
func ValidateName(name string, maxlen int) error {
	if strings.TrimSpace(name) == "" {
		return NewValidationError("name cannot be empty")
	}
	if maxlen > 0 && len(name) > maxlen {
		return NewValidationError(fmt.Sprintf("name too long (max %d chars): %d chars", maxlen, len(name)))
	}
	return nil
}

// ValidateGroup checks a sequential group id (0-254) or ParallelGroup.
func ValidateGroup(group int) error {
	if group < 0 || group > ParallelGroup {
		return NewValidationError(fmt.Sprintf("group must be 0-%d, got %d", ParallelGroup, group))
	}
	return nil
}

// ValidateRunOnceDurations checks the per-station durations of a run-once
// program.
func ValidateRunOnceDurations(durations []int, nstations int) error {
	if len(durations) == 0 {
		return NewValidationError("run-once program needs at least one duration")
	}
	if nstations > 0 && len(durations) > nstations {
		return NewValidationError(fmt.Sprintf("got %d durations for %d stations", len(durations), nstations))
	}
	total := 0
	for i, d := range durations {
		if d < 0 || d > MaxStationTimer {
			return NewValidationError(fmt.Sprintf("duration for station %d must be 0-%d seconds, got %d", i, MaxStationTimer, d))
		}
		total += d
	}
	if total == 0 {
		return NewValidationError("run-once program has no non-zero durations")
	}
	return nil
}

// ValidateJavascriptURL checks the /cu value: an http(s) URL without
// a trailing slash.
func ValidateJavascriptURL(jsp string) error {
	if jsp == "" {
		return NewValidationError("javascript URL cannot be empty")
	}
	u, err := url.Parse(jsp)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return NewValidationError(fmt.Sprintf("javascript URL must be an http(s) URL, got %q", jsp))
	}
	if strings.HasSuffix(jsp, "/") {
		return NewValidationError("javascript URL must not end with '/'")
	}
	return nil
}

// ValidateNewPassword checks a new password and its confirmation before
// they are hashed.
func ValidateNewPassword(password, confirm string) error {
	if password == "" {
		return NewValidationError("password cannot be empty")
	}
	if password != confirm {
		return NewValidationError("password and confirmation do not match")
	}
	return nil
}
