package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"juriscope/internal/util"
)

type ErrorType string

const (
	ErrorQuota     ErrorType = "quota"
	ErrorRate      ErrorType = "rate"
	ErrorTransient ErrorType = "transient"
	ErrorPermanent ErrorType = "permanent"
	ErrorContext   ErrorType = "context"
)

func ClassifyError(err error) ErrorType {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, util.ErrQuotaExhausted):
		return ErrorQuota
	case errors.Is(err, util.ErrRateLimited):
		return ErrorRate
	case errors.Is(err, util.ErrContextTooLong):
		return ErrorContext
	case errors.Is(err, util.ErrTransient), errors.Is(err, context.DeadlineExceeded):
		return ErrorTransient
	case errors.Is(err, util.ErrPermanent):
		return ErrorPermanent
	}
	e := strings.ToLower(err.Error())
	switch {
	case strings.Contains(e, "quota"), strings.Contains(e, "credit"), strings.Contains(e, "resource_exhausted"):
		return ErrorQuota
	case strings.Contains(e, "rate limit"), strings.Contains(e, "rate_limit"), strings.Contains(e, "ratelimit"),
		strings.Contains(e, "too many requests"), strings.Contains(e, "429"):
		return ErrorRate
	case strings.Contains(e, "context length"), strings.Contains(e, "too long"), strings.Contains(e, "maximum context"):
		return ErrorContext
	case strings.Contains(e, "timeout"), strings.Contains(e, "temporarily"), strings.Contains(e, "unavailable"),
		strings.Contains(e, " 500"), strings.Contains(e, " 502"), strings.Contains(e, " 503"), strings.Contains(e, "connection refused"):
		return ErrorTransient
	default:
		return ErrorPermanent
	}
}

// Failover reports whether the next provider should be tried after t.
func Failover(t ErrorType) bool {
	return t == ErrorQuota || t == ErrorRate || t == ErrorTransient
}

// Cooldown reports whether a provider should be parked after t.
func Cooldown(t ErrorType) bool {
	return t == ErrorQuota || t == ErrorRate
}

// statusError maps an HTTP failure from a provider onto the util sentinels.
func statusError(provider string, code int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if len(msg) > 300 {
		msg = msg[:300]
	}
	var base error
	switch {
	case code == 429 && strings.Contains(strings.ToLower(msg), "quota"):
		base = util.ErrQuotaExhausted
	case code == 429:
		base = util.ErrRateLimited
	case code == 402:
		base = util.ErrQuotaExhausted
	case code >= 500:
		base = util.ErrTransient
	default:
		base = util.ErrPermanent
	}
	return fmt.Errorf("%s generate error %d: %s: %w", provider, code, msg, base)
}
