package bot

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// ParseRetryDelay extracts the wait requested by a 429 response.
// The JSON body's retry_after (seconds, fractional) wins over the
// Retry-After header; fallback is used when neither is a positive number.
func ParseRetryDelay(header http.Header, body []byte, fallback time.Duration) time.Duration {
	if gjson.ValidBytes(body) {
		if v := gjson.GetBytes(body, "retry_after"); v.Type == gjson.Number && v.Float() > 0 {
			return secondsToDuration(v.Float())
		}
	}

	if ra := strings.TrimSpace(header.Get("Retry-After")); ra != "" {
		if sec, err := strconv.ParseFloat(ra, 64); err == nil && sec > 0 {
			return secondsToDuration(sec)
		}
	}

	return fallback
}

// RetryDelay grows base by step for every attempt after the first and caps
// the result at maxDelay. attempt is zero based.
func RetryDelay(base time.Duration, attempt int, step, maxDelay time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := base + time.Duration(attempt)*step
	if maxDelay > 0 && d > maxDelay {
		return maxDelay
	}
	return d
}

func secondsToDuration(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}
