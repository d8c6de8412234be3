package conf

import (
	"encoding/json"
	"fmt"
	"time"
)

// Bootstrap is the root of configs/config.yaml.
type Bootstrap struct {
	Server   Server   `json:"server"`
	Data     Data     `json:"data"`
	Referral Referral `json:"referral"`
	Auth     Auth     `json:"auth"`
	Log      Log      `json:"log"`
}

type Server struct {
	HTTP HTTP `json:"http"`
	GRPC GRPC `json:"grpc"`
}

type HTTP struct {
	Addr      string   `json:"addr"`
	Timeout   Duration `json:"timeout"`
	RateLimit int      `json:"rate_limit"` // requests per minute per client IP
}

type GRPC struct {
	Addr    string   `json:"addr"`
	Timeout Duration `json:"timeout"`
}

type Data struct {
	Database Database `json:"database"`
	Redis    Redis    `json:"redis"`
	Outbox   Outbox   `json:"outbox"`
}

type Database struct {
	Driver string `json:"driver"` // sqlite or postgres
	Source string `json:"source"`
}

type Redis struct {
	Addr     string `json:"addr"` // empty disables the resolver cache
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type Outbox struct {
	PollInterval Duration `json:"poll_interval"`
	BatchSize    int      `json:"batch_size"`
}

type Referral struct {
	IPHashSalt       string   `json:"ip_hash_salt"`
	DedupWindow      Duration `json:"dedup_window"`
	OperationTimeout Duration `json:"operation_timeout"`
	CodeLength       int      `json:"code_length"`
	CodeMaxAttempts  int      `json:"code_max_attempts"`
	LandingURL       string   `json:"landing_url"`
}

type Auth struct {
	ServiceTokenSecret string `json:"service_token_secret"` // empty disables service auth
}

type Log struct {
	Level  string `json:"level"`
	Format string `json:"format"` // json or console
}

// Duration decodes either a Go duration string ("1.5s") or integer nanoseconds.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		*d = Duration(time.Duration(v))
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		*d = Duration(parsed)
	case nil:
		*d = 0
	default:
		return fmt.Errorf("invalid duration %v", raw)
	}
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Std returns d as a time.Duration, or fallback when d is unset.
func (d Duration) Std(fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return time.Duration(d)
}
