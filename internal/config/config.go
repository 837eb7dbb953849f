package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string

	// DB
	DBPath string // e.g. "./data/parkgate.db"

	// Gate hardware bridge (ser2net-style TCP endpoint of the serial line)
	GateAddr string

	// Plate recognition
	PlateRegion string // region marker anchoring a candidate, e.g. "RA"
	VoteSize    int    // candidates per plurality vote
	IdleClear   time.Duration
	ProximityCm float64

	// Access policy
	Cooldown  time.Duration
	Freshness time.Duration

	// Payment
	RatePerMinute  int64
	ReadyTimeout   time.Duration
	ConfirmTimeout time.Duration

	// Actuation
	GateHold     time.Duration
	PaymentBurst time.Duration
	StaleBurst   time.Duration
}

// FromEnv builds the configuration from PARKGATE_* variables.
//
// Zero and negative values are not honored: component constructors coerce
// them back to the built-in defaults, so a tunable like the entry cooldown
// cannot be disabled by setting it to 0. The smallest configurable value
// for the duration tunables is 1 second.
func FromEnv() Config {
	// A local .env is a dev convenience; absence is not an error.
	_ = godotenv.Load()

	return Config{
		HTTPAddr: getenvDefault("PARKGATE_HTTP_ADDR", ":8080"),
		DBPath:   getenvDefault("PARKGATE_DB_PATH", "./data/parkgate.db"),
		GateAddr: getenvDefault("PARKGATE_GATE_ADDR", "127.0.0.1:3333"),

		PlateRegion: getenvDefault("PARKGATE_PLATE_REGION", "RA"),
		VoteSize:    getenvInt("PARKGATE_VOTE_SIZE", 3),
		IdleClear:   getenvSeconds("PARKGATE_IDLE_CLEAR_S", 2),
		ProximityCm: getenvFloat("PARKGATE_PROXIMITY_CM", 50),

		Cooldown:  getenvSeconds("PARKGATE_COOLDOWN_S", 300),
		Freshness: getenvSeconds("PARKGATE_FRESHNESS_S", 300),

		RatePerMinute:  int64(getenvInt("PARKGATE_RATE_PER_MINUTE", 5)),
		ReadyTimeout:   getenvSeconds("PARKGATE_READY_TIMEOUT_S", 5),
		ConfirmTimeout: getenvSeconds("PARKGATE_CONFIRM_TIMEOUT_S", 10),

		GateHold:     getenvSeconds("PARKGATE_GATE_HOLD_S", 15),
		PaymentBurst: getenvSeconds("PARKGATE_PAYMENT_BURST_S", 3),
		StaleBurst:   getenvSeconds("PARKGATE_STALE_BURST_S", 5),
	}
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func getenvFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return def
	}
	return f
}

func getenvSeconds(key string, def int) time.Duration {
	return time.Duration(getenvInt(key, def)) * time.Second
}
