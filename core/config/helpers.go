package config

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

func addressOr(addr string, fallback common.Address) common.Address {
	if addr == "" {
		return fallback
	}
	return common.HexToAddress(addr)
}

func int64Or(v, fallback int64) int64 {
	if v <= 0 {
		return fallback
	}
	return v
}

func stringOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func parseDuration(v string, fallback time.Duration) (time.Duration, error) {
	if v == "" {
		return fallback, nil
	}
	return time.ParseDuration(v)
}
