package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"detailbook/internal/domain"
)

const (
	defaultPort            = "8080"
	defaultJWTTTL          = "24h"
	defaultBufferMinutes   = 60
	defaultWindowDays      = 14
	defaultPaymentDeadline = "48h"
	defaultJWTSecret       = "change-me-jwt-secret"
)

type Config struct {
	Port        string
	DatabaseURL string

	JWTSecret string
	JWTTTL    time.Duration

	// Minimum lead time before a slot start that still permits same-day booking.
	BufferMinutes int
	// Default customer-facing availability window, in days from today.
	BookingWindowDays int
	// How long a processing booking may stay unpaid.
	PaymentDeadline time.Duration

	Roles RolePolicy
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", defaultPort),
		DatabaseURL:       strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:         strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret)),
		BufferMinutes:     defaultBufferMinutes,
		BookingWindowDays: defaultWindowDays,
		Roles:             NewRolePolicy(splitList(os.Getenv("ADMIN_EMAILS")), splitList(os.Getenv("SUPER_ADMIN_EMAILS"))),
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	var err error
	cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL)
	if err != nil {
		return nil, err
	}
	cfg.PaymentDeadline, err = parseDurationEnv("PAYMENT_DEADLINE", defaultPaymentDeadline)
	if err != nil {
		return nil, err
	}

	if v := strings.TrimSpace(os.Getenv("BOOKING_BUFFER_MINUTES")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid BOOKING_BUFFER_MINUTES: %q", v)
		}
		cfg.BufferMinutes = n
	}
	if v := strings.TrimSpace(os.Getenv("BOOKING_WINDOW_DAYS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid BOOKING_WINDOW_DAYS: %q", v)
		}
		cfg.BookingWindowDays = n
	}

	return cfg, nil
}

// RolePolicy decides the role assigned to a user at signup. The allowlist
// lives in one place instead of being duplicated at call sites.
type RolePolicy struct {
	admins      map[string]bool
	superAdmins map[string]bool
}

func NewRolePolicy(adminEmails, superAdminEmails []string) RolePolicy {
	p := RolePolicy{
		admins:      make(map[string]bool, len(adminEmails)),
		superAdmins: make(map[string]bool, len(superAdminEmails)),
	}
	for _, e := range adminEmails {
		p.admins[normalizeEmail(e)] = true
	}
	for _, e := range superAdminEmails {
		p.superAdmins[normalizeEmail(e)] = true
	}
	return p
}

func (p RolePolicy) RoleFor(email string) domain.Role {
	e := normalizeEmail(email)
	switch {
	case p.superAdmins[e]:
		return domain.RoleSuperAdmin
	case p.admins[e]:
		return domain.RoleAdmin
	default:
		return domain.RoleCustomer
	}
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDurationEnv(key, fallback string) (time.Duration, error) {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return d, nil
}
