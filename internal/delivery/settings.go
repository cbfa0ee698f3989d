package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// SettingsSource loads the externally managed delivery settings. ok is false
// when no settings exist, which disables the gate.
type SettingsSource interface {
	DeliverySettings(ctx context.Context) (s Settings, ok bool, err error)
}

// LoadGate builds a gate from src. Missing or unusable settings give a
// disabled gate. A failing source is an error so a broken store never admits
// orders blindly.
func LoadGate(ctx context.Context, src SettingsSource) (Gate, error) {
	if src == nil {
		return Disabled(), nil
	}
	s, ok, err := src.DeliverySettings(ctx)
	if err != nil {
		return Gate{}, err
	}
	if !ok {
		return Disabled(), nil
	}
	gate, err := NewGate(s)
	if err != nil {
		slog.WarnContext(ctx, "ignoring invalid delivery settings", "error", err)
		return Disabled(), nil
	}
	return gate, nil
}

// StaticSource serves settings fixed at startup, e.g. from the environment.
type StaticSource struct {
	settings Settings
	ok       bool
}

// NewStaticSource parses lat, lng and radius strings. Any empty value means
// the settings are absent.
func NewStaticSource(homeAddress, lat, lng, radius string) (*StaticSource, error) {
	if lat == "" || lng == "" || radius == "" {
		return &StaticSource{}, nil
	}
	s, err := parseSettings(homeAddress, lat, lng, radius)
	if err != nil {
		return nil, err
	}
	return &StaticSource{settings: s, ok: true}, nil
}

func (s *StaticSource) DeliverySettings(context.Context) (Settings, bool, error) {
	return s.settings, s.ok, nil
}

// RedisKey is the hash holding home_lat, home_lng, radius_miles and
// home_address.
const RedisKey = "delivery:settings"

// RedisSource reads the settings hash that the admin tooling writes. Values
// that do not parse are treated as absent.
type RedisSource struct {
	client *redis.Client
	key    string
}

func NewRedisSource(client *redis.Client) *RedisSource {
	return &RedisSource{client: client, key: RedisKey}
}

func (r *RedisSource) DeliverySettings(ctx context.Context) (Settings, bool, error) {
	fields, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return Settings{}, false, fmt.Errorf("delivery: read settings: %w", err)
	}

	lat, lng, radius := fields["home_lat"], fields["home_lng"], fields["radius_miles"]
	if lat == "" || lng == "" || radius == "" {
		return Settings{}, false, nil
	}

	s, err := parseSettings(fields["home_address"], lat, lng, radius)
	if err != nil {
		slog.WarnContext(ctx, "ignoring malformed delivery settings", "key", r.key, "error", err)
		return Settings{}, false, nil
	}
	return s, true, nil
}

func parseSettings(homeAddress, lat, lng, radius string) (Settings, error) {
	homeLat, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return Settings{}, fmt.Errorf("delivery: parse home lat %q: %w", lat, err)
	}
	homeLng, err := strconv.ParseFloat(lng, 64)
	if err != nil {
		return Settings{}, fmt.Errorf("delivery: parse home lng %q: %w", lng, err)
	}
	radiusMiles, err := strconv.ParseFloat(radius, 64)
	if err != nil {
		return Settings{}, fmt.Errorf("delivery: parse radius %q: %w", radius, err)
	}
	s := Settings{HomeAddress: homeAddress, Home: Point{Lat: homeLat, Lng: homeLng}, RadiusMiles: radiusMiles}
	return s, s.Validate()
}
