// Package config loads the process configuration from the environment and
// the rooms file. Both are read once at startup and treated as immutable.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/mitchellh/mapstructure"
)

type Config struct {
	SlackToken  string `env:"SLACK_TOKEN,required,notEmpty"`
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// BotSlackID is resolved at connect time when empty.
	BotSlackID string `env:"BOT_SLACK_ID"`
	BotName    string `env:"BOT_NAME" envDefault:"fetchbot"`

	HTTPPort  string `env:"HTTP_PORT" envDefault:"8080"`
	RoomsFile string `env:"ROOMS_FILE" envDefault:"rooms.json"`

	// SendRatePerSecond throttles outbound Slack messages.
	SendRatePerSecond float64 `env:"SEND_RATE_PER_SECOND" envDefault:"1"`
}

// Room is one channel the bot runs standups in.
type Room struct {
	Name        string   `json:"name"`
	Channel     string   `json:"channel"`
	Admins      []string `json:"admins"`
	KickoffCron string   `json:"kickoffCron"`
	Timezone    string   `json:"timezone"`
}

type Rooms struct {
	Rooms []Room `json:"rooms"`
}

// Load reads the Config from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}

// LoadRooms reads and decodes the rooms file.
func LoadRooms(path string) (*Rooms, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rooms file: %w", err)
	}

	doc := map[string]interface{}{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing rooms file: %w", err)
	}

	rooms := &Rooms{}
	if err := decodeWithJsonTags(doc, rooms); err != nil {
		return nil, fmt.Errorf("decoding rooms file: %w", err)
	}
	return rooms, nil
}

// ByChannel finds the room for a channel name.
func (r *Rooms) ByChannel(name string) *Room {
	for i := range r.Rooms {
		if r.Rooms[i].Channel == name {
			return &r.Rooms[i]
		}
	}
	return nil
}

// AdminIDs collects the admin Slack IDs across all rooms.
func (r *Rooms) AdminIDs() []string {
	seen := map[string]bool{}
	ids := []string{}
	for _, room := range r.Rooms {
		for _, id := range room.Admins {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

func decodeWithJsonTags(input interface{}, output interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      output,
		TagName:     "json",
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}
