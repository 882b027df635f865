package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"

	"cfclient/mapdata"
)

type Settings struct {
	ViewWidth     int  `json:"viewWidth"`
	ViewHeight    int  `json:"viewHeight"`
	FogSize       int  `json:"fogSize"`
	PixelLighting bool `json:"pixelLighting"`
	MapScroll     bool `json:"mapScroll"`
	ReplayFPS     int  `json:"replayFPS"`
	Jobs          int  `json:"jobs"`
	ServerPort    int  `json:"serverPort"`
	Color         bool `json:"color"`
	Debug         bool `json:"debug"`

	// FaceSizes maps face ids to their footprint in tiles.
	FaceSizes     map[string][2]int `json:"faceSizes"`
	FaceCacheSize int               `json:"faceCacheSize"`
}

var defaultSettings = Settings{
	ViewWidth:     25,
	ViewHeight:    25,
	FogSize:       mapdata.DefaultFogSize,
	PixelLighting: false,
	MapScroll:     true,
	ReplayFPS:     0,
	Jobs:          4,
	ServerPort:    13327,
	Color:         true,
	FaceCacheSize: 512,
}

var gs = defaultSettings

// loadSettings reads path over the defaults. A missing file is not an
// error.
func loadSettings(path string) (Settings, error) {
	s := defaultSettings
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, err
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return defaultSettings, fmt.Errorf("parse %s: %w", path, err)
	}
	return s, nil
}

func saveSettings(path string, s Settings) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		log.Printf("save settings: %v", err)
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Printf("save settings: %v", err)
	}
}

// faceSizer builds the footprint source for map sessions. Bad entries are
// logged and skipped.
func (s Settings) faceSizer() mapdata.FaceSizer {
	table := mapdata.FaceTable{}
	for k, v := range s.FaceSizes {
		id, err := strconv.ParseUint(k, 10, 16)
		if err != nil {
			logError("settings: face size key %q: %v", k, err)
			continue
		}
		table[uint16(id)] = mapdata.Point{X: v[0], Y: v[1]}
	}
	return mapdata.NewCachedSizer(table, s.FaceCacheSize)
}
