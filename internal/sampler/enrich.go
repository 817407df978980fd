// Package sampler periodically reads the curated register set and
// derives the energy-flow, balance, and quality fields services
// downstream of the bridge expect.
package sampler

import (
	"math"
	"time"

	"github.com/nattery/edge-bridge/internal/registry"
)

// EnrichedSample is the full record handed to the publish sink on every
// tick: the raw register values plus every derived field.
type EnrichedSample struct {
	Raw                    map[string]float64
	EnergyFlow             string
	PowerBalance           float64
	BatteryStatus          string
	SystemEfficiency       *float64
	WorkingModeDescription string
	FaultDescription       string
	CollectionTime         time.Time
	CollectionCount        uint64
	DataQuality            string
}

// Enrich derives every field in EnrichedSample from a raw register
// reading and never panics on partial input. EnergyFlow, PowerBalance and
// BatteryStatus are always computed, reading an absent input as 0 (so an
// absent battery_soc grades as "critical"); they are not skipped.
// SystemEfficiency is set only when ac_power_input is present and
// positive, and the working-mode and fault descriptions only when their
// registers are present.
func Enrich(raw map[string]float64, catalog *registry.Catalog, collectionCount uint64) EnrichedSample {
	s := EnrichedSample{
		Raw:             raw,
		CollectionTime:  time.Now().UTC(),
		CollectionCount: collectionCount,
	}

	pvPower := raw["pv_power"]
	batteryPower := raw["battery_power"]
	loadPower := raw["load_power"]

	switch {
	case pvPower > 0 && batteryPower > 0:
		s.EnergyFlow = "pv_to_battery_and_load"
	case pvPower > 0 && batteryPower <= 0:
		s.EnergyFlow = "pv_to_load"
	case pvPower <= 0 && batteryPower < 0:
		s.EnergyFlow = "battery_to_load"
	default:
		s.EnergyFlow = "grid_to_load"
	}

	s.PowerBalance = pvPower + batteryPower - loadPower

	soc := raw["battery_soc"]
	switch {
	case soc > 90:
		s.BatteryStatus = "full"
	case soc > 50:
		s.BatteryStatus = "good"
	case soc > 20:
		s.BatteryStatus = "low"
	default:
		s.BatteryStatus = "critical"
	}

	if acIn := raw["ac_power_input"]; acIn > 0 {
		eff := math.Round((raw["ac_power_output"]/acIn)*100*100) / 100
		s.SystemEfficiency = &eff
	}

	if wm, ok := raw["working_mode"]; ok {
		s.WorkingModeDescription = registry.WorkingModeLabel(uint16(wm))
	}
	if fc, ok := raw["fault_code"]; ok {
		s.FaultDescription = registry.FaultDescription(uint16(fc))
	}

	s.DataQuality = assessDataQuality(raw)
	return s
}

// ToPayload flattens an EnrichedSample into the map publish.Sink expects.
func (s EnrichedSample) ToPayload() map[string]any {
	payload := make(map[string]any, len(s.Raw)+8)
	for k, v := range s.Raw {
		payload[k] = v
	}

	payload["energy_flow"] = s.EnergyFlow
	payload["power_balance"] = s.PowerBalance
	payload["battery_status"] = s.BatteryStatus
	if s.SystemEfficiency != nil {
		payload["system_efficiency"] = *s.SystemEfficiency
	}
	if s.WorkingModeDescription != "" {
		payload["working_mode_description"] = s.WorkingModeDescription
	}
	if s.FaultDescription != "" {
		payload["fault_description"] = s.FaultDescription
	}
	payload["collection_metadata"] = map[string]any{
		"collection_time":  s.CollectionTime.Format(time.RFC3339Nano),
		"collection_count": s.CollectionCount,
		"data_quality":     s.DataQuality,
	}
	return payload
}

// assessDataQuality grades a raw reading by completeness and
// plausibility.
func assessDataQuality(data map[string]float64) string {
	if len(data) == 0 {
		return "no_data"
	}

	for _, field := range []string{"battery_voltage", "battery_soc", "working_mode"} {
		if _, ok := data[field]; !ok {
			return "poor"
		}
	}

	if v := data["battery_voltage"]; v < 10 || v > 60 {
		return "questionable"
	}
	if v := data["battery_soc"]; v < 0 || v > 100 {
		return "questionable"
	}

	switch n := len(data); {
	case n < 5:
		return "limited"
	case n < 10:
		return "good"
	default:
		return "excellent"
	}
}
