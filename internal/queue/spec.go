package queue

import "encoding/json"

// CommandSpec is the inbound command payload shape, whether it arrived
// over HTTP or MQTT.
type CommandSpec struct {
	CommandID     string         `json:"command_id,omitempty"`
	CommandType   string         `json:"command_type"`
	Data          map[string]any `json:"data"`
	Priority      string         `json:"priority,omitempty"`
	TimeoutSecs   int            `json:"timeout,omitempty"`
	ResponseTopic string         `json:"response_topic,omitempty"`
}

// ParseCommandSpec decodes a raw inbound payload. The command_type
// string is retained as-is here; it is only classified against the
// closed Kind set when the dispatcher looks it up in its handler table,
// the one boundary where an unknown kind can still occur.
func ParseCommandSpec(payload []byte) (CommandSpec, error) {
	var spec CommandSpec
	if err := json.Unmarshal(payload, &spec); err != nil {
		return CommandSpec{}, err
	}
	return spec, nil
}

// toArgs extracts the kind-specific arguments out of the spec's loosely
// typed data map. Missing fields leave the corresponding Args field at
// its zero value, except Enable, which defaults to true, and Slot, which
// defaults to 1; handlers validate what they need.
func (s CommandSpec) toArgs() Args {
	var a Args
	if v, ok := s.Data["register"].(string); ok {
		a.Register = v
	}
	if v, ok := s.Data["value"].(float64); ok {
		a.Value = v
	}
	if v, ok := s.Data["enable"].(bool); ok {
		a.Enable = v
	} else {
		a.Enable = true
	}
	if v, ok := s.Data["power"].(float64); ok {
		a.Power = v
	}
	a.Slot = 1
	if v, ok := s.Data["slot"].(float64); ok {
		a.Slot = int(v)
	}
	if v, ok := s.Data["start_time"].(float64); ok {
		a.Start = int(v)
	}
	if v, ok := s.Data["end_time"].(float64); ok {
		a.End = int(v)
	}
	return a
}
