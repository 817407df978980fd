package registry

import "fmt"

var workingModeLabels = map[uint16]string{
	0: "Power On",
	1: "Standby",
	2: "Line Mode",
	3: "Battery Mode",
	4: "Fault Mode",
	5: "Hybrid Mode",
	6: "Charge Mode",
	7: "Bypass Mode",
}

// WorkingModeLabel returns the human-readable working-mode description
// for a raw register value.
func WorkingModeLabel(mode uint16) string {
	if s, ok := workingModeLabels[mode]; ok {
		return s
	}
	return fmt.Sprintf("Unknown Mode (%d)", mode)
}

var faultLabels = map[uint16]string{
	0:  "No Fault",
	1:  "Fan Error",
	2:  "Over Temperature",
	3:  "Battery Voltage High",
	4:  "Battery Voltage Low",
	5:  "Output Short Circuit",
	6:  "Output Voltage High",
	7:  "Over Load Timeout",
	8:  "Bus Voltage High",
	9:  "Bus Soft Start Failed",
	10: "Main Relay Failed",
	11: "Output Voltage Low",
	12: "Inverter Soft Start Failed",
	13: "Self Test Failed",
	14: "OP DC Voltage Over",
	15: "Bat Open",
	16: "Current Sensor Failed",
	17: "Battery Short",
	18: "Power Limit",
	19: "PV Voltage High",
	20: "MPPT Overload Fault",
	21: "MPPT Overload Warning",
	22: "Battery Too Low to Charge",
}

// FaultDescription returns the human-readable fault description for a
// raw fault_code register value.
func FaultDescription(code uint16) string {
	if s, ok := faultLabels[code]; ok {
		return s
	}
	return fmt.Sprintf("Unknown Fault (%d)", code)
}

var batteryTypeLabels = map[uint16]string{
	0: "AGM",
	1: "Flooded",
	2: "User Defined",
	3: "Lithium",
}

// BatteryTypeLabel returns the human-readable battery type description.
func BatteryTypeLabel(t uint16) string {
	if s, ok := batteryTypeLabels[t]; ok {
		return s
	}
	return fmt.Sprintf("Unknown Type (%d)", t)
}

var priorityLabels = map[uint16]string{
	0: "Utility First",
	1: "Solar First",
	2: "SBU (Solar-Battery-Utility)",
}

// PriorityLabel returns the human-readable source-priority description.
func PriorityLabel(p uint16) string {
	if s, ok := priorityLabels[p]; ok {
		return s
	}
	return fmt.Sprintf("Unknown Priority (%d)", p)
}
