package registry

// registerTable is the register map of the target inverter: the device
// contract everything else in the bridge is built against.
var registerTable = []Register{
	{Name: "battery_voltage", Address: 3027, DataType: U16, Scale: 0.1, Unit: "V", Description: "Battery voltage"},
	{Name: "battery_current", Address: 3028, DataType: I16, Scale: 0.1, Unit: "A", Description: "Battery current (+ charging, - discharging)"},
	{Name: "battery_power", Address: 3029, DataType: I16, Scale: 1, Unit: "W", Description: "Battery power (+ charging, - discharging)"},
	{Name: "battery_soc", Address: 3030, DataType: U16, Scale: 1, Unit: "%", Description: "Battery state of charge"},
	{Name: "battery_temperature", Address: 3031, DataType: I16, Scale: 0.1, Unit: "°C", Description: "Battery temperature"},

	{Name: "ac_voltage_output", Address: 3033, DataType: U16, Scale: 0.1, Unit: "V", Description: "AC output voltage"},
	{Name: "ac_current_output", Address: 3034, DataType: U16, Scale: 0.1, Unit: "A", Description: "AC output current"},
	{Name: "ac_power_output", Address: 3035, DataType: U16, Scale: 1, Unit: "W", Description: "AC output power"},
	{Name: "ac_frequency_output", Address: 3036, DataType: U16, Scale: 0.01, Unit: "Hz", Description: "AC output frequency"},

	{Name: "ac_voltage_input", Address: 3037, DataType: U16, Scale: 0.1, Unit: "V", Description: "AC input voltage"},
	{Name: "ac_current_input", Address: 3038, DataType: U16, Scale: 0.1, Unit: "A", Description: "AC input current"},
	{Name: "ac_power_input", Address: 3039, DataType: U16, Scale: 1, Unit: "W", Description: "AC input power"},
	{Name: "ac_frequency_input", Address: 3040, DataType: U16, Scale: 0.01, Unit: "Hz", Description: "AC input frequency"},

	{Name: "pv_voltage", Address: 3021, DataType: U16, Scale: 0.1, Unit: "V", Description: "PV input voltage"},
	{Name: "pv_current", Address: 3022, DataType: U16, Scale: 0.1, Unit: "A", Description: "PV input current"},
	{Name: "pv_power", Address: 3023, DataType: U16, Scale: 1, Unit: "W", Description: "PV input power"},

	{Name: "load_voltage", Address: 3041, DataType: U16, Scale: 0.1, Unit: "V", Description: "Load voltage"},
	{Name: "load_current", Address: 3042, DataType: U16, Scale: 0.1, Unit: "A", Description: "Load current"},
	{Name: "load_power", Address: 3043, DataType: U16, Scale: 1, Unit: "W", Description: "Load power"},
	{Name: "load_percentage", Address: 3044, DataType: U16, Scale: 1, Unit: "%", Description: "Load percentage"},

	{Name: "working_mode", Address: 3045, DataType: U16, Scale: 1, Description: "Working mode"},
	{Name: "inverter_temperature", Address: 3046, DataType: I16, Scale: 0.1, Unit: "°C", Description: "Inverter temperature"},
	{Name: "fault_code", Address: 3047, DataType: U16, Scale: 1, Description: "Fault code"},
	{Name: "warning_code", Address: 3048, DataType: U16, Scale: 1, Description: "Warning code"},

	{Name: "pv_energy_today", Address: 3049, DataType: U32, Scale: 0.1, Unit: "kWh", Description: "PV energy today"},
	{Name: "pv_energy_total", Address: 3051, DataType: U32, Scale: 0.1, Unit: "kWh", Description: "PV energy total"},
	{Name: "load_energy_today", Address: 3053, DataType: U32, Scale: 0.1, Unit: "kWh", Description: "Load energy today"},
	{Name: "load_energy_total", Address: 3055, DataType: U32, Scale: 0.1, Unit: "kWh", Description: "Load energy total"},
	{Name: "battery_charge_today", Address: 3057, DataType: U32, Scale: 0.1, Unit: "kWh", Description: "Battery charge today"},
	{Name: "battery_discharge_today", Address: 3059, DataType: U32, Scale: 0.1, Unit: "kWh", Description: "Battery discharge today"},

	{Name: "output_source_priority", Address: 1, DataType: U16, Scale: 1, Description: "Output source priority", Writable: true},
	{Name: "charger_source_priority", Address: 2, DataType: U16, Scale: 1, Description: "Charger source priority", Writable: true},
	{Name: "battery_type", Address: 3, DataType: U16, Scale: 1, Description: "Battery type", Writable: true},
	{Name: "battery_capacity", Address: 4, DataType: U16, Scale: 1, Unit: "Ah", Description: "Battery capacity", Writable: true},

	{Name: "max_charge_current", Address: 5, DataType: U16, Scale: 1, Unit: "A", Description: "Maximum charge current", Writable: true},
	{Name: "max_discharge_current", Address: 6, DataType: U16, Scale: 1, Unit: "A", Description: "Maximum discharge current", Writable: true},
	{Name: "battery_low_voltage", Address: 7, DataType: U16, Scale: 0.1, Unit: "V", Description: "Battery low voltage cutoff", Writable: true},
	{Name: "battery_high_voltage", Address: 8, DataType: U16, Scale: 0.1, Unit: "V", Description: "Battery high voltage cutoff", Writable: true},

	{Name: "charge_time_1_start", Address: 9, DataType: U16, Scale: 1, Unit: "HHMM", Description: "Charge time 1 start", Writable: true},
	{Name: "charge_time_1_end", Address: 10, DataType: U16, Scale: 1, Unit: "HHMM", Description: "Charge time 1 end", Writable: true},
	{Name: "charge_time_2_start", Address: 11, DataType: U16, Scale: 1, Unit: "HHMM", Description: "Charge time 2 start", Writable: true},
	{Name: "charge_time_2_end", Address: 12, DataType: U16, Scale: 1, Unit: "HHMM", Description: "Charge time 2 end", Writable: true},

	{Name: "discharge_time_1_start", Address: 13, DataType: U16, Scale: 1, Unit: "HHMM", Description: "Discharge time 1 start", Writable: true},
	{Name: "discharge_time_1_end", Address: 14, DataType: U16, Scale: 1, Unit: "HHMM", Description: "Discharge time 1 end", Writable: true},
	{Name: "discharge_time_2_start", Address: 15, DataType: U16, Scale: 1, Unit: "HHMM", Description: "Discharge time 2 start", Writable: true},
	{Name: "discharge_time_2_end", Address: 16, DataType: U16, Scale: 1, Unit: "HHMM", Description: "Discharge time 2 end", Writable: true},

	{Name: "enable_charge", Address: 17, DataType: U16, Scale: 1, Description: "Enable battery charge (0=disable, 1=enable)", Writable: true},
	{Name: "enable_discharge", Address: 18, DataType: U16, Scale: 1, Description: "Enable battery discharge (0=disable, 1=enable)", Writable: true},
	{Name: "force_charge", Address: 19, DataType: U16, Scale: 1, Description: "Force charge from grid (0=disable, 1=enable)", Writable: true},

	{Name: "charge_power_limit", Address: 20, DataType: U16, Scale: 1, Unit: "W", Description: "Charge power limit", Writable: true},
	{Name: "discharge_power_limit", Address: 21, DataType: U16, Scale: 1, Unit: "W", Description: "Discharge power limit", Writable: true},

	{Name: "grid_charge_enabled", Address: 22, DataType: U16, Scale: 1, Description: "Grid charge enabled", Writable: true},
	{Name: "grid_discharge_enabled", Address: 23, DataType: U16, Scale: 1, Description: "Grid discharge enabled", Writable: true},
}
