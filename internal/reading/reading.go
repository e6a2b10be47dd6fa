package reading

const (
	// 12-bit ADC referenced to 3.3V feeding a 10mV/°C sensor
	ADC_MAX_CODE          = 4095
	ADC_REFERENCE_VOLTS   = 3.3
	SENSOR_VOLTS_PER_DEGC = 0.01
)

type (
	Temperature struct {
		Celsius float32 `json:"celsius"`
	}

	Reading struct {
		Temperature Temperature `json:"temperature"`
		Timestamp   uint32      `json:"timestamp"`
	}
)

func NewTemperature(celsius float32) Temperature {
	return Temperature{Celsius: celsius}
}

// FromSensorCode converts a raw ADC code into degrees Celsius. Codes above the
// converter range are not rejected.
func FromSensorCode(code uint16) Temperature {
	volts := float32(code) / ADC_MAX_CODE * ADC_REFERENCE_VOLTS
	return Temperature{Celsius: volts / SENSOR_VOLTS_PER_DEGC}
}

// SensorCode is the inverse of FromSensorCode, clamped to the converter range.
func SensorCode(celsius float64) uint16 {
	volts := celsius * SENSOR_VOLTS_PER_DEGC
	code := volts / ADC_REFERENCE_VOLTS * ADC_MAX_CODE
	if code < 0 {
		return 0
	}
	if code > ADC_MAX_CODE {
		return ADC_MAX_CODE
	}

	return uint16(code)
}

func (t Temperature) Fahrenheit() float32 {
	return (t.Celsius * 9 / 5) + 32
}

func NewReading(t Temperature, timestamp uint32) Reading {
	return Reading{
		Temperature: t,
		Timestamp:   timestamp,
	}
}
