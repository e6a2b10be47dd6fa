package sensor

import (
	"log/slog"
	"math"

	"github.com/KyleBrandon/temp-monitor/internal/reading"
)

const (
	MOCK_BASE_CELSIUS      = 25.0
	MOCK_AMPLITUDE_CELSIUS = 5.0
	MOCK_STEP              = 0.1
)

// ReadTemperature produces a slow sine wave around 25°C. The value is quantized
// through the same ADC transform a real analog sensor would use.
func (m *MockSensors) ReadTemperature() (reading.Temperature, error) {
	slog.Debug(">>ReadTemperature")
	defer slog.Debug("<<ReadTemperature")

	m.mu.Lock()
	n := m.samples
	m.samples++
	m.mu.Unlock()

	celsius := MOCK_BASE_CELSIUS + MOCK_AMPLITUDE_CELSIUS*math.Sin(MOCK_STEP*float64(n))
	t := reading.FromSensorCode(reading.SensorCode(celsius))

	t.Celsius += float32(m.config.TemperatureSensor.CalibrationOffsetCelsius)

	return t, nil
}

func (m *MockSensors) Close() error {
	return nil
}
