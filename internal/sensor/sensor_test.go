package sensor

import (
	"errors"
	"math"
	"testing"
)

func TestNewSensorConfig(t *testing.T) {
	devices := []DeviceConfig{
		{DriverType: DRIVERTYPE_GPIO, SensorType: SENSOR_POWER, Address: "17", Name: "Power"},
		{DriverType: DRIVERTYPE_DS18B20, SensorType: SENSOR_TEMPERATURE, Address: "28-000001", Name: "Probe", CalibrationOffsetCelsius: 1.5},
		{DriverType: DRIVERTYPE_DS18B20, SensorType: SENSOR_TEMPERATURE, Address: "28-000002", Name: "Spare"},
	}

	t.Run("should select the first temperature sensor for the mock", func(t *testing.T) {
		s, err := NewSensorConfig(devices, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		mock, ok := s.(*MockSensors)
		if !ok {
			t.Fatalf("expected MockSensors, got %T", s)
		}
		if mock.config.TemperatureSensor.Name != "Probe" {
			t.Errorf("expected Probe, got %s", mock.config.TemperatureSensor.Name)
		}
		if mock.config.PowerDevice == nil || mock.config.PowerDevice.Address != "17" {
			t.Errorf("expected the power device on pin 17, got %+v", mock.config.PowerDevice)
		}
	})

	t.Run("should allow a mock without devices", func(t *testing.T) {
		if _, err := NewSensorConfig(nil, true); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("should require a temperature sensor for hardware", func(t *testing.T) {
		_, err := NewSensorConfig(devices[:1], false)
		if !errors.Is(err, ErrNoTemperatureSensor) {
			t.Errorf("expected ErrNoTemperatureSensor, got %v", err)
		}
	})
}

func TestMockSensors(t *testing.T) {
	t.Run("should stay within the simulated range", func(t *testing.T) {
		m := &MockSensors{}
		for i := 0; i < 100; i++ {
			temp, err := m.ReadTemperature()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if temp.Celsius < 19.5 || temp.Celsius > 30.5 {
				t.Errorf("sample %d out of range: %v", i, temp.Celsius)
			}
		}
	})

	t.Run("should start near the base temperature", func(t *testing.T) {
		m := &MockSensors{}
		temp, _ := m.ReadTemperature()
		if math.Abs(float64(temp.Celsius)-MOCK_BASE_CELSIUS) > 0.1 {
			t.Errorf("expected about %v, got %v", MOCK_BASE_CELSIUS, temp.Celsius)
		}
	})

	t.Run("should apply the calibration offset", func(t *testing.T) {
		plain := &MockSensors{}
		offset := &MockSensors{config: SensorConfig{TemperatureSensor: DeviceConfig{CalibrationOffsetCelsius: -2}}}

		a, _ := plain.ReadTemperature()
		b, _ := offset.ReadTemperature()
		if math.Abs(float64(a.Celsius-b.Celsius)-2) > 0.001 {
			t.Errorf("expected a 2°C offset, got %v and %v", a.Celsius, b.Celsius)
		}
	})

	t.Run("should close without error", func(t *testing.T) {
		if err := (&MockSensors{}).Close(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
