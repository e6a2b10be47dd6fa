package sensor

import (
	"errors"
	"sync"

	"github.com/KyleBrandon/temp-monitor/internal/reading"
)

const (
	DRIVERTYPE_DS18B20 string = "DS18B20"
	DRIVERTYPE_GPIO    string = "GPIO"
	SENSOR_TEMPERATURE string = "temperature"
	SENSOR_POWER       string = "power"
)

var ErrNoTemperatureSensor = errors.New("no temperature sensor configured")

type (
	SensorConfig struct {
		Devices           []DeviceConfig
		TemperatureSensor DeviceConfig
		PowerDevice       *DeviceConfig
	}

	DeviceConfig struct {
		DriverType               string  `json:"driver_type"`
		SensorType               string  `json:"sensor_type"`
		Address                  string  `json:"address"`
		Name                     string  `json:"name"`
		Description              string  `json:"description"`
		NormallyOn               bool    `json:"normally_on,omitempty"`
		CalibrationOffsetCelsius float64 `json:"calibration_offset_celsius"`
	}

	// Sensors samples the monitored temperature.
	Sensors interface {
		ReadTemperature() (reading.Temperature, error)
		Close() error
	}

	HardwareSensors struct {
		config SensorConfig
	}

	// MockSensors simulates a 12-bit ADC attached to an analog temperature sensor.
	MockSensors struct {
		mu      sync.Mutex
		config  SensorConfig
		samples int
	}
)
