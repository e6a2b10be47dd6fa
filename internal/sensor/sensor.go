package sensor

import (
	"fmt"
	"log/slog"
)

// NewSensorConfig picks the temperature sensor and optional power device out of
// the configured devices. A mock sensor does not need a configured device.
func NewSensorConfig(devices []DeviceConfig, useMock bool) (Sensors, error) {
	slog.Debug(">>NewSensorConfig")
	defer slog.Debug("<<NewSensorConfig")

	sc := SensorConfig{
		Devices: devices,
	}

	found := false
	for _, d := range sc.Devices {
		switch d.SensorType {
		case SENSOR_TEMPERATURE:
			if d.DriverType == DRIVERTYPE_DS18B20 && !found {
				sc.TemperatureSensor = d
				found = true
			}

		case SENSOR_POWER:
			if d.DriverType == DRIVERTYPE_GPIO {
				power := d
				sc.PowerDevice = &power
			}
		}
	}

	if useMock {
		slog.Info("using mock sensors")
		return &MockSensors{config: sc}, nil
	}

	if !found {
		return nil, ErrNoTemperatureSensor
	}

	hs := &HardwareSensors{config: sc}
	if sc.PowerDevice != nil {
		if err := turnDeviceOn(sc.PowerDevice); err != nil {
			return nil, fmt.Errorf("failed to power sensor %s: %w", sc.PowerDevice.Name, err)
		}
	}

	return hs, nil
}
