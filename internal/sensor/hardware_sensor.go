package sensor

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/KyleBrandon/temp-monitor/internal/reading"
	"github.com/stianeikeland/go-rpio"
	"github.com/yryz/ds18b20"
)

func (s *HardwareSensors) ReadTemperature() (reading.Temperature, error) {
	slog.Debug(">>ReadTemperature")
	defer slog.Debug("<<ReadTemperature")

	device := &s.config.TemperatureSensor

	t, err := ds18b20.Temperature(device.Address)
	if err != nil {
		slog.Error("failed to read sensor", "name", device.Name, "address", device.Address, "error", err)
		return reading.Temperature{}, fmt.Errorf("read %s: %w", device.Name, err)
	}

	t += device.CalibrationOffsetCelsius

	return reading.NewTemperature(float32(t)), nil
}

// Close removes power from the sensor if a power device is configured.
func (s *HardwareSensors) Close() error {
	slog.Debug(">>Close")
	defer slog.Debug("<<Close")

	if s.config.PowerDevice == nil {
		return nil
	}

	return turnDeviceOff(s.config.PowerDevice)
}

func turnDeviceOn(device *DeviceConfig) error {
	slog.Info(">>turnDeviceOn", "name", device.Name)
	defer slog.Info("<<turnDeviceOn", "name", device.Name)

	pin, err := openPin(device)
	if err != nil {
		return err
	}

	defer rpio.Close()

	// if the device is normally on, that means the pin is low when it is on
	if device.NormallyOn {
		pin.Low()
	} else {
		pin.High()
	}

	return nil
}

func turnDeviceOff(device *DeviceConfig) error {
	slog.Debug(">>turnDeviceOff", "name", device.Name)
	defer slog.Debug("<<turnDeviceOff", "name", device.Name)

	pin, err := openPin(device)
	if err != nil {
		return err
	}

	defer rpio.Close()

	// if the device is normally on, that means the pin is high when it is off
	if device.NormallyOn {
		pin.High()
	} else {
		pin.Low()
	}

	return nil
}

// openPin maps the GPIO memory and configures the device pin as an output.
// The caller must call rpio.Close.
func openPin(device *DeviceConfig) (rpio.Pin, error) {
	pinNumber, err := strconv.Atoi(device.Address)
	if err != nil {
		return 0, fmt.Errorf("invalid pin %q for %s: %w", device.Address, device.Name, err)
	}

	if err := rpio.Open(); err != nil {
		return 0, err
	}

	pin := rpio.Pin(pinNumber)
	pin.Output()

	return pin, nil
}
