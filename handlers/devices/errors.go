package devices

import "errors"

var (
	errDeviceType     = errors.New("device type must be iOS or macOS")
	errDeviceLimit    = errors.New("device limit reached: a maximum of 3 devices can be monitored")
	errDeviceNotFound = errors.New("device not found")
)
