package gpio

import "fmt"

const noGpio = -1

// BCM GPIO numbers of the 40-pin Raspberry Pi header, indexed by physical position.
// Power and ground positions are marked with noGpio.
var headerBcm = [...]int{
	noGpio,         // (unused)
	noGpio, noGpio, // 3V3, 5V
	2, noGpio, // SDA1, 5V
	3, noGpio, // SCL1, GND
	4, 14,
	noGpio, 15, // GND
	17, 18,
	27, noGpio, // GND
	22, 23,
	noGpio, 24, // 3V3
	10, noGpio, // GND
	9, 25,
	11, 8,
	noGpio, 7, // GND
	0, 1, // ID_SD, ID_SC
	5, noGpio, // GND
	6, 12,
	13, noGpio, // GND
	19, 16,
	26, 20,
	noGpio, 21, // GND
}

// HeaderToBcm translates a physical header position to the BCM GPIO number.
func HeaderToBcm(pin int) (int, error) {
	if err := HeaderPins.Check(pin); err != nil {
		return 0, err
	}
	bcm := headerBcm[pin]
	if bcm == noGpio {
		return 0, fmt.Errorf("Header pin %v is a power or ground pin", pin)
	}
	return bcm, nil
}
