package ft260

import (
	"errors"
	"fmt"

	"github.com/antongulenko/hid"
	log "github.com/sirupsen/logrus"
)

const (
	FTDIVendorId   = 0x0403
	FT260ProductId = 0x6030

	FT260_CHIP_CODE = 0x02600200
)

// Ft260Driver selects one FT260 among the connected USB HID devices.
type Ft260Driver struct {
	Vendor  uint16 // FTDIVendorId if zero
	Product uint16 // FT260ProductId if zero
	Path    string // Optional, selects one of multiple connected devices
}

func (d *Ft260Driver) Open() (*Ft260, error) {
	if !hid.Supported() {
		return nil, errors.New("The USB HID library github.com/antongulenko/hid is not supported on this platform")
	}
	vendor, product := d.ids()
	info, err := d.selectDevice(hid.Enumerate(vendor, product))
	if err != nil {
		return nil, err
	}
	log.Printf("Opening FT260 at %v (interface %v): %v by %v, release %v",
		info.Path, info.Interface, info.Product, info.Manufacturer, info.Release)
	dev, err := info.Open()
	if err != nil {
		return nil, fmt.Errorf("Failed to open FT260 at %v: %v", info.Path, err)
	}
	return &Ft260{Device: dev}, nil
}

func (d *Ft260Driver) ids() (vendor, product uint16) {
	vendor, product = d.Vendor, d.Product
	if vendor == 0 {
		vendor = FTDIVendorId
	}
	if product == 0 {
		product = FT260ProductId
	}
	return
}

func (d *Ft260Driver) selectDevice(devices []hid.DeviceInfo) (hid.DeviceInfo, error) {
	vendor, product := d.ids()
	switch {
	case len(devices) == 0:
		return hid.DeviceInfo{}, fmt.Errorf("No USB HID device found with vendorID=%04x productID=%04x", vendor, product)
	case d.Path != "":
		for _, dev := range devices {
			if dev.Path == d.Path {
				return dev, nil
			}
		}
		return hid.DeviceInfo{}, fmt.Errorf("No USB HID device with vendorID=%04x productID=%04x found at path %v", vendor, product, d.Path)
	case len(devices) > 1:
		log.Warnf("%v devices connected with vendorID=%04x productID=%04x, using %v", len(devices), vendor, product, devices[0].Path)
	}
	return devices[0], nil
}

func Open() (*Ft260, error) {
	return OpenPath("")
}

func OpenPath(path string) (*Ft260, error) {
	return (&Ft260Driver{Path: path}).Open()
}

type Ft260 struct {
	*hid.Device
}

type ReportIn interface {
	Unmarshall(data []byte) error
	ReportID() byte
	ReportLen() int
}

type ReportOut interface {
	Marshall(data []byte) error
	ReportID() byte
	ReportLen() int
}

// Write sends one output report.
func (f *Ft260) Write(report ReportOut) error {
	data, err := marshallReport(report)
	if err != nil {
		return err
	}
	n, err := f.Device.Write(data)
	return checkTransfer("write", report.ReportID(), n, len(data), err)
}

// Read receives one input report into the given report value.
func (f *Ft260) Read(report ReportIn) error {
	data := make([]byte, report.ReportLen())
	data[0] = report.ReportID()
	n, err := f.Device.Read(data)
	if err := checkTransfer("read", report.ReportID(), n, len(data), err); err != nil {
		return err
	}
	if data[0] != report.ReportID() {
		return fmt.Errorf("Unexpected FT260 report ID %#02x (expected %#02x)", data[0], report.ReportID())
	}
	return report.Unmarshall(data)
}

func checkTransfer(op string, reportID byte, n, expected int, err error) error {
	if err != nil {
		return fmt.Errorf("FT260 %v of report %#02x failed: %v", op, reportID, err)
	}
	if n != expected {
		return fmt.Errorf("FT260 %v of report %#02x transferred %v instead of %v byte", op, reportID, n, expected)
	}
	return nil
}

// ValidateChipCode makes sure the opened device really is an FT260.
func (f *Ft260) ValidateChipCode() error {
	var code ReportChipCode
	if err := f.Read(&code); err != nil {
		return err
	}
	if code.ChipCode != FT260_CHIP_CODE {
		return fmt.Errorf("Unexpected chip code %08x (expected %08x)", code.ChipCode, FT260_CHIP_CODE)
	}
	return nil
}

func marshallReport(report ReportOut) ([]byte, error) {
	data := make([]byte, report.ReportLen())
	if err := report.Marshall(data); err != nil {
		return nil, err
	}
	data[0] = report.ReportID()
	return data, nil
}
