package ft260

import "fmt"

const (
	ReportID_I2CRead      = 0xC2 // Output
	ReportID_I2CInOut     = 0xD0 // 0xD0 - 0xDE, Input, Output
	ReportID_I2CInOut_Max = 0xDE

	// Max size of one I2C payload: (1 + Report ID - 0xD0) * 4 byte
	I2CMaxPayload = (1 + ReportID_I2CInOut_Max - ReportID_I2CInOut) * 4

	maxInputReportLen = 64
)

const (
	I2C_MasterNone      = 0x0
	I2C_MasterStart     = 0x2
	I2C_MasterRepStart  = 0x3
	I2C_MasterStop      = 0x4
	I2C_MasterStartStop = 0x6
)

// I2cBus is implemented by *Ft260 and used by I2C peripheral drivers.
type I2cBus interface {
	I2cWrite(addr byte, data ...byte) error
	I2cGet(addr byte, register byte, size int) ([]byte, error)
}

var _ I2cBus = (*Ft260)(nil)

// ReportID_I2CInOut Interrupt Out
type OperationI2cWrite struct {
	SlaveAddr byte // 0..127
	Condition byte // I2C_Master...
	Payload   []byte
}

func (r *OperationI2cWrite) ReportID() byte {
	// Report IDs grow in steps of 4 payload bytes
	return ReportID_I2CInOut + byte((len(r.Payload)-1)/4)
}

func (r *OperationI2cWrite) ReportLen() int {
	return len(r.Payload) + 4
}

func (r *OperationI2cWrite) Marshall(b []byte) error {
	if len(r.Payload) == 0 || len(r.Payload) > I2CMaxPayload {
		return fmt.Errorf("I2C payload length %v outside of 1..%v", len(r.Payload), I2CMaxPayload)
	}
	if err := checkSlaveAddr(r.SlaveAddr); err != nil {
		return err
	}
	b[1] = r.SlaveAddr
	b[2] = r.Condition
	b[3] = byte(len(r.Payload))
	copy(b[4:], r.Payload)
	return nil
}

// ReportID_I2CRead Interrupt Out
type OperationI2cRead struct {
	SlaveAddr byte
	Condition byte
	Len       uint16 // little endian on the wire
}

func (r *OperationI2cRead) ReportID() byte {
	return ReportID_I2CRead
}

func (r *OperationI2cRead) ReportLen() int {
	return 5
}

func (r *OperationI2cRead) Marshall(b []byte) error {
	if err := checkSlaveAddr(r.SlaveAddr); err != nil {
		return err
	}
	b[1] = r.SlaveAddr
	b[2] = r.Condition
	b[3], b[4] = byte(r.Len), byte(r.Len>>8)
	return nil
}

func checkSlaveAddr(addr byte) error {
	if addr&0x80 != 0 {
		return fmt.Errorf("Invalid I2C slave address: %#02x", addr)
	}
	return nil
}

// I2cWrite sends data to the slave in one transaction, split into multiple
// reports if necessary.
func (f *Ft260) I2cWrite(addr byte, data ...byte) error {
	return i2cWrite(f.Write, addr, true, data)
}

// I2cGet writes the register address and reads size bytes after a repeated start.
func (f *Ft260) I2cGet(addr byte, register byte, size int) ([]byte, error) {
	if size <= 0 || size > I2CMaxPayload {
		return nil, fmt.Errorf("I2C read size %v outside of 1..%v", size, I2CMaxPayload)
	}
	if err := i2cWrite(f.Write, addr, false, []byte{register}); err != nil {
		return nil, err
	}
	err := f.Write(&OperationI2cRead{
		SlaveAddr: addr,
		Condition: I2C_MasterRepStart | I2C_MasterStop,
		Len:       uint16(size),
	})
	if err != nil {
		return nil, err
	}
	buf := make([]byte, maxInputReportLen)
	n, err := f.Device.Read(buf)
	if err != nil {
		return nil, err
	}
	return parseI2cInput(buf[:n], size)
}

func i2cWrite(write func(ReportOut) error, addr byte, stop bool, data []byte) error {
	payloads, conditions := splitI2cTransaction(stop, data)
	for i, payload := range payloads {
		err := write(&OperationI2cWrite{
			SlaveAddr: addr,
			Condition: conditions[i],
			Payload:   payload,
		})
		if err != nil {
			return fmt.Errorf("I2C write to %#02x failed (report %v of %v): %v", addr, i+1, len(payloads), err)
		}
	}
	return nil
}

// splitI2cTransaction cuts data into report payloads. Only the first report
// carries the start condition, only the last one the optional stop condition.
func splitI2cTransaction(stop bool, data []byte) (payloads [][]byte, conditions []byte) {
	for start := 0; start < len(data); start += I2CMaxPayload {
		end := start + I2CMaxPayload
		if end > len(data) {
			end = len(data)
		}
		var condition byte = I2C_MasterNone
		if start == 0 {
			condition |= I2C_MasterStart
		}
		if stop && end == len(data) {
			condition |= I2C_MasterStop
		}
		payloads = append(payloads, data[start:end])
		conditions = append(conditions, condition)
	}
	return
}

func parseI2cInput(report []byte, expected int) ([]byte, error) {
	if len(report) < 2 || report[0] < ReportID_I2CInOut || report[0] > ReportID_I2CInOut_Max {
		return nil, fmt.Errorf("Unexpected I2C input report: %x", report)
	}
	l := int(report[1])
	if l != expected || len(report) < 2+l {
		return nil, fmt.Errorf("Short I2C read (received %v of %v byte)", l, expected)
	}
	return report[2 : 2+l], nil
}
