package ft260

const (
	ReportID_ChipCode      = 0xA0 // Feature In
	ReportID_SystemSetting = 0xA1 // Feature In/Out
)

// Requests of the system setting report that take pins away from GPIO
const (
	SetSystemSetting_Clock           = 0x01
	SetSystemSetting_Uart            = 0x03 // Disabling UART frees GPIOB..GPIOE and GPIOH
	SetSystemSetting_EnableWakeupInt = 0x05 // GPIO3 when disabled
	SetSystemSetting_GPIO_2          = 0x06
	SetSystemSetting_GPIO_A          = 0x08
	SetSystemSetting_GPIO_G          = 0x09

	Clock48MHz = byte(2)
	UartOff    = byte(0)
	PinGpio    = byte(0) // Plain GPIO function for GPIO2, GPIOA and GPIOG
)

// Result of ReportID_ChipCode Feature In
type ReportChipCode struct {
	ChipCode uint32 // 8 reserved bytes follow on the wire
}

func (r *ReportChipCode) ReportID() byte {
	return ReportID_ChipCode
}

func (r *ReportChipCode) ReportLen() int {
	return 13
}

func (r *ReportChipCode) Unmarshall(b []byte) error {
	// MSB first, after the report ID
	r.ChipCode = uint32(b[1])<<24 | uint32(b[2])<<16 | uint32(b[3])<<8 | uint32(b[4])
	return nil
}

// SystemSetting is one single-byte request of ReportID_SystemSetting Feature Out.
// Boolean settings use 0 and 1.
type SystemSetting struct {
	Request byte
	Value   byte
}

func (r *SystemSetting) ReportID() byte {
	return ReportID_SystemSetting
}

func (r *SystemSetting) ReportLen() int {
	return 3
}

func (r *SystemSetting) Marshall(b []byte) error {
	b[1], b[2] = r.Request, r.Value
	return nil
}

// gpioSettings switch every multi-function pin to plain GPIO operation.
var gpioSettings = []SystemSetting{
	{SetSystemSetting_Clock, Clock48MHz},
	{SetSystemSetting_Uart, UartOff},
	{SetSystemSetting_EnableWakeupInt, 0},
	{SetSystemSetting_GPIO_2, PinGpio},
	{SetSystemSetting_GPIO_A, PinGpio},
	{SetSystemSetting_GPIO_G, PinGpio},
}

func (f *Ft260) ConfigureGpio() error {
	return configureGpio(f.Write)
}

func configureGpio(write func(ReportOut) error) error {
	for i := range gpioSettings {
		if err := write(&gpioSettings[i]); err != nil {
			return err
		}
	}
	return nil
}
