package mpsse

import (
	"fmt"

	"github.com/google/gousb"
)

const (
	// Default FTDI FT232H identifiers.
	VendorIDFTDI     = 0x0403
	ProductIDFT232H  = 0x6014
	DefaultLatencyMs = 1

	// FTDI vendor control requests.
	sioReset           = 0x00
	sioSetLatencyTimer = 0x09
	sioSetBitMode      = 0x0B

	// Values for sioReset.
	sioResetSIO = 0
	sioPurgeRX  = 1
	sioPurgeTX  = 2

	// Bit modes for sioSetBitMode (high byte of value).
	BitModeReset = 0x00
	BitModeMPSSE = 0x02

	// MPSSEPinMask sets all ADBUS pins except TDO to outputs.
	MPSSEPinMask = 0x0B

	reqOut = gousb.ControlVendor | gousb.ControlDevice | gousb.ControlOut
)

// USBTransport talks to an FTDI bridge chip over USB bulk endpoints. It
// implements Transport and handles the FTDI-specific framing on the read
// side, where every packet carries two modem status bytes ahead of the data.
type USBTransport struct {
	ctx  *gousb.Context
	dev  *gousb.Device
	intf *gousb.Interface
	done func()

	epOut *gousb.OutEndpoint
	epIn  *gousb.InEndpoint

	maxPacket int
	index     uint16
}

// OpenFTDI opens the first device matching vid:pid and configures it for
// MPSSE operation: USB reset, 1 ms latency timer, buffer purge, bit mode
// reset followed by MPSSE mode with TDO as the only input.
func OpenFTDI(vid, pid uint16) (*USBTransport, error) {
	ctx := gousb.NewContext()

	dev, err := ctx.OpenDeviceWithVIDPID(gousb.ID(vid), gousb.ID(pid))
	if err != nil {
		ctx.Close()
		return nil, fmt.Errorf("mpsse: open device: %w", err)
	}
	if dev == nil {
		ctx.Close()
		return nil, fmt.Errorf("mpsse: device %04x:%04x not found", vid, pid)
	}

	// Linux binds ftdi_sio to these chips; detach it or the claim fails.
	dev.SetAutoDetach(true)

	t := &USBTransport{ctx: ctx, dev: dev, index: 1}

	if err := t.claim(); err != nil {
		dev.Close()
		ctx.Close()
		return nil, err
	}

	if err := t.setup(); err != nil {
		t.Close()
		return nil, err
	}
	return t, nil
}

func (t *USBTransport) claim() error {
	intf, done, err := t.dev.DefaultInterface()
	if err != nil {
		return fmt.Errorf("mpsse: claim interface: %w", err)
	}
	t.intf = intf
	t.done = done

	for _, ep := range intf.Setting.Endpoints {
		if ep.TransferType != gousb.TransferTypeBulk {
			continue
		}
		switch ep.Direction {
		case gousb.EndpointDirectionOut:
			if t.epOut == nil {
				t.epOut, err = intf.OutEndpoint(ep.Number)
			}
		case gousb.EndpointDirectionIn:
			if t.epIn == nil {
				t.epIn, err = intf.InEndpoint(ep.Number)
				t.maxPacket = ep.MaxPacketSize
			}
		}
		if err != nil {
			return fmt.Errorf("mpsse: open endpoint: %w", err)
		}
	}
	if t.epOut == nil || t.epIn == nil {
		return fmt.Errorf("mpsse: bulk endpoints not found")
	}
	if t.maxPacket < 3 {
		t.maxPacket = 64
	}
	return nil
}

func (t *USBTransport) setup() error {
	if err := t.control(sioReset, sioResetSIO); err != nil {
		return fmt.Errorf("mpsse: reset: %w", err)
	}
	if err := t.control(sioSetLatencyTimer, DefaultLatencyMs); err != nil {
		return fmt.Errorf("mpsse: set latency timer: %w", err)
	}
	if err := t.Purge(); err != nil {
		return err
	}
	if err := t.SetBitMode(0x00, BitModeReset); err != nil {
		return err
	}
	return t.SetBitMode(MPSSEPinMask, BitModeMPSSE)
}

func (t *USBTransport) control(request uint8, value uint16) error {
	_, err := t.dev.Control(reqOut, request, value, t.index, nil)
	return err
}

// SetBitMode selects the chip's operating mode; mask gives the pin
// direction bits for the bit-bang modes.
func (t *USBTransport) SetBitMode(mask, mode byte) error {
	if err := t.control(sioSetBitMode, uint16(mode)<<8|uint16(mask)); err != nil {
		return fmt.Errorf("mpsse: set bit mode: %w", err)
	}
	return nil
}

// Purge discards both the chip's receive and transmit buffers.
func (t *USBTransport) Purge() error {
	if err := t.control(sioReset, sioPurgeRX); err != nil {
		return fmt.Errorf("mpsse: purge rx: %w", err)
	}
	if err := t.control(sioReset, sioPurgeTX); err != nil {
		return fmt.Errorf("mpsse: purge tx: %w", err)
	}
	return nil
}

// Write sends a command stream to the chip.
func (t *USBTransport) Write(p []byte) (int, error) {
	return t.epOut.Write(p)
}

// Read returns available reply bytes, stripping the two modem status bytes
// the chip prepends to every wMaxPacketSize frame.
func (t *USBTransport) Read(p []byte) (int, error) {
	frames := (len(p) + t.maxPacket - 3) / (t.maxPacket - 2)
	if frames < 1 {
		frames = 1
	}
	scratch := make([]byte, frames*t.maxPacket)

	n, err := t.epIn.Read(scratch)
	if err != nil {
		return 0, err
	}

	out := 0
	for off := 0; off < n && out < len(p); off += t.maxPacket {
		end := off + t.maxPacket
		if end > n {
			end = n
		}
		if end-off <= 2 {
			continue
		}
		out += copy(p[out:], scratch[off+2:end])
	}
	return out, nil
}

// Close purges and resets the chip, then releases all USB resources. It is
// safe to call more than once.
func (t *USBTransport) Close() error {
	if t.dev != nil {
		t.Purge()
		t.control(sioReset, sioResetSIO)
	}
	if t.done != nil {
		t.done()
		t.done = nil
		t.intf = nil
	}
	if t.dev != nil {
		t.dev.Close()
		t.dev = nil
	}
	if t.ctx != nil {
		t.ctx.Close()
		t.ctx = nil
	}
	return nil
}
