package transport

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/gousb"
)

// usbLink drives one MCU over its vendor bulk interface.
type usbLink struct {
	ctx  *gousb.Context
	dev  *gousb.Device
	cfg  *gousb.Config
	intf *gousb.Interface
	in   *gousb.InEndpoint
	out  *gousb.OutEndpoint
}

// USBOpener returns an Opener for the MCU with the given product ID.
func USBOpener(pid uint16) Opener {
	return func() (Link, error) { return OpenUSB(VendorID, pid) }
}

// OpenUSB discovers the device, detaches any kernel driver, and claims
// the first interface exposing a bulk IN/OUT endpoint pair.
func OpenUSB(vid, pid uint16) (Link, error) {
	ctx := gousb.NewContext()
	dev, err := ctx.OpenDeviceWithVIDPID(gousb.ID(vid), gousb.ID(pid))
	if err != nil {
		ctx.Close()
		return nil, fmt.Errorf("open device %04x:%04x: %w", vid, pid, err)
	}
	if dev == nil {
		ctx.Close()
		return nil, fmt.Errorf("device %04x:%04x: %w", vid, pid, ErrNotFound)
	}
	if err := dev.SetAutoDetach(true); err != nil {
		log.Printf("[usb] auto-detach unavailable for %04x:%04x: %v", vid, pid, err)
	}

	cfg, err := dev.Config(1)
	if err != nil {
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("claim config 1 on %04x:%04x: %w", vid, pid, err)
	}

	l := &usbLink{ctx: ctx, dev: dev, cfg: cfg}
	if err := l.claimBulkPair(); err != nil {
		cfg.Close()
		dev.Close()
		ctx.Close()
		return nil, err
	}
	log.Printf("[usb] connected %04x:%04x (in=0x%02x out=0x%02x mps=%d)",
		vid, pid, l.in.Desc.Address, l.out.Desc.Address, l.in.Desc.MaxPacketSize)
	return l, nil
}

// claimBulkPair walks the interfaces of the active config looking for a
// bulk IN and bulk OUT endpoint on the same interface.
func (l *usbLink) claimBulkPair() error {
	for _, ifDesc := range l.cfg.Desc.Interfaces {
		alt := ifDesc.AltSettings[0]
		var inDesc, outDesc *gousb.EndpointDesc
		for _, ep := range alt.Endpoints {
			ep := ep
			if ep.TransferType != gousb.TransferTypeBulk {
				continue
			}
			if ep.Direction == gousb.EndpointDirectionIn {
				inDesc = &ep
			} else {
				outDesc = &ep
			}
		}
		if inDesc == nil || outDesc == nil {
			continue
		}
		intf, err := l.cfg.Interface(ifDesc.Number, 0)
		if err != nil {
			return fmt.Errorf("claim interface %d: %w", ifDesc.Number, err)
		}
		in, err := intf.InEndpoint(inDesc.Number)
		if err != nil {
			intf.Close()
			return fmt.Errorf("open IN endpoint %d: %w", inDesc.Number, err)
		}
		out, err := intf.OutEndpoint(outDesc.Number)
		if err != nil {
			intf.Close()
			return fmt.Errorf("open OUT endpoint %d: %w", outDesc.Number, err)
		}
		l.intf, l.in, l.out = intf, in, out
		return nil
	}
	return fmt.Errorf("no bulk endpoint pair on device")
}

func (l *usbLink) Write(p []byte, timeout time.Duration) (int, error) {
	tctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	n, err := l.out.WriteContext(tctx, p)
	if err != nil {
		if tctx.Err() != nil {
			return n, ErrTimeout
		}
		return n, fmt.Errorf("bulk write: %w", err)
	}
	return n, nil
}

func (l *usbLink) Read(p []byte, timeout time.Duration) (int, error) {
	tctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	n, err := l.in.ReadContext(tctx, p)
	if err != nil {
		if tctx.Err() != nil {
			return n, ErrTimeout
		}
		return n, fmt.Errorf("bulk read: %w", err)
	}
	return n, nil
}

func (l *usbLink) MaxPacketSize() int {
	return l.in.Desc.MaxPacketSize
}

func (l *usbLink) Close() error {
	if l.intf != nil {
		l.intf.Close()
	}
	if l.cfg != nil {
		l.cfg.Close()
	}
	var err error
	if l.dev != nil {
		err = l.dev.Close()
	}
	if l.ctx != nil {
		if cerr := l.ctx.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
