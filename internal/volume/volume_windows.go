//go:build windows

package volume

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/go-ole/go-ole"
	"github.com/moutend/go-wca/pkg/wca"
)

const (
	hresultSFalse          = 0x00000001
	hresultRPCEChangedMode = 0x80010106
)

// endpointMixer drives the master scalar of the default multimedia render endpoint.
type endpointMixer struct{}

func newSystemMixer() Mixer {
	return endpointMixer{}
}

func (m endpointMixer) Volume() (int, error) {
	var percent int
	err := m.withEndpointVolume(func(aev *wca.IAudioEndpointVolume) error {
		var scalar float32
		if err := aev.GetMasterVolumeLevelScalar(&scalar); err != nil {
			return fmt.Errorf("get master volume scalar: %w", err)
		}
		percent = scalarPercent(scalar)
		return nil
	})
	return percent, err
}

func (m endpointMixer) SetVolume(percent int) error {
	return m.withEndpointVolume(func(aev *wca.IAudioEndpointVolume) error {
		if err := aev.SetMasterVolumeLevelScalar(percentScalar(percent), nil); err != nil {
			return fmt.Errorf("set master volume scalar: %w", err)
		}
		return nil
	})
}

// withEndpointVolume initializes COM on a locked thread, activates the
// endpoint volume interface and tears everything down once fn returns.
func (endpointMixer) withEndpointVolume(fn func(aev *wca.IAudioEndpointVolume) error) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	uninit, err := initCOM()
	if err != nil {
		return fmt.Errorf("initialize com: %w", err)
	}
	defer uninit()

	var mmde *wca.IMMDeviceEnumerator
	if err := wca.CoCreateInstance(wca.CLSID_MMDeviceEnumerator, 0, wca.CLSCTX_ALL, wca.IID_IMMDeviceEnumerator, &mmde); err != nil {
		return fmt.Errorf("create device enumerator: %w", err)
	}
	defer mmde.Release()

	var mmd *wca.IMMDevice
	if err := mmde.GetDefaultAudioEndpoint(wca.ERender, wca.EMultimedia, &mmd); err != nil {
		return fmt.Errorf("get default audio endpoint: %w", err)
	}
	defer mmd.Release()

	var aev *wca.IAudioEndpointVolume
	if err := mmd.Activate(wca.IID_IAudioEndpointVolume, wca.CLSCTX_ALL, nil, &aev); err != nil {
		return fmt.Errorf("activate endpoint volume: %w", err)
	}
	defer aev.Release()

	return fn(aev)
}

// initCOM joins the multithreaded apartment. The returned func undoes the
// initialization only when this call was counted by COM.
func initCOM() (func(), error) {
	err := ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED)
	if err == nil {
		return ole.CoUninitialize, nil
	}
	var oleErr *ole.OleError
	if errors.As(err, &oleErr) {
		switch uint32(oleErr.Code()) {
		case hresultSFalse:
			return ole.CoUninitialize, nil
		case hresultRPCEChangedMode:
			// Thread already lives in an STA; reuse it.
			return func() {}, nil
		}
	}
	return nil, err
}
