// Command libvolctl builds the JNI library loaded by the managed VolumeControl class:
//
//	go build -buildmode=c-shared -o libvolctl.so ./cmd/libvolctl
package main

/*
#include <stdint.h>
*/
import "C"

import (
	"context"
	"sync"
	"unsafe"

	"github.com/vmorsell/volctl/internal/volume"
	"go.uber.org/zap"
)

// errorVolume is returned to the host when the mixer cannot be read.
const errorVolume = -1

var (
	ctrlOnce sync.Once
	ctrl     *volume.Controller
	logger   *zap.Logger

	newController = func(l *zap.Logger) *volume.Controller {
		return volume.NewController(l)
	}
)

func controller() *volume.Controller {
	ctrlOnce.Do(func() {
		l, err := zap.NewProduction()
		if err != nil {
			l = zap.NewNop()
		}
		logger = l.Named("volctl")
		ctrl = newController(logger)
	})
	return ctrl
}

func getVolume() int {
	c := controller()
	v, err := c.Volume(context.Background())
	if err != nil {
		logger.Error("failed to get volume", zap.Error(err))
		return errorVolume
	}
	return v
}

func setVolume(value int) {
	c := controller()
	v := volume.Clamp(value)
	if v != value {
		logger.Warn("clamped out-of-range volume", zap.Int("requested", value), zap.Int("volume", v))
	}
	if err := c.SetVolume(context.Background(), v); err != nil {
		logger.Error("failed to set volume", zap.Int("volume", v), zap.Error(err))
	}
}

//export Java_net_bjoernpetersen_volctl_VolumeControl_getVolumeNative
func Java_net_bjoernpetersen_volctl_VolumeControl_getVolumeNative(env unsafe.Pointer, obj unsafe.Pointer) C.int32_t {
	return C.int32_t(getVolume())
}

//export Java_net_bjoernpetersen_volctl_VolumeControl_setVolumeNative
func Java_net_bjoernpetersen_volctl_VolumeControl_setVolumeNative(env unsafe.Pointer, obj unsafe.Pointer, value C.int32_t) {
	setVolume(int(value))
}

func main() {}
