//go:build linux && cgo

package volume

/*
#cgo LDFLAGS: -lasound
#include <stdlib.h>
#include <alsa/asoundlib.h>
*/
import "C"

import (
	"fmt"
	"unsafe"
)

const (
	alsaCard    = "default"
	alsaElement = "Master"
)

// alsaMixer drives the "Master" simple element of the default card.
type alsaMixer struct {
	card    string
	element string
}

func newSystemMixer() Mixer {
	return &alsaMixer{card: alsaCard, element: alsaElement}
}

func (m *alsaMixer) Volume() (int, error) {
	var percent int
	err := m.withElement(func(elem *C.snd_mixer_elem_t) error {
		var min, max, raw C.long
		if rc := C.snd_mixer_selem_get_playback_volume_range(elem, &min, &max); rc < 0 {
			return alsaError("get playback volume range", rc)
		}
		if rc := C.snd_mixer_selem_get_playback_volume(elem, C.SND_MIXER_SCHN_MONO, &raw); rc < 0 {
			return alsaError("get playback volume", rc)
		}
		percent = alsaPercent(int64(raw), int64(max))
		return nil
	})
	return percent, err
}

func (m *alsaMixer) SetVolume(percent int) error {
	return m.withElement(func(elem *C.snd_mixer_elem_t) error {
		var min, max C.long
		if rc := C.snd_mixer_selem_get_playback_volume_range(elem, &min, &max); rc < 0 {
			return alsaError("get playback volume range", rc)
		}
		raw := alsaRaw(percent, int64(min), int64(max))
		if rc := C.snd_mixer_selem_set_playback_volume_all(elem, C.long(raw)); rc < 0 {
			return alsaError("set playback volume", rc)
		}
		return nil
	})
}

// withElement opens a mixer handle, looks up the element and closes the
// handle once fn returns.
func (m *alsaMixer) withElement(fn func(elem *C.snd_mixer_elem_t) error) error {
	var handle *C.snd_mixer_t
	if rc := C.snd_mixer_open(&handle, 0); rc < 0 {
		return alsaError("open mixer", rc)
	}
	defer C.snd_mixer_close(handle)

	card := C.CString(m.card)
	defer C.free(unsafe.Pointer(card))
	if rc := C.snd_mixer_attach(handle, card); rc < 0 {
		return alsaError("attach card "+m.card, rc)
	}
	if rc := C.snd_mixer_selem_register(handle, nil, nil); rc < 0 {
		return alsaError("register simple elements", rc)
	}
	if rc := C.snd_mixer_load(handle); rc < 0 {
		return alsaError("load mixer", rc)
	}

	var sid *C.snd_mixer_selem_id_t
	if rc := C.snd_mixer_selem_id_malloc(&sid); rc < 0 {
		return alsaError("allocate element id", rc)
	}
	defer C.snd_mixer_selem_id_free(sid)

	name := C.CString(m.element)
	defer C.free(unsafe.Pointer(name))
	C.snd_mixer_selem_id_set_index(sid, 0)
	C.snd_mixer_selem_id_set_name(sid, name)

	elem := C.snd_mixer_find_selem(handle, sid)
	if elem == nil {
		return fmt.Errorf("%w: %s on card %s", ErrElementNotFound, m.element, m.card)
	}
	return fn(elem)
}

func alsaError(op string, rc C.int) error {
	return fmt.Errorf("%s: %s (%d)", op, C.GoString(C.snd_strerror(rc)), int(rc))
}
