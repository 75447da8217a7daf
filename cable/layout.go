package cable

import (
	"github.com/vancore/van/internal/constants"
	"github.com/vancore/van/internal/uapi"
)

// pairLayout describes the shared-memory region backing one controller/
// follower pair: two control rings and two payload buffers, one of each
// per direction, laid out contiguously. Grounded on
// original_source/os/os_cable.c's cab_io_map/CAB_CB_OFFS_V/CAB_CD_OFFS_V —
// a cable is two endpoints sharing one region, each endpoint seeing the
// other's "out" ring/buffer as its own "in".
type pairLayout struct {
	ringASize int
	ringBSize int

	ringAOff int
	ringBOff int
	bufAOff  int
	bufBOff  int
}

const pairRegionSize = 2*uapi.RingSize + 2*constants.PayloadSize

func newPairLayout(base int) pairLayout {
	return pairLayout{
		ringAOff: base,
		ringBOff: base + uapi.RingSize,
		bufAOff:  base + 2*uapi.RingSize,
		bufBOff:  base + 2*uapi.RingSize + constants.PayloadSize,
	}
}

// pairRegion returns the byte range [off, off+pairRegionSize) within the
// shared-memory file for pair index p (0 = ctrl-batt/battery, 1 =
// ctrl-disp/display), word-aligned the way CAB_CD_OFFS_A aligns the
// second pair after the first.
func pairRegion(p int) pairLayout {
	off := 0
	if p > 0 {
		off = constants.Align(pairRegionSize, constants.WordAlign)
	}
	return newPairLayout(off)
}

// TotalShmSize is the size of the shared-memory file needed to back both
// endpoint pairs.
const TotalShmSize = pairRegionSizeAligned*2

const pairRegionSizeAligned = (pairRegionSize + constants.WordAlign - 1) &^ (constants.WordAlign - 1)

// endpointSlots maps each of the four logical endpoints to its pair index
// and role, mirroring cab_conf[].
var endpointSlots = map[int]struct {
	pair int
	role uapi.Role
	name string
}{
	uapi.EndpointCtrlBatt: {pair: 0, role: uapi.RoleController, name: "ctrl_batt"},
	uapi.EndpointBattery:  {pair: 0, role: uapi.RoleFollower, name: "battery"},
	uapi.EndpointCtrlDisp: {pair: 1, role: uapi.RoleController, name: "ctrl_disp"},
	uapi.EndpointDisplay:  {pair: 1, role: uapi.RoleFollower, name: "display"},
}
