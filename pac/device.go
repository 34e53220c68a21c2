package pac

import (
	"fmt"
	"strings"

	"go.bug.st/serial/enumerator"
)

const (
	Board_SprdDownload = "Spreadtrum/UNISOC download mode"
)

// USB ids of phones sitting in the boot ROM / FDL download mode, which is
// the mode a PAC gets flashed in
var VidPidTable = map[string]string{
	"VID:PID=1782:4D00": Board_SprdDownload,
}

type DeviceInfo struct {
	VidPid    string
	Port      string
	Product   string
	Serial    string
	BoardType string
}

func vidPidKey(vid string, pid string) string {
	return fmt.Sprintf("VID:PID=%s:%s", strings.ToUpper(vid), strings.ToUpper(pid))
}

// Look up the board type for the given usb ids (hex strings, any case)
func LookupBoard(vid string, pid string) (string, bool) {
	board, ok := VidPidTable[vidPidKey(vid, pid)]
	return board, ok
}

// Pick out only the ports that belong to download mode devices
func FilterDownloadDevices(ports []*enumerator.PortDetails) []DeviceInfo {
	result := make([]DeviceInfo, 0)
	for _, port := range ports {
		if port == nil || !port.IsUSB {
			continue
		}
		board, ok := LookupBoard(port.VID, port.PID)
		if !ok {
			continue
		}
		result = append(result, DeviceInfo{
			VidPid:    vidPidKey(port.VID, port.PID),
			Port:      port.Name,
			Product:   port.Product,
			Serial:    port.SerialNumber,
			BoardType: board,
		})
	}
	return result
}

// Ask the OS for every serial port and return the ones which look like
// a phone in download mode. Nothing is opened.
func GetDownloadDevices() ([]DeviceInfo, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, err
	}
	return FilterDownloadDevices(ports), nil
}
