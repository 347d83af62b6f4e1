package models

// CameraStatus is the mode token reported by the appliance in every preview response.
// Values outside the known set are carried through unchanged.
type CameraStatus string

const (
	StatusHalted    CameraStatus = "halted"
	StatusReady     CameraStatus = "ready"
	StatusVideo     CameraStatus = "video"
	StatusMDReady   CameraStatus = "md_ready"
	StatusMDVideo   CameraStatus = "md_video"
	StatusTimelapse CameraStatus = "timelapse"
	StatusTLMDReady CameraStatus = "tl_md_ready"
	StatusTLMDVideo CameraStatus = "tl_md_video"
)

// AllStatuses lists every status the firmware is known to report.
var AllStatuses = []CameraStatus{
	StatusHalted,
	StatusReady,
	StatusVideo,
	StatusMDReady,
	StatusMDVideo,
	StatusTimelapse,
	StatusTLMDReady,
	StatusTLMDVideo,
}

// Known reports whether s is part of the documented status vocabulary.
func (s CameraStatus) Known() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

func (s CameraStatus) String() string { return string(s) }

// LogicalCommand is a user-facing camera action, independent of the endpoint it maps to.
type LogicalCommand string

const (
	CommandPower     LogicalCommand = "power"
	CommandMotion    LogicalCommand = "motion"
	CommandTimelapse LogicalCommand = "timelapse"
	CommandRecord    LogicalCommand = "record"
	CommandPhoto     LogicalCommand = "photo"
)

// AllCommands lists the commands in the order the UI presents them.
var AllCommands = []LogicalCommand{
	CommandPower,
	CommandMotion,
	CommandTimelapse,
	CommandRecord,
	CommandPhoto,
}
